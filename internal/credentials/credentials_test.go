package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("credentials-test-secret")

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := New(testSecret, time.Hour)

	hash, err := svc.HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	assert.True(t, svc.VerifyPassword(hash, "secret1"))
	assert.False(t, svc.VerifyPassword(hash, "wrong"))
	assert.False(t, svc.VerifyPassword("not-a-hash", "secret1"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := New(testSecret, time.Hour)

	token, err := svc.BuildToken("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := New(testSecret, time.Hour)

	_, err := svc.ParseToken("definitely.not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := New(testSecret, time.Hour)
	verifier := New([]byte("a completely different secret"), time.Hour)

	token, err := issuer.BuildToken("user-42")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := New(testSecret, -time.Minute)

	token, err := svc.BuildToken("user-42")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
