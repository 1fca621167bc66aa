// Package credentials implements password hashing and bearer token
// issuance. It is the single owner of the signing secret and the token
// expiry window, both passed in explicitly at construction so tests can
// substitute their own values without touching the environment.
package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned by ParseToken for any token that fails
// verification: bad signature, malformed payload or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Service issues and verifies credentials.
type Service struct {
	signingSecretKey []byte
	tokenExpiration  time.Duration
}

// New creates a credentials Service using the given HMAC signing key and
// token validity window.
func New(signingSecretKey []byte, tokenExpiration time.Duration) *Service {
	return &Service{
		signingSecretKey: signingSecretKey,
		tokenExpiration:  tokenExpiration,
	}
}

// HashPassword returns the bcrypt hash of a raw password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether the raw password matches the stored
// bcrypt hash.
func (s *Service) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BuildToken issues a signed token embedding the user's identifier,
// valid for the configured expiration window.
func (s *Service) BuildToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiration)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies a token string and extracts the user identifier
// claim. Any verification failure is reported as ErrInvalidToken.
func (s *Service) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
