package ipchecker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMalformedCIDR(t *testing.T) {
	_, err := New("not-a-subnet")
	assert.Error(t, err)
}

func TestAllowedWithoutConfiguredSubnet(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Real-IP", "192.168.1.5")

	assert.False(t, checker.Allowed(request))
}

func TestAllowed(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)

	testCases := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		expected   bool
	}{
		{
			name:     "X-Real-IP inside subnet",
			realIP:   "192.168.1.5",
			expected: true,
		},
		{
			name:     "X-Real-IP outside subnet",
			realIP:   "10.0.0.1",
			expected: false,
		},
		{
			name:      "first X-Forwarded-For entry inside subnet",
			forwarded: "192.168.1.7, 10.0.0.1",
			expected:  true,
		},
		{
			name:      "first X-Forwarded-For entry outside subnet",
			forwarded: "10.0.0.1, 192.168.1.7",
			expected:  false,
		},
		{
			name:       "RemoteAddr inside subnet",
			remoteAddr: "192.168.1.9:51234",
			expected:   true,
		},
		{
			name:       "RemoteAddr outside subnet",
			remoteAddr: "172.16.0.1:51234",
			expected:   false,
		},
		{
			name:       "unparsable RemoteAddr",
			remoteAddr: "garbage",
			expected:   false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.realIP != "" {
				request.Header.Set("X-Real-IP", testCase.realIP)
			}
			if testCase.forwarded != "" {
				request.Header.Set("X-Forwarded-For", testCase.forwarded)
			}
			if testCase.remoteAddr != "" {
				request.RemoteAddr = testCase.remoteAddr
			}

			assert.Equal(t, testCase.expected, checker.Allowed(request))
		})
	}
}
