// Package ipchecker validates that a request originates from a trusted
// subnet. It guards the internal stats endpoint.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker verifies client addresses against a configured trusted
// subnet given in CIDR notation.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the given CIDR. An empty string yields a
// disabled checker that rejects every request.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("parsing trusted subnet %q: %w", trustedSubnet, err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// Allowed reports whether the request's client IP belongs to the trusted
// subnet. Requests are rejected when no subnet is configured or the
// client IP cannot be determined.
func (checker *IPChecker) Allowed(request *http.Request) bool {
	if checker.trustedSubnet == nil {
		return false
	}

	clientIP, err := clientIPFromRequest(request)
	if err != nil || clientIP == nil {
		return false
	}

	return checker.trustedSubnet.Contains(clientIP)
}

// clientIPFromRequest extracts the client address, checking in order the
// X-Real-IP header, the first entry of X-Forwarded-For, and RemoteAddr.
func clientIPFromRequest(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip, nil
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return net.ParseIP(first), nil
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("splitting remote address %q: %w", request.RemoteAddr, err)
	}

	return net.ParseIP(host), nil
}
