// Package auth provides the middleware guarding every todo route. It
// validates bearer tokens from the Authorization header and attaches the
// authenticated user's identifier to the request context.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/todolist/internal/apperr"
	"github.com/patric-chuzhbe/todolist/internal/logger"
)

type tokenParser interface {
	ParseToken(tokenString string) (string, error)
}

// Auth authenticates incoming requests using stateless bearer tokens.
type Auth struct {
	credentials tokenParser
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates a new Auth middleware backed by the given token parser.
func New(credentials tokenParser) *Auth {
	return &Auth{credentials: credentials}
}

// ErrAuthenticationFailed is the error attached to every 401 produced by
// the middleware. The message is deliberately identical for a missing
// header, a malformed header and a bad token.
var ErrAuthenticationFailed = apperr.New(apperr.KindUnauthenticated, "Authentication failed")

// AuthenticateUser is an HTTP middleware that rejects requests without a
// valid `Authorization: Bearer <token>` header. On success the user ID
// decoded from the token is stored in the request context under
// UserIDKey.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("Authorization")
		tokenString, isBearer := strings.CutPrefix(header, "Bearer ")
		if !isBearer || tokenString == "" || strings.ContainsRune(tokenString, ' ') {
			apperr.WriteJSON(response, ErrAuthenticationFailed)

			return
		}

		userID, err := a.credentials.ParseToken(tokenString)
		if err != nil {
			logger.Log.Debugln("rejecting token: ", zap.Error(err))
			apperr.WriteJSON(response, ErrAuthenticationFailed)

			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user's identifier placed
// into the context by AuthenticateUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
