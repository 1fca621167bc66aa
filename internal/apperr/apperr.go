// Package apperr defines the application's error taxonomy and the single
// point where domain failures are translated into HTTP responses.
//
// Every operation of the service layer reports failures as *Error values
// tagged with a Kind. Handlers and middleware pass any error to WriteJSON
// and never format HTTP error responses themselves.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindBadRequest marks malformed or invalid input: title rules,
	// missing required fields, an empty update body.
	KindBadRequest Kind = iota + 1

	// KindUnauthenticated marks a missing/invalid/expired token or bad
	// login credentials.
	KindUnauthenticated

	// KindForbidden marks an ownership mismatch detected outside the
	// primary owner-scoped filter.
	KindForbidden

	// KindNotFound marks the absence of a resource matching both id and
	// requester ownership.
	KindNotFound

	// KindConflict marks a uniqueness violation surfaced to the client,
	// such as registering an already taken email address.
	KindConflict
)

// Error is a domain failure with a client-visible message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New creates a domain error with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a domain error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error preserving an underlying cause for
// errors.Is/errors.As inspection.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error kind to its transport status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Msg string `json:"msg"`
}

// WriteJSON writes err to response as a JSON body of the shape
// {"msg": "..."}. Domain errors are translated via HTTPStatus; anything
// else becomes a 500 carrying the raw error message.
func WriteJSON(response http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var domainErr *Error
	if errors.As(err, &domainErr) {
		status = HTTPStatus(domainErr.Kind)
		msg = domainErr.Msg
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	_ = json.NewEncoder(response).Encode(errorResponse{Msg: msg})
}
