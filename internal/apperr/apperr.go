// Package apperr defines the error taxonomy shared by services and handlers.
// Every failure a caller can see carries a Kind (which decides the HTTP status),
// a short machine-readable code and a human-readable message.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a failure.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindEncryption     Kind = "encryption"
	KindDecryption     Kind = "decryption"
	KindServer         Kind = "server"
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// New creates a sentinel error. Sentinels are compared with errors.Is.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a categorized error. The cause is kept for logs
// only; Message is what callers see.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports the category of err. Anything uncategorized is a server error.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindServer
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		// State-machine violations are reported as bad requests, matching the
		// original API clients.
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the code and message that are safe to send to a client.
func Public(err error) (code, message string) {
	ae, ok := As(err)
	if !ok || ae.Kind == KindServer {
		return "server_error", "Server error"
	}
	return ae.Code, ae.Message
}
