package service

import (
	"errors"
	"net/http"
)

// Kind classifies an auth failure. Each kind has a stable HTTP status.
type Kind string

const (
	KindMissingFields      Kind = "MissingFields"
	KindValidation         Kind = "Validation"
	KindDuplicateEmail     Kind = "DuplicateEmail"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindUnauthorized       Kind = "Unauthorized"
	KindNotFound           Kind = "NotFound"
	KindInternal           Kind = "Internal"
)

// Status returns the HTTP status code reported for k.
func (k Kind) Status() int {
	switch k {
	case KindMissingFields, KindValidation:
		return http.StatusBadRequest
	case KindDuplicateEmail:
		return http.StatusConflict
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AuthError is the only error type the service returns. Message is safe to
// show to clients; Err keeps the underlying cause for logging and is never
// serialized.
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// Client-facing messages. InvalidCredentials is deliberately the same for an
// unknown email and a wrong password.
const (
	MsgMissingRegister    = "Please provide all required fields"
	MsgMissingLogin       = "Please provide email and password"
	MsgDuplicateEmail     = "User with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Authentication required"
	MsgUserNotFound       = "User not found"
	MsgInternal           = "Internal Server Error"
)

func newError(kind Kind, msg string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
