package hub

import "errors"

// Error codes attached to events delivered back to the offending connection.
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeForbidden      = "forbidden"
	ErrCodeInternal       = "internal_error"
)

// ErrAuthFailure is returned by a Gate when a connection cannot be admitted.
var ErrAuthFailure = errors.New("authentication failed")

// ErrDuplicateConn is returned when a connection ID is registered twice.
var ErrDuplicateConn = errors.New("connection already registered")

// Error is a domain error that can be reported to a single connection.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func domainError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}
