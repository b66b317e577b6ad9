// Package apperror defines the domain error taxonomy shared by all layers.
//
// Services return these errors; the HTTP layer maps them to status codes
// in one place (handler/response.go). Sentinel errors classify the kind,
// the AppError wrapper carries the human-readable message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel classifying the error kind
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. registering a username
// that is already taken.
func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, id),
	}
}

// Unauthenticated covers both bad login credentials and missing/invalid
// bearer tokens. The message stays generic for login failures: callers
// must not be able to tell "no such user" from "wrong password".
// HTTP handlers map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Forbidden means the caller is authenticated but not permitted to act
// on the target, e.g. reading a message they neither sent nor received.
// HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// UnknownUser reports a reference to a username that does not exist,
// e.g. sending a message to an unregistered recipient. It is a
// validation error (400), not a lookup failure: the request itself
// named a bad reference.
func UnknownUser(username string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("no such user %q", username),
		Field:   "to_username",
	}
}
