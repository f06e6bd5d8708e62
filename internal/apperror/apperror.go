package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error that carries the HTTP status it should be reported with.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap keeps err as the cause while exposing only message to the caller.
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string, err error) *Error {
	return Wrap(http.StatusInternalServerError, message, err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf reports the HTTP status for err, 500 for anything untyped.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given status.
func Is(err error, status int) bool {
	appErr, ok := As(err)
	return ok && appErr.Status == status
}
