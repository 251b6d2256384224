// Package crud implements the permission-checked service pipeline shared by
// every entity service: validate, normalize, authorize, hooks, persist, log.
package crud

import (
	"errors"
	"fmt"
)

// Code classifies a service failure.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Error is the typed failure carried inside an Output. It is the only error
// shape that crosses a service's public boundary.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a typed Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a typed Error from err, or nil when err carries none.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// internalErr wraps an unexpected failure. The original error text is kept in
// the details so logs and callers can diagnose without leaking stack traces.
func internalErr(err error) *Error {
	if se := AsError(err); se != nil {
		return se
	}
	return &Error{
		Code:    CodeInternal,
		Message: "internal error",
		Details: map[string]any{"cause": err.Error()},
	}
}

// Output is the uniform result wrapper returned by every pipeline operation.
// Exactly one of Data / Err is meaningful: Err == nil means success, in which
// case Data holds the payload (possibly the zero value for visibility-gated
// reads that resolve to "not visible").
type Output[T any] struct {
	Data T
	Err  *Error
}

// OK reports whether the operation succeeded.
func (o Output[T]) OK() bool { return o.Err == nil }

// ok wraps a successful payload.
func ok[T any](data T) Output[T] { return Output[T]{Data: data} }

// fail wraps a typed failure.
func fail[T any](err *Error) Output[T] { return Output[T]{Err: err} }
