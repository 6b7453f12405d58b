// Package apperr defines the error kinds shared by the role store, the guard and the web layer.
//
// A denied access is not an error. Errors describe operations that could not be
// carried out: bad input, missing records, or failures while resolving who is asking.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	// KindValidation is used for rejected input (empty names, unknown values, collisions).
	KindValidation Kind = "validation"
	// KindNotFound is used when a referenced record does not exist in the tenant.
	KindNotFound Kind = "not_found"
	// KindResolution is used when the actor or its role could not be determined.
	KindResolution Kind = "resolution"
)

// Error is a classified error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	// ErrValidation matches every validation error.
	ErrValidation = &Error{Kind: KindValidation}
	// ErrNotFound matches every not found error.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrResolution matches every resolution error.
	ErrResolution = &Error{Kind: KindResolution}
)

// Validation returns a validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not found error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Resolution wraps cause into a resolution error.
func Resolution(cause error, format string, args ...any) error {
	return &Error{Kind: KindResolution, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}
