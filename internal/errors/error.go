// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrBadRequest = errors.New("bad request")

// Error is a domain error of kind ErrProductNotFound or ErrBadRequest that keeps
// the failure which caused it, so errors.Is matches the kind and logs can show the cause.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NotFound re-signals cause as ErrProductNotFound.
func NotFound(cause error) error {
	return newError(ErrProductNotFound, cause)
}

// BadRequest re-signals cause as ErrBadRequest.
func BadRequest(cause error) error {
	return newError(ErrBadRequest, cause)
}

// newError replaces the kind of a domain error found in cause instead of nesting it,
// so a re-signalled error never matches both kinds.
func newError(kind, cause error) error {
	var de *Error
	if errors.As(cause, &de) {
		cause = de.Cause
	}
	return &Error{Kind: kind, Cause: cause}
}
