package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the API boundary
type Kind string

const (
	KindUnexpected       Kind = "UNEXPECTED"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindValidationFailed Kind = "VALIDATION_FAILED"
)

// Error is the error type returned by the cart, catalog and auth services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ValidationFailed(msg string) error {
	return &Error{Kind: KindValidationFailed, Message: msg}
}

// Unexpected wraps a store or infrastructure failure
func Unexpected(err error) error {
	return &Error{Kind: KindUnexpected, Message: "internal server error", Err: err}
}

// KindOf reports the kind of err; errors not produced by this package are Unexpected
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// MessageOf returns the user facing message of err
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindUnexpected {
		return de.Message
	}
	return "internal server error"
}
