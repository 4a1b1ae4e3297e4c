// Package common defines shared constants and error kinds used across the
// server and client layers of messagely. Callers should use errors.Is to
// match kinds and errors.As to extract a *Error with its user-facing message.
package common

import (
	"errors"
	"fmt"
)

var (
	// Input errors.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrReference  = errors.New("reference error")

	// Lookup / credential errors.
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrInternal = errors.New("internal error")
)

// Error is a domain error carrying a message that is safe to show to the
// caller. Kind is one of the sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError wraps kind with a user-facing message.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf is NewError with formatting.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// MessageOf returns the user-facing message of err if it carries one,
// otherwise fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
