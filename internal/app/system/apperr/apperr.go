// Package apperr defines the error taxonomy shared by the engine and the
// HTTP layer.
//
// Stores and queries wrap their failures in exactly one of the kinds
// below; handlers map kinds to status codes without inspecting store
// internals. Visibility filtering is not an error path: hidden rows are
// absent from results, and direct lookups of hidden or missing entities
// both report NotFound so existence never leaks.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Compare with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	ErrInternal  = errors.New("internal")
)

// NotFound wraps ErrNotFound with a subject, e.g. NotFound("occasion").
func NotFound(subject string) error {
	return fmt.Errorf("%s: %w", subject, ErrNotFound)
}

// Forbidden wraps ErrForbidden with the missing relationship, e.g.
// Forbidden("only the organizer may delete an occasion").
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// Conflict wraps ErrConflict with the violated uniqueness rule.
func Conflict(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

// Invalid wraps ErrInvalid with a description of the malformed input.
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalid)
}

// Internal wraps an unexpected failure (store error, partial cascade)
// so callers report it as a server-side fault and never as success.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrInternal)
}
