// file: internals/features/sessions/engine/errors.go
package engine

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

/* =========================================================
   Error taxonomy: every expected business failure carries
   a Kind plus enough structured detail to render a message.
========================================================= */

type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT" // race lost; the only kind callers should retry
	KindLockout     Kind = "LOCKOUT"
	KindPersistence Kind = "PERSISTENCE"
)

type Error struct {
	Kind        Kind           `json:"kind"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	LockedUntil *time.Time     `json:"locked_until,omitempty"`
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) WithDetail(key string, v any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = v
	return e
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

func Lockout(msg string, until time.Time) *Error {
	return &Error{Kind: KindLockout, Message: msg, LockedUntil: &until}
}

// Persistence wraps a store error verbatim; the engine never retries these
// itself (retry policy belongs to the caller).
func Persistence(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, cause: cause}
}

// HTTPStatus maps an error kind to the status the JSON envelope uses.
func HTTPStatus(e *Error) int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindLockout:
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}
