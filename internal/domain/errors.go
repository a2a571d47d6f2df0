package domain

import (
	"errors"
)

// Error kinds. Every error returned by services wraps exactly one of these so
// handlers can map it to a status code with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a user-facing error message tied to one of the kinds above.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation builds a field-level validation error.
func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func businessRule(message string) *Error {
	return &Error{Kind: ErrBusinessRule, Message: message}
}

// ErrNotAuthenticated is returned when an operation needs a signed-in actor.
var ErrNotAuthenticated = &Error{Kind: ErrUnauthorized, Message: "Unauthorized"}

// Invitation errors.
var (
	ErrInvitationNotPending = businessRule("Invitation has already been accepted or revoked")
	ErrInvitationExpired    = businessRule("This invitation has expired")
	ErrInvalidToken         = &Error{Kind: ErrNotFound, Message: "Invalid or expired invitation token"}
	ErrDuplicateInvitation  = &Error{Kind: ErrConflict, Message: "A pending invitation for this email already exists"}
	ErrUserAlreadyExists    = &Error{Kind: ErrConflict, Message: "A user with this email already exists"}
)

// Time-off errors.
var (
	ErrNotATimeOffRequest     = businessRule("Record is not a time-off request")
	ErrTimeOffAlreadyApproved = businessRule("Time-off request is already approved")
	ErrTimeOffAlreadyDenied   = businessRule("Time-off request is already denied")
	ErrTimeOffAlreadyDecided  = businessRule("Time-off request has already been decided")
)

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
