package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUser is returned when a username is already registered.
	ErrDuplicateUser = errors.New("username already in use")
	// ErrDuplicateTitle is returned when another live entry already carries the title.
	ErrDuplicateTitle = errors.New("title already in use")
	// ErrPermissionDenied is returned when the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSelfVoteForbidden is returned when an owner votes on their own entry.
	ErrSelfVoteForbidden = errors.New("voting on your own post is not allowed")
	// ErrTooShort is returned for empty comment text.
	ErrTooShort = errors.New("text is too short")
	// ErrInvalidCredentials is returned when username or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformedSession marks a session cookie that failed verification. It never leaves the guard.
	ErrMalformedSession = errors.New("malformed session")
	ErrNotFound         = errors.New("not found")
	// ErrStorageUnavailable is returned once storage retries are exhausted.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidInput is the parent of every FieldError.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError describes a validation failure on a single input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// IsDomain reports whether err carries one of the business rule sentinels above.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrDuplicateUser,
		ErrDuplicateTitle,
		ErrPermissionDenied,
		ErrSelfVoteForbidden,
		ErrTooShort,
		ErrInvalidCredentials,
		ErrMalformedSession,
		ErrNotFound,
		ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
