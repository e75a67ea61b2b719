// Package errors holds the sentinel errors shared by every domain package.
// Use cases return them (possibly wrapped) and the HTTP layer maps each one to a
// status code, so no handler needs to know about storage or crypto failures.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule was violated, e.g. a duplicate secret key.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means the request failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means the caller presented no usable credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the credential is valid but out of scope.
	ErrForbidden = errors.New("forbidden")

	// ErrInactive means the record exists but was deactivated.
	ErrInactive = errors.New("inactive")

	// ErrUnavailable means the record store failed; the call may be retried.
	ErrUnavailable = errors.New("unavailable")

	// ErrConfiguration means the process configuration is unusable.
	ErrConfiguration = errors.New("configuration error")
)

// New is errors.New, re-exported so callers need a single import.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Unavailable wraps a store failure so it matches both ErrUnavailable and the
// original cause.
func Unavailable(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrUnavailable, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
