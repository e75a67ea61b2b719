package domain

import (
	"github.com/allisson/orgvault/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates no secret exists with the given id or key.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrSecretInactive indicates the secret was deactivated.
	ErrSecretInactive = errors.Wrap(errors.ErrInactive, "secret is inactive")

	// ErrSecretAlreadyExists indicates the organization already has a secret with this key.
	ErrSecretAlreadyExists = errors.Wrap(errors.ErrConflict, "secret already exists")

	// ErrConcurrentRotation indicates the secret changed between read and write.
	ErrConcurrentRotation = errors.Wrap(errors.ErrConflict, "secret was modified concurrently")

	// ErrRotationNotFound indicates the rotation record does not exist.
	ErrRotationNotFound = errors.Wrap(errors.ErrNotFound, "rotation not found")
)
