// Package domain defines the core domain models for the organization secret catalog.
//
// A secret is a single encrypted value identified by a key unique within its
// organization. Updating a secret is a rotation: the value is re-encrypted under
// the next key version and a SecretRotation record tracks the outcome.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PendingEncryptionSentinel is stored as the encrypted value of a freshly
// inserted secret until its real envelope is written.
const PendingEncryptionSentinel = "PENDING_ENCRYPTION"

// Secret is an encrypted organization secret. Plaintext is never held here.
type Secret struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Key            string
	Name           string
	Description    string
	Category       string
	Environment    string
	// EncryptedValue is the base64 envelope. Not loaded by list queries.
	EncryptedValue string
	// KeyHash fingerprints the master key used for EncryptedValue.
	KeyHash string
	// MasterKeyID is passed as the decryption hint for legacy envelopes.
	MasterKeyID          string
	KeyVersion           uint
	IsActive             bool
	RotationEnabled      bool
	RotationIntervalDays int
	NextRotationAt       *time.Time
	CreatedBy            string
	UpdatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	LastRotatedAt        *time.Time
}

// IsPending reports whether the secret still holds the creation placeholder.
func (s *Secret) IsPending() bool {
	return s.EncryptedValue == PendingEncryptionSentinel
}

// ScheduleNextRotation sets NextRotationAt relative to from when scheduled
// rotation is enabled, and clears it otherwise.
func (s *Secret) ScheduleNextRotation(from time.Time) {
	if !s.RotationEnabled || s.RotationIntervalDays <= 0 {
		s.NextRotationAt = nil
		return
	}
	next := from.UTC().AddDate(0, 0, s.RotationIntervalDays)
	s.NextRotationAt = &next
}

// IsRotationDue reports whether scheduled rotation should run at now.
func (s *Secret) IsRotationDue(now time.Time) bool {
	return s.IsActive && s.RotationEnabled && s.NextRotationAt != nil && !s.NextRotationAt.After(now)
}

// CreateSecretInput holds the metadata and value of a new secret.
type CreateSecretInput struct {
	OrganizationID       uuid.UUID
	Key                  string
	Name                 string
	Description          string
	Category             string
	Environment          string
	Value                []byte
	RotationEnabled      bool
	RotationIntervalDays int
}

// ListSecretsFilter narrows an organization listing. Zero values mean no filter.
type ListSecretsFilter struct {
	Category        string
	Environment     string
	IncludeInactive bool
	Offset          int
	Limit           int
}

// RotationResult is returned by a successful update.
type RotationResult struct {
	Secret     *Secret
	RotationID uuid.UUID
	OldVersion uint
	NewVersion uint
}

// ScheduledRotationResult summarises one run of scheduled rotation processing.
type ScheduledRotationResult struct {
	Processed int
	Failed    int
	SecretIDs []uuid.UUID
}
