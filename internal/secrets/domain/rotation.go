package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// RotationType distinguishes operator-driven from scheduled rotations.
type RotationType string

const (
	RotationTypeManual    RotationType = "manual"
	RotationTypeScheduled RotationType = "scheduled"
)

// RotationStatus is the lifecycle state of a rotation record.
type RotationStatus string

const (
	RotationStatusPending   RotationStatus = "pending"
	RotationStatusCompleted RotationStatus = "completed"
	RotationStatusFailed    RotationStatus = "failed"
)

// SecretRotation is the durable record of one rotation attempt. It is opened as
// pending and always finalised as completed or failed.
type SecretRotation struct {
	ID           uuid.UUID
	SecretID     uuid.UUID
	OldValueHash string
	RotationType RotationType
	RotatedBy    string
	Reason       string
	Status       RotationStatus
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// HashEncryptedValue fingerprints an envelope for traceability without keeping it.
func HashEncryptedValue(encryptedValue string) string {
	sum := sha256.Sum256([]byte(encryptedValue))
	return hex.EncodeToString(sum[:])
}

// IsStale reports whether a pending rotation has been running longer than
// maxAge, which indicates the process died mid-rotation.
func (r *SecretRotation) IsStale(now time.Time, maxAge time.Duration) bool {
	return r.Status == RotationStatusPending && now.Sub(r.CreatedAt) > maxAge
}
