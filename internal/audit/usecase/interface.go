// Package usecase implements the secret access audit trail.
//
// Writes are best effort: a failing audit sink is logged and counted but never
// turned into an error for the secret operation that produced the entry.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
)

// SecretAccessRepository is the append-only audit sink.
type SecretAccessRepository interface {
	Create(ctx context.Context, access *auditDomain.SecretAccess) error
	// ListBySecret returns entries for secretID, most recent first.
	ListBySecret(ctx context.Context, secretID uuid.UUID, limit int) ([]*auditDomain.SecretAccess, error)
}

// AuditTrail records and queries secret access events.
type AuditTrail interface {
	// LogAccess writes one entry. It never fails from the caller's point of view.
	LogAccess(ctx context.Context, access *auditDomain.SecretAccess)

	// GetAuditTrail returns up to limit entries for a secret, most recent first.
	GetAuditTrail(ctx context.Context, secretID uuid.UUID, limit int) ([]*auditDomain.SecretAccess, error)
}
