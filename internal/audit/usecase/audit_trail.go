package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	"github.com/allisson/orgvault/internal/database"
	"github.com/allisson/orgvault/internal/metrics"
)

const (
	// DefaultAuditTrailLimit is used when the caller passes a non-positive limit.
	DefaultAuditTrailLimit = 100
	// MaxAuditTrailLimit caps a single trail query.
	MaxAuditTrailLimit = 1000
)

type auditTrail struct {
	repo    SecretAccessRepository
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuditTrail creates an AuditTrail backed by repo.
func NewAuditTrail(
	repo SecretAccessRepository,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) AuditTrail {
	return &auditTrail{
		repo:    repo,
		metrics: businessMetrics,
		logger:  logger,
		now:     time.Now,
	}
}

// LogAccess writes on a detached context so that neither caller cancellation nor
// a rolled back transaction can drop the entry.
func (a *auditTrail) LogAccess(ctx context.Context, access *auditDomain.SecretAccess) {
	if access == nil {
		return
	}
	if access.ID == uuid.Nil {
		access.ID = uuid.Must(uuid.NewV7())
	}
	if access.CreatedAt.IsZero() {
		access.CreatedAt = a.now().UTC()
	}

	writeCtx := database.Detach(ctx)
	if err := a.repo.Create(writeCtx, access); err != nil {
		a.metrics.RecordOperation(writeCtx, "audit", "log_access", "error")
		attrs := []any{
			slog.String("access_id", access.ID.String()),
			slog.String("access_method", string(access.AccessMethod)),
			slog.String("user_id", access.UserID),
			slog.Bool("success", access.Success),
			slog.Any("error", err),
		}
		if access.SecretID != nil {
			attrs = append(attrs, slog.String("secret_id", access.SecretID.String()))
		}
		a.logger.Error("failed to write audit entry", attrs...)
		return
	}
	a.metrics.RecordOperation(writeCtx, "audit", "log_access", "success")
}

func (a *auditTrail) GetAuditTrail(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	return a.repo.ListBySecret(ctx, secretID, clampLimit(limit))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultAuditTrailLimit
	case limit > MaxAuditTrailLimit:
		return MaxAuditTrailLimit
	default:
		return limit
	}
}
