package usecase

import (
	"context"
	"time"

	"github.com/allisson/orgvault/internal/metrics"
)

type masterKeyUseCaseWithMetrics struct {
	next    MasterKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewMasterKeyUseCaseWithMetrics wraps a MasterKeyUseCase with metrics recording.
func NewMasterKeyUseCaseWithMetrics(useCase MasterKeyUseCase, m metrics.BusinessMetrics) MasterKeyUseCase {
	return &masterKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (m *masterKeyUseCaseWithMetrics) AddMasterKey(
	ctx context.Context,
	raw []byte,
	rotatedBy string,
) (string, error) {
	start := time.Now()
	keyID, err := m.next.AddMasterKey(ctx, raw, rotatedBy)
	metrics.Observe(ctx, m.metrics, "crypto", "master_key_add", start, err)
	return keyID, err
}
