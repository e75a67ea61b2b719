package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	tokensUseCase "github.com/allisson/orgvault/internal/tokens/usecase"
)

// RunRevokeToken revokes a service token by id. Revoking an already revoked
// token succeeds and keeps the original revocation details.
func RunRevokeToken(
	ctx context.Context,
	tokenUseCase tokensUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tokenID string,
	revokedBy string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if revokedBy == "" {
		return fmt.Errorf("revoked-by is required")
	}

	id, err := uuid.Parse(tokenID)
	if err != nil {
		return fmt.Errorf("invalid token id: %w", err)
	}

	reqCtx := auditDomain.RequestContext{UserAgent: "orgvault-cli"}
	revoked, err := tokenUseCase.Revoke(ctx, id, revokedBy, reqCtx)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("token revoked",
		slog.String("token_id", id.String()),
		slog.String("revoked_by", revokedBy),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"token_id": id.String(),
			"revoked":  revoked,
		})
	}

	_, err = fmt.Fprintf(writer, "Token %s revoked\n", id)
	return err
}
