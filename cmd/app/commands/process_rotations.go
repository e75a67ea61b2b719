package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/orgvault/internal/scheduler"
)

// RunProcessRotations runs one scheduled rotation pass and reports the result.
// It is meant for deployments that disable the in-process scheduler and trigger
// rotations from an external cron instead.
func RunProcessRotations(
	ctx context.Context,
	processor scheduler.RotationProcessor,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	result, err := processor.ProcessScheduledRotations(ctx)
	if err != nil {
		return fmt.Errorf("failed to process scheduled rotations: %w", err)
	}

	logger.Info("scheduled rotations processed",
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
	)

	if format == "json" {
		ids := make([]string, 0, len(result.SecretIDs))
		for _, id := range result.SecretIDs {
			ids = append(ids, id.String())
		}
		return writeJSON(writer, map[string]any{
			"processed":  result.Processed,
			"failed":     result.Failed,
			"secret_ids": ids,
		})
	}

	_, err = fmt.Fprintf(writer, "Processed %d scheduled rotation(s), %d failed\n", result.Processed, result.Failed)
	return err
}
