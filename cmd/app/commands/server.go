package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/orgvault/internal/app"
	"github.com/allisson/orgvault/internal/config"
)

const shutdownTimeout = 30 * time.Second

// RunServer starts the API server, the metrics server when enabled and the rotation
// scheduler when enabled. It blocks until SIGINT/SIGTERM or until one component
// fails, then shuts everything down.
//
// The keyring is loaded before any listener opens, so a missing or invalid
// MASTER_KEY stops the process here.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))
	defer closeContainer(container, logger)

	if _, err := container.Keyring(); err != nil {
		return fmt.Errorf("failed to load keyring: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RotationSchedulerEnabled {
		rotationScheduler, err := container.RotationScheduler()
		if err != nil {
			return fmt.Errorf("failed to initialize rotation scheduler: %w", err)
		}
		if err := rotationScheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start rotation scheduler: %w", err)
		}
	} else {
		logger.Info("rotation scheduler disabled")
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Start(groupCtx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		group.Go(func() error {
			if err := metricsServer.Start(groupCtx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return group.Wait()
}
