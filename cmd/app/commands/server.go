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

	"github.com/allisson/secretbroker/internal/app"
	"github.com/allisson/secretbroker/internal/config"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 30 * time.Second

// RevocationPurger drops revocation entries whose tokens have expired.
type RevocationPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// RunServer starts the API server with graceful shutdown support.
//
// Next to the API and metrics servers it runs the key rotation loop
// (KEY_ROTATION_INTERVAL_SECONDS, which also sweeps the previous key once its
// grace period is over) and a revocation purge every TOKEN_TTL_SECONDS. Blocks
// until SIGINT/SIGTERM or until one of them fails.
func RunServer(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get HTTP server from container (this initializes all dependencies)
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	keyManager, err := container.KeyManager()
	if err != nil {
		return fmt.Errorf("failed to initialize key manager: %w", err)
	}

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return keyManager.Run(gctx, cfg.KeyRotationInterval)
	})

	g.Go(func() error {
		return runPurgeLoop(gctx, tokenUseCase, cfg.TokenTTL, logger)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error

		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}

		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}

// runPurgeLoop purges expired revocations every interval until ctx is done.
// Purge failures are logged and retried on the next tick.
func runPurgeLoop(ctx context.Context, purger RevocationPurger, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			purged, err := purger.Purge(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("failed to purge revocations", slog.Any("error", err))
				continue
			}
			if purged > 0 {
				logger.Info("revocations purged", slog.Int64("count", purged))
			}
		}
	}
}
