// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	actionHTTP "github.com/allisson/secretbroker/internal/action/http"
	actionService "github.com/allisson/secretbroker/internal/action/service"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	"github.com/allisson/secretbroker/internal/approval"
	authService "github.com/allisson/secretbroker/internal/auth/service"
	"github.com/allisson/secretbroker/internal/backend"
	backendHTTP "github.com/allisson/secretbroker/internal/backend/http"
	"github.com/allisson/secretbroker/internal/config"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	"github.com/allisson/secretbroker/internal/database"
	"github.com/allisson/secretbroker/internal/http"
	"github.com/allisson/secretbroker/internal/metrics"
	tokenHTTP "github.com/allisson/secretbroker/internal/token/http"
	tokenService "github.com/allisson/secretbroker/internal/token/service"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Lifetime of background work started by components (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	aeadManager  cryptoService.AEADManager
	keyManager   *cryptoService.KeyManager
	keeperOpener cryptoService.KeeperOpener

	// Tokens
	codec              *tokenService.Codec
	claimsValidator    *tokenService.ClaimsValidator
	revocationRegistry tokenService.RevocationRegistry
	tokenUseCase       tokenUseCase.TokenUseCase

	// Delegated actions
	executor      *actionService.Executor
	signer        *actionService.Signer
	actionUseCase actionUseCase.ActionUseCase

	// Backend and approval
	backend      backend.Backend
	approvalGate *approval.Gate

	// API
	apiTokenService authService.APITokenService
	tokenHandler    *tokenHTTP.TokenHandler
	signHandler     *actionHTTP.SignHandler
	secretHandler   *backendHTTP.SecretHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	aeadManagerInit        sync.Once
	keyManagerInit         sync.Once
	keeperOpenerInit       sync.Once
	codecInit              sync.Once
	claimsValidatorInit    sync.Once
	revocationRegistryInit sync.Once
	tokenUseCaseInit       sync.Once
	executorInit           sync.Once
	signerInit             sync.Once
	actionUseCaseInit      sync.Once
	backendInit            sync.Once
	approvalGateInit       sync.Once
	apiTokenServiceInit    sync.Once
	tokenHandlerInit       sync.Once
	signHandlerInit        sync.Once
	secretHandlerInit      sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the shared revocation registry connection. It is only available
// when REVOCATION_DB_DRIVER is set.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.keyManager != nil {
		c.keyManager.Close()
	}

	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("backend close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Logs go to stderr so delegated exec output on stdout stays clean.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB connects to the shared revocation registry database.
func (c *Container) initDB() (*sql.DB, error) {
	if c.config.RevocationDBDriver == "" {
		return nil, fmt.Errorf("no revocation database configured (REVOCATION_DB_DRIVER is empty)")
	}

	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.RevocationDBDriver,
		ConnectionString:   c.config.RevocationDBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initMetricsProvider creates the provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the recorder on top of the metrics provider.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the API server and configures its router.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	var db *sql.DB
	if c.config.RevocationDBDriver != "" {
		var err error
		if db, err = c.DB(); err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}
	signHandler, err := c.SignHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get sign handler for http server: %w", err)
	}
	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(
		c.ctx,
		c.config,
		tokenHandler,
		signHandler,
		secretHandler,
		c.APITokenService(),
		provider,
	)
	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
