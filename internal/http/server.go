// Package http provides the broker API server, the metrics server and the
// middleware they share.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	actionHTTP "github.com/allisson/secretbroker/internal/action/http"
	authHTTP "github.com/allisson/secretbroker/internal/auth/http"
	authService "github.com/allisson/secretbroker/internal/auth/service"
	backendHTTP "github.com/allisson/secretbroker/internal/backend/http"
	"github.com/allisson/secretbroker/internal/config"
	"github.com/allisson/secretbroker/internal/metrics"
	tokenHTTP "github.com/allisson/secretbroker/internal/token/http"
)

// Server represents the broker API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new API server. db is the shared revocation registry
// connection and may be nil when revocations are kept in process memory.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// SetupRouter builds the gin engine.
//
// Health endpoints are always mounted. The /v1 API is mounted only when
// cfg.APITokenHash is set, behind bearer authentication and, when enabled,
// per-IP rate limiting. ctx bounds background work started by the middleware.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	tokenHandler *tokenHTTP.TokenHandler,
	signHandler *actionHTTP.SignHandler,
	secretHandler *backendHTTP.SecretHandler,
	apiTokenService authService.APITokenService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if cfg.APITokenHash == "" {
		s.logger.Warn("API_TOKEN_HASH is not set - the /v1 API is disabled")
		s.router = router
		return
	}

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.Use(authHTTP.AuthenticationMiddleware(cfg.APITokenHash, apiTokenService, s.logger))
	{
		v1.POST("/tokens", tokenHandler.IssueTokenHandler)
		v1.POST("/tokens/revoke", tokenHandler.RevokeTokenHandler)
		v1.POST("/keys/rotate", tokenHandler.RotateKeyHandler)
		v1.POST("/sign", signHandler.SignHandler)
		v1.GET("/secrets", secretHandler.ListHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the revocation registry is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"revocation_registry": "memory"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"revocation_registry": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"revocation_registry": "ok"},
	})
}
