// Package http provides the API server, the metrics server and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoHTTP "github.com/allisson/orgvault/internal/crypto/http"
	"github.com/allisson/orgvault/internal/database"
	"github.com/allisson/orgvault/internal/metrics"
	secretsHTTP "github.com/allisson/orgvault/internal/secrets/http"
	tokensHTTP "github.com/allisson/orgvault/internal/tokens/http"
	tokensUseCase "github.com/allisson/orgvault/internal/tokens/usecase"
)

// Server is the public API server.
type Server struct {
	listener
	db     *sql.DB
	router *gin.Engine
}

// RouterConfig carries everything SetupRouter mounts.
type RouterConfig struct {
	SecretHandler    *secretsHTTP.SecretHandler
	TokenHandler     *tokensHTTP.TokenHandler
	MasterKeyHandler *cryptoHTTP.MasterKeyHandler
	TokenUseCase     tokensUseCase.TokenUseCase

	MetricsProvider  *metrics.Provider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitTokenEnabled        bool
	RateLimitTokenRequestsPerSec float64
	RateLimitTokenBurst          int
}

// NewServer creates a new API server. db is used by the readiness probe.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		listener: newListener("http server", host, port, logger),
		db:       db,
	}
}

// SetupRouter builds the gin engine. ctx bounds background work started by
// middleware, such as rate limiter cleanup.
func (s *Server) SetupRouter(ctx context.Context, cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cors := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); cors != nil {
		router.Use(cors)
	}
	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if h := cfg.SecretHandler; h != nil {
		orgSecrets := v1.Group("/organizations/:orgId/secrets")
		orgSecrets.POST("", h.CreateHandler)
		orgSecrets.GET("", h.ListHandler)
		orgSecrets.GET("/by-key/:key/value", h.GetValueByKeyHandler)

		secrets := v1.Group("/secrets/:id")
		secrets.GET("/value", h.GetValueHandler)
		secrets.PUT("/value", h.UpdateValueHandler)
		secrets.POST("/deactivate", h.DeactivateHandler)
		secrets.DELETE("", h.DeleteHandler)
		secrets.GET("/rotations", h.ListRotationsHandler)
		secrets.GET("/audit", h.AuditTrailHandler)
	}

	if h := cfg.TokenHandler; h != nil {
		v1.POST("/organizations/:orgId/tokens", h.GenerateHandler)
		v1.GET("/organizations/:orgId/tokens", h.ListHandler)
		v1.DELETE("/tokens/:id", h.RevokeHandler)

		// Both endpoints accept an unauthenticated token guess, so they share the
		// per-IP limiter.
		tokenGuarded := v1.Group("")
		if cfg.RateLimitTokenEnabled {
			tokenGuarded.Use(tokensHTTP.RateLimitMiddleware(
				ctx,
				cfg.RateLimitTokenRequestsPerSec,
				cfg.RateLimitTokenBurst,
				s.logger,
			))
		}
		tokenGuarded.POST("/tokens/validate", h.ValidateHandler)
		tokenGuarded.GET("/service/secrets/:key",
			tokensHTTP.TokenAuthenticationMiddleware(cfg.TokenUseCase, s.logger),
			h.ServiceSecretHandler,
		)
	}

	if h := cfg.MasterKeyHandler; h != nil {
		v1.POST("/admin/master-keys", h.AddHandler)
	}

	s.router = router
}

// Start serves until Shutdown is called. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	return s.serve(s.router)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

// GetHandler returns the configured router for tests.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil || database.Ping(c.Request.Context(), s.db) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
