package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/observability"
	"github.com/kbukum/carmarket/server/boundary"
	"github.com/kbukum/carmarket/server/endpoint"
	"github.com/kbukum/carmarket/server/middleware"
)

// Server is the carmarket HTTP server: a Gin engine behind h2c whose every
// failure leaves as an error envelope.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	responder  *boundary.Responder
	config     Config
	log        *logger.Logger
}

// New creates a Server. metrics may be nil.
func New(cfg Config, log *logger.Logger, metrics *observability.ErrorMetrics) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h2c.NewHandler(engine, h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		responder:  boundary.NewResponder(log, metrics, cfg.ExposeCause),
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the h2c-wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ApplyMiddleware installs request id, request logging, the error boundary,
// panic recovery, the body size limit and, when configured, rate limiting.
// Unmatched routes and methods answer with error envelopes.
func (s *Server) ApplyMiddleware() {
	maxBody, err := middleware.ParseSize(s.config.MaxBodySize)
	if err != nil {
		maxBody = middleware.DefaultMaxBodySize
	}

	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.log))
	s.engine.Use(s.responder.Handler())
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.BodySizeLimit(maxBody))
	if s.config.RateLimit > 0 {
		s.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: s.config.RateLimit,
		}))
	}

	s.engine.NoRoute(boundary.NoRoute())
	s.engine.NoMethod(boundary.NoMethod())
}

// RegisterDefaultEndpoints registers /health, /errors, /errors/:code and
// /schemas/error.
func (s *Server) RegisterDefaultEndpoints(serviceName, version string, reg *errors.Registry) {
	s.engine.GET("/health", endpoint.Health(serviceName, version, observability.RegistryHealth(reg)))
	s.engine.GET("/errors", endpoint.Catalog(reg))
	s.engine.GET("/errors/:code", endpoint.CatalogItem(reg))
	s.engine.GET("/schemas/error", endpoint.Schema())
}

// RegisterMetrics serves a scrape handler at GET /metrics. A nil handler is
// ignored.
func (s *Server) RegisterMetrics(h http.Handler) {
	if h == nil {
		return
	}
	s.engine.GET("/metrics", gin.WrapH(h))
}

// ApplyDefaults applies the standard middleware stack and registers default endpoints.
func (s *Server) ApplyDefaults(serviceName, version string, reg *errors.Registry) {
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(serviceName, version, reg)
}

// Protected returns a route group behind bearer token authentication.
func (s *Server) Protected(prefix string) *gin.RouterGroup {
	return s.engine.Group(prefix, middleware.Auth(s.config.Auth))
}
