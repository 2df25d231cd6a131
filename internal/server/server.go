package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/api"
	"github.com/inferloop/statlab/internal/api/middleware"
	"github.com/inferloop/statlab/internal/observability/metrics"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	metrics    *metrics.PrometheusMetrics
	engine     *analytics.Engine
	logger     *logrus.Logger
	config     *Config
}

// NewServer creates a new HTTP server instance
func NewServer(config *Config, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	if logger == nil {
		logger = config.NewLogger()
	}

	pm, err := metrics.NewPrometheusMetrics(&config.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	engine := analytics.NewEngine(&config.Engine, logger, pm)

	router := api.NewRouter(engine, pm, logger, config.Version,
		api.WithEnvironment(config.Environment),
		api.WithLoggingConfig(&config.AccessLog),
	).SetupRoutes()

	// CORS wraps the router so preflight requests are answered before route matching.
	handler := middleware.NewCORSMiddleware(&config.CORS, logger).Middleware()(router)

	server := &Server{
		handler: handler,
		metrics: pm,
		engine:  engine,
		logger:  logger,
		config:  config,
	}

	server.httpServer = &http.Server{
		Addr:           config.GetAddress(),
		Handler:        handler,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		IdleTimeout:    config.Server.IdleTimeout,
		MaxHeaderBytes: config.Server.MaxHeaderBytes,
	}

	return server, nil
}

// Start serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.metrics.Start(ctx); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"address":     s.httpServer.Addr,
			"version":     s.config.Version,
			"environment": s.config.Environment,
		}).Info("Starting HTTP server")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop gracefully stops the HTTP and metrics servers
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.metrics.Stop(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("Error shutting down metrics server")
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("Error shutting down HTTP server")
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Engine returns the analytics engine behind the API
func (s *Server) Engine() *analytics.Engine {
	return s.engine
}

// GetConfig returns the server configuration
func (s *Server) GetConfig() *Config {
	return s.config
}
