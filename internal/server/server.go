// Package server wraps http.Server with graceful startup and shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gryroach/ugc-service/internal/config"
	"github.com/gryroach/ugc-service/internal/observability/logger"
)

const shutdownTimeout = 30 * time.Second

// Server runs an HTTP handler with configured timeouts and stops it
// gracefully on context cancellation.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     logger.Logger
	config     config.HTTPConfig
}

// New creates a Server around the handler.
func New(cfg config.HTTPConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		handler: handler,
		logger:  log,
		config:  cfg,
	}
}

// Start listens for requests until the context is cancelled, then shuts the
// server down gracefully. A startup failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting server", "port", s.config.Port)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting new connections and waits for in-flight requests
// to complete, bounded by shutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server", "addr", s.httpServer.Addr)

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown complete", "addr", s.httpServer.Addr)
	return nil
}
