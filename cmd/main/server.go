package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CTAG07/hashmark/pkg/templating"
)

// shutdownTimeout bounds how long in-flight requests may take on shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves the preview API.
type Server struct {
	config      *Config
	logger      *slog.Logger
	tm          *templating.TemplateManager
	templateAPI *TemplateAPI
	serverAPI   *ServerAPI
	apiMux      *http.ServeMux
}

// NewServer loads the templates and registers all API routes. labels may be
// nil.
func NewServer(config *Config, logger *slog.Logger, labels labelSource) (*Server, error) {
	tm, err := templating.NewTemplateManager(logger, config.Templates, config.Server.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	renderer := NewRenderer(tm, labels, config.Render, logger)

	server := &Server{
		config:      config,
		logger:      logger,
		tm:          tm,
		templateAPI: NewTemplateAPI(tm, renderer, logger),
		serverAPI:   NewServerAPI(config, logger),
		apiMux:      http.NewServeMux(),
	}
	server.templateAPI.RegisterRoutes(server.apiMux)
	server.serverAPI.RegisterRoutes(server.apiMux)
	return server, nil
}

// Run serves the API until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Server.ApiAddr,
		Handler:           s.apiMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting preview api server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped.")
	return nil
}
