package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"resumeats/internal/config"
	"resumeats/internal/observability"
)

// Start serves HTTP until ctx is cancelled, then shuts down gracefully. The
// render worker and the Vault key watcher run alongside when configured.
func (s *Server) Start(ctx context.Context) error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if s.deps.Orders != nil {
		s.deps.Orders.WithMetrics(om.GetMetrics())
	}

	httpServer := s.setupHTTPServer(om)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	workerDone := s.startWorker(bgCtx)

	if err := s.startKeyWatcher(bgCtx); err != nil {
		return err
	}

	s.displayServerInfo(os.Stdout, om)

	err = s.startWithGracefulShutdown(ctx, httpServer)

	stopBackground()
	if werr := <-workerDone; werr != nil {
		s.Logger.LogError(werr, "Render worker stopped with error")
	}
	return err
}

// Handler returns the instrumented route tree. It is used by tests and by
// callers embedding the API in another server.
func (s *Server) Handler(om *observability.ObservabilityManager) http.Handler {
	return om.HTTPMiddleware()(s.setupRoutes(om))
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)
	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(om),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWorker runs the in-process render worker. The returned channel
// yields the worker result once it stops.
func (s *Server) startWorker(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if s.deps.Worker == nil {
		done <- nil
		return done
	}

	go func() {
		done <- s.deps.Worker.Run(ctx)
	}()
	s.Logger.Info("Render worker started in-process")
	return done
}

// startKeyWatcher polls Vault for API key changes when key refresh is set
func (s *Server) startKeyWatcher(ctx context.Context) error {
	if s.AppConfig == nil {
		return nil
	}
	vaultCfg := s.AppConfig.Vault
	if !vaultCfg.Enabled || vaultCfg.KeyRefresh <= 0 || vaultCfg.Secrets.APIKeys == "" {
		return nil
	}

	client, err := config.NewVaultClient(vaultCfg, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to create vault client for key refresh: %w", err)
	}

	watcher := NewVaultWatcher(client, vaultCfg.Secrets.APIKeys, vaultCfg.KeyRefresh, func(keys []string, err error) {
		if err == nil {
			s.APIKeys.Replace(keys)
		}
	}, s.Logger)
	go watcher.Run(ctx)
	return nil
}

// startWithGracefulShutdown starts the HTTP server and shuts it down when ctx ends
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
