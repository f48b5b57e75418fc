package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() (*http.Server, error) {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	if err := s.configureTLS(server); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates are already in TLSConfig
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	s.cleanup()
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup stops the background sweepers of the rate limiter and the
// session store.
func (s *Server) cleanup() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
	if s.Sessions != nil {
		s.Sessions.Close()
	}
}
