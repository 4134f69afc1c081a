package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushchain/svm-deposit-encoder/depositClient/chains/svm"
)

// Server provides HTTP endpoints
type Server struct {
	logger         zerolog.Logger
	server         *http.Server
	encoder        DepositBuilder
	health         HealthChecker
	discriminators *svm.DiscriminatorResolver
}

// NewServer creates a new Server instance. health may be nil when no chain
// connection backs the server.
func NewServer(logger zerolog.Logger, port int, encoder DepositBuilder, health HealthChecker) *Server {
	s := &Server{
		logger:         logger.With().Str("component", "api").Logger(),
		encoder:        encoder,
		health:         health,
		discriminators: svm.NewDiscriminatorResolver(nil),
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("api server is nil")
	}

	startupChan := make(chan error, 1)

	go func() {
		// Verify the port is available before serving
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			startupChan <- fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
			return
		}
		ln.Close()

		startupChan <- nil

		err = s.server.ListenAndServe()
		switch err {
		case nil:
			s.logger.Info().Msg("API server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("API server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	select {
	case err := <-startupChan:
		if err != nil {
			return err
		}
		s.logger.Info().Str("addr", s.server.Addr).Msg("API server started")
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server startup timeout")
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
