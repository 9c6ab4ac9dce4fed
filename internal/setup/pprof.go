package setup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"go.uber.org/zap"
)

// pprofServer serves the profiling endpoints on localhost only.
type pprofServer struct {
	srv      *http.Server
	listener net.Listener
	logger   *zap.Logger
}

// pprofMux registers the profiling handlers on their own mux so nothing else
// added to http.DefaultServeMux is exposed with them.
func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

// startPprofServer starts the profiling server. A port of 0 picks a free port.
func startPprofServer(port int, logger *zap.Logger) (*pprofServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	// Profiles can take 30 seconds to collect
	srv := &http.Server{
		Handler:           pprofMux(),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s := &pprofServer{
		srv:      srv,
		listener: listener,
		logger:   logger.Named("pprof"),
	}

	go func() {
		s.logger.Info("Starting pprof server", zap.String("address", s.Addr()))

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Pprof server failed", zap.Error(err))
		}
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *pprofServer) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the server and its listener.
func (s *pprofServer) Close(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown pprof server", zap.Error(err))
	}
}
