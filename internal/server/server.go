package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"cinephile/internal/logging"
	"cinephile/internal/query"
)

// BreakerReporter exposes the trivia circuit breaker state for health checks.
type BreakerReporter interface {
	BreakerState() string
}

// Options configures a Server.
type Options struct {
	Bind    string
	LockDir string
	Logger  *slog.Logger
	Breaker BreakerReporter
}

// Server serves the HTTP query API.
type Server struct {
	bind    string
	logger  *slog.Logger
	svc     *query.Service
	breaker BreakerReporter

	lockPath string
	lock     *flock.Flock

	listener net.Listener
	server   *http.Server
}

// New constructs a server over svc. Call Start to begin listening.
func New(svc *query.Service, opts Options) (*Server, error) {
	if svc == nil {
		return nil, errors.New("server requires a query service")
	}
	bind := strings.TrimSpace(opts.Bind)
	if bind == "" {
		return nil, errors.New("server requires a bind address")
	}
	s := &Server{
		bind:    bind,
		logger:  logging.NewComponentLogger(opts.Logger, "api-server"),
		svc:     svc,
		breaker: opts.Breaker,
	}
	if opts.LockDir != "" {
		s.lockPath = filepath.Join(opts.LockDir, "cinephile-serve.lock")
		s.lock = flock.New(s.lockPath)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Start acquires the instance lock and begins serving in the background. The
// server shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.lock != nil {
		ok, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return errors.New("another cinephile server instance is already running")
		}
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		s.unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "server_listening"),
		logging.String("address", listener.Addr().String()),
		logging.Int("records", s.svc.Store().Len()),
	)
	return nil
}

// Addr returns the listening address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and releases the instance lock.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown failed", logging.Error(err))
	}
	s.unlock()
}

func (s *Server) unlock() {
	if s.lock == nil || !s.lock.Locked() {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release server lock", logging.Error(err))
	}
}
