package inspectgw

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	httpAdapter "github.com/bft-labs/inspectgw/internal/adapters/http"
	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/app"
	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/pkg/log"
)

// Server is the inspection search HTTP server.
// Use New() to create an instance, then Start() to begin serving.
type Server struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	gateway   *app.Gateway
	metrics   *httpAdapter.Metrics
	handler   http.Handler
	logger    log.Logger

	mu        sync.Mutex
	srv       *http.Server
	listener  net.Listener
	done      chan struct{} // closed by Stop
	served    chan struct{} // closed when Serve returns
	watchDone chan struct{} // closed when the ctx watcher exits
}

// New creates a Server in StateStopped.
// Returns an error if the configuration is invalid or no database access
// was configured (WithCredentials or WithSessionOpener).
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	opener := o.opener
	if opener == nil {
		if o.credentials == nil {
			return nil, fmt.Errorf("%w: credentials or session opener required", domain.ErrInvalidConfig)
		}
		sqlOpener, err := sqlstore.NewOpener(cfg.Dialect, o.credentials)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		opener = sqlOpener
	}

	query, err := sqlstore.RangeQuery(cfg.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	s := &Server{
		config:  cfg,
		opts:    o,
		metrics: httpAdapter.NewMetrics(),
		logger:  logger,
	}

	s.lifecycle = app.NewLifecycle(logger, s.onStateChange)
	s.gateway = app.NewGateway(app.GatewayConfig{
		Query:   query,
		LogRows: cfg.LogRows,
	}, opener, s.metrics, logger)
	s.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AllowedOrigins:      cfg.AllowedOrigins,
		RedactStorageErrors: cfg.RedactStorageErrors,
	}, s.gateway, func() string { return s.Status().String() }, s.metrics, logger)

	return s, nil
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is bound. Cancelling ctx stops the server
// the same way Stop does; ctx is also the base context of every request.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "listen failed")
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	done := make(chan struct{})
	served := make(chan struct{})
	watchDone := make(chan struct{})
	s.srv = srv
	s.listener = ln
	s.done = done
	s.served = served
	s.watchDone = watchDone

	if err := s.lifecycle.TransitionTo(app.StateRunning, "listening on "+ln.Addr().String()); err != nil {
		_ = ln.Close()
		return err
	}

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", log.Err(err))
			_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	}()

	go func() {
		defer close(watchDone)
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
				s.logger.Warn("stop on context cancel", log.Err(err))
			}
		case <-done:
		case <-served:
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, letting in-flight searches finish
// within the configured shutdown timeout.
// Returns nil on graceful shutdown, ErrShutdownTimeout if connections had
// to be closed forcibly, and ErrNotRunning if the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	srv := s.srv
	close(s.done)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("graceful shutdown incomplete, closing connections", log.Err(err))
		_ = srv.Close()
		err = domain.ErrShutdownTimeout
	}
	if werr := s.lifecycle.WaitWithTimeout(s.config.ShutdownTimeout); werr != nil && err == nil {
		err = werr
	}

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	return nil
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return s.lifecycle.State()
}

// Addr returns the bound listen address, or "" before the first Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the HTTP handler, for mounting the server in another
// mux or driving it with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) onStateChange(previous, current app.State, reason string) {
	s.metrics.SetServerState(int(current))
	if s.opts.eventHandler != nil {
		s.opts.eventHandler.OnStateChange(StateChangeEvent{
			Previous: previous,
			Current:  current,
			Reason:   reason,
		})
	}
}
