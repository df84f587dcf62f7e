package dev

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/vango-dev/routetree/internal/config"
	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/router"
	"github.com/vango-dev/routetree/pkg/telemetry"
)

// ErrNotLoaded is returned while no route map has loaded successfully.
var ErrNotLoaded = rterrors.New(rterrors.CodeNotLoaded)

// ServerOptions configures the preview server.
type ServerOptions struct {
	// Routes is the route map location: a file path, a file:// URI or an
	// s3://bucket/key URI.
	Routes string

	// Addr is the listen address (default: "localhost:4040").
	Addr string

	// Watch rebuilds the router when a local route map file changes.
	Watch bool

	// Debounce is the quiet period before a change is applied.
	Debounce time.Duration

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool

	// Logger receives server logs (default: slog.Default()).
	Logger *slog.Logger

	// Remote configures loading from S3.
	Remote []config.RemoteOption

	// OnReload is called after the router is rebuilt.
	OnReload func(clients int)
}

// Server serves a route map for inspection.
type Server struct {
	options ServerOptions
	logger  *slog.Logger

	mu     sync.RWMutex
	router *router.Router
	routes *config.Config

	resolver *telemetry.Instrumented
	metrics  *telemetry.Metrics
	hub      *Hub
	watcher  *Watcher

	runMu      sync.Mutex
	running    bool
	httpServer *http.Server
}

// NewServer creates a preview server. Call Load or Start before serving.
func NewServer(options ServerOptions) *Server {
	if options.Addr == "" {
		options.Addr = "localhost:4040"
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	s := &Server{
		options: options,
		logger:  options.Logger,
	}

	var opts []telemetry.Option
	if options.Metrics {
		s.metrics = telemetry.NewMetrics()
		opts = append(opts, telemetry.WithMetrics(s.metrics))
	}
	s.resolver = telemetry.Instrument(s, opts...)
	s.hub = NewHub(s.handleMessage)

	if options.Watch {
		if file, ok := localFile(options.Routes); ok {
			s.watcher = NewWatcher(WatcherConfig{
				Files:    []string{file},
				Debounce: options.Debounce,
			})
		}
	}
	return s
}

// Load reads the route map and replaces the active router. On failure the
// previous router stays active.
func (s *Server) Load(ctx context.Context) error {
	cfg, err := config.LoadURI(ctx, s.options.Routes, s.options.Remote...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r, err := cfg.Router(router.WithLogger(s.logger))
	if err != nil {
		return err
	}
	if err := r.Use(telemetry.Tracing(context.Background())); err != nil {
		r.Destroy()
		return err
	}

	s.mu.Lock()
	old := s.router
	s.router = r
	s.routes = cfg
	s.mu.Unlock()

	if old != nil {
		old.Destroy()
	}
	s.logger.Info("route map loaded",
		"source", s.options.Routes,
		"matchers", len(r.Matchers()))
	return nil
}

// Reload calls Load and notifies live channel clients of the outcome.
func (s *Server) Reload(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		s.logger.Error("route map rejected", "source", s.options.Routes, "error", err)
		s.hub.NotifyError(s.options.Routes, errorCode(err), err.Error())
		return err
	}

	s.hub.NotifyReload(s.options.Routes)
	if s.options.OnReload != nil {
		s.options.OnReload(s.hub.ClientCount())
	}
	return nil
}

// Router returns the active router, or nil before the first Load.
func (s *Server) Router() *router.Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

// Match resolves path against the active router.
func (s *Server) Match(path string) *router.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.router == nil {
		return nil
	}
	return s.router.Match(path)
}

// Generate builds a URL with the active router.
func (s *Server) Generate(name string, args ...any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.router == nil {
		return "", ErrNotLoaded
	}
	return s.router.Generate(name, args...)
}

// Hub returns the live channel hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Metrics returns the server's metrics, or nil when disabled.
func (s *Server) Metrics() *telemetry.Metrics {
	return s.metrics
}

// Start loads the route map and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return nil
	}
	s.running = true
	s.runMu.Unlock()

	if err := s.Load(ctx); err != nil {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
		return err
	}

	if s.watcher != nil {
		s.watcher.OnChange(func(change Change) {
			s.logger.Info("route map changed", "file", change.Path)
			_ = s.Reload(ctx)
		})
		go func() {
			if err := s.watcher.Start(ctx); err != nil && err != context.Canceled {
				s.logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	s.runMu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	s.runMu.Unlock()

	s.logger.Info("server running", "addr", "http://"+s.options.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the server and destroys the active router.
func (s *Server) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	if s.router != nil {
		s.router.Destroy()
		s.router = nil
	}
	s.mu.Unlock()
}

// localFile returns the file behind a route map location, if it is local.
func localFile(location string) (string, bool) {
	if location == "" {
		return "", false
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return location, true
	}
	if u.Scheme == "file" {
		return u.Path, true
	}
	return "", false
}
