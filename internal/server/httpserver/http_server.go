// Package httpserver wires the mdsite HTTP routes, middleware and listener.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	derrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/mdsite/internal/server/middleware"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// Options configures optional server wiring.
type Options struct {
	// Recorder receives response metrics. Defaults to a no-op recorder.
	Recorder metrics.Recorder
	// Registry, when set, is exposed on /metrics.
	Registry *prom.Registry
	Logger   *slog.Logger
}

// Server serves one site over HTTP.
type Server struct {
	site         *site.Site
	opts         Options
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter
	handler      http.Handler
	srv          *http.Server
}

// New constructs the server and its route table.
func New(s *site.Site, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	srv := &Server{
		site:         s,
		opts:         opts,
		logger:       opts.Logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
	}
	srv.handler = srv.routes()
	return srv
}

// Handler returns the full handler including middleware, for CGI and tests.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	content := handlers.NewContentHandlers(s.site, s.errorAdapter, s.logger)
	monitoring := handlers.NewMonitoringHandlers(s.site.Config().Site.Types, s.errorAdapter)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", content.HandleHome)
	mux.HandleFunc("GET /sitemap.xml", content.HandleSitemap)
	mux.HandleFunc("GET /meta.json", content.HandleIndex)
	mux.HandleFunc("GET /healthz", monitoring.HandleHealthCheck)
	if s.opts.Registry != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	mux.HandleFunc("GET /", content.HandleContent)
	mux.HandleFunc("/", content.HandleNotFound)

	var h http.Handler = mux
	if prefix := strings.TrimSuffix(s.site.Config().Site.WebPath, "/"); prefix != "" {
		h = http.StripPrefix(prefix, mux)
	}
	return smw.Chain(s.logger, s.errorAdapter, s.opts.Recorder)(h)
}

// Start binds the listen address and serves in the background. Bind errors are
// returned before any goroutine starts.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.site.Config()
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
