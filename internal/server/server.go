// Package server serves the public directory over HTTP with cache headers
// keyed on the asset version parameter, plus a lookup endpoint that
// returns versioned URLs.
package server

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/assetver/internal/config"
	"github.com/vango-dev/assetver/internal/errors"
	"github.com/vango-dev/assetver/pkg/assets"
)

const (
	// LookupPath is the route of the versioned-URL lookup endpoint.
	LookupPath = "/_assets/url"

	// MetricsPath is the route of the Prometheus endpoint.
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Server is the asset HTTP server.
type Server struct {
	cfg       *config.Config
	versioner *assets.Versioner
	staticFS  fs.FS
	logger    zerolog.Logger
	tracer    trace.Tracer
	gatherer  prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTracer sets the tracer used for request spans.
// Default: otel.Tracer("assetver").
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithGatherer sets the registry exposed on /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithStaticFS serves static files from fsys instead of the configured
// public directory.
func WithStaticFS(fsys fs.FS) Option {
	return func(s *Server) { s.staticFS = fsys }
}

// New creates a Server for cfg that versions lookups with v.
func New(cfg *config.Config, v *assets.Versioner, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		versioner: v,
		logger:    zerolog.Nop(),
		tracer:    otel.Tracer("assetver"),
		gatherer:  prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.staticFS == nil {
		s.staticFS = os.DirFS(cfg.PublicPath())
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(tracing(s.tracer))

	r.Group(func(r chi.Router) {
		if limit := s.cfg.Server.RateLimit; limit > 0 {
			r.Use(rateLimit(limit, time.Minute))
		}
		r.Get(LookupPath, s.handleLookup)
	})
	r.Handle(MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Everything else is a static file candidate.
	r.NotFound(s.serveStatic)
	r.MethodNotAllowed(s.serveStatic)

	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return errors.FromError(err, "A140")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("public", s.cfg.PublicPath()).
			Msg("asset server listening")
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.FromError(err, "A140")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("asset server shutdown")
		}
		return nil
	})
	return g.Wait()
}
