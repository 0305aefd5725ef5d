// Package server exposes the site's content, feeds and cached social data
// over a read-only HTTP API for local previews. Every request reads the
// filesystem again, so edits to articles show up without a restart.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/anasaboreeda/anascode/internal/cache"
	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
)

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source used for feed and sitemap dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogger sets the logger used for access and error logs.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server serves the preview API.
type Server struct {
	cfg    *config.Config
	index  *content.Index
	store  *cache.FileStore
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a server over index. store may be nil, in which case the
// tweets endpoint always returns an empty list.
func New(cfg *config.Config, index *content.Index, store *cache.FileStore, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		index:  index,
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	}))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/rss", s.handleRSS)
	r.Get("/sitemap.xml", s.handleSitemap)

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleListArticles)
		r.Get("/articles/{slug}", s.handleGetArticle)
		r.Get("/tweets", s.handleTweets)
		r.Get("/links", s.handleLinks)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return s.logger.WithContext(context.Background())
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("preview server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
