// Package server exposes the layout engine over HTTP for rendering
// consumers.
//
// The server wraps a pipeline Runner and serves its output three ways:
//
//   - REST endpoints under /api returning layout documents, commits, and
//     branches as JSON
//   - a websocket at /ws that pushes a fresh layout document whenever the
//     repository changes
//   - /healthz for liveness checks
//
// When watching is enabled, filesystem events on the .git directory are
// debounced and trigger a recompute. Recomputes are tagged with a
// generation counter and applied last-completed-wins: a slow recompute
// that finishes after a newer one is discarded instead of overwriting
// fresher state.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gitlanes/pkg/cache"
	gerrors "github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/source"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:7420"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// Pipeline is the base pipeline configuration. Per-request limit and
	// skip query parameters are applied on top of it.
	Pipeline pipeline.Options

	// Addr is the listen address. Empty means DefaultAddr.
	Addr string

	// Watch recomputes and broadcasts when the repository changes.
	Watch bool

	// Logger receives request and recompute logging. Nil discards.
	Logger *log.Logger
}

// Server serves layout output over HTTP and websocket.
type Server struct {
	runner   *pipeline.Runner
	opts     Options
	logger   *log.Logger
	hub      *Hub
	repoRoot string

	watch watchState

	baseCtx context.Context

	// gen numbers recomputes; applied is the generation of the stored
	// result. store discards results older than applied.
	gen     atomic.Uint64
	mu      sync.RWMutex
	applied uint64
	result  *pipeline.Result
}

// New creates a server around a runner. A nil runner gets a default
// uncached one.
func New(runner *pipeline.Runner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}

	root := opts.Pipeline.Repo
	if root != "" {
		if detected, err := source.DetectRoot(root); err == nil {
			root = detected
		}
	}

	return &Server{
		runner:   runner,
		opts:     opts,
		logger:   logger,
		hub:      NewHub(),
		repoRoot: root,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Get("/graph", s.handleGraph)
		api.Get("/commits", s.handleCommits)
		api.Get("/branches", s.handleBranches)
	})
	r.Get("/ws", s.handleSocket)
	return r
}

// Start loads an initial result, begins watching when configured, and
// serves until ctx is canceled. Returns ctx.Err() after a graceful stop
// so callers can distinguish signals from listen failures.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx

	if err := s.load(ctx); err != nil {
		return err
	}

	if s.opts.Watch {
		if err := s.enableWatch(ctx); err != nil {
			s.logger.Warn("live recompute disabled", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", s.opts.Addr, "repo", s.opts.Pipeline.Repo)

	select {
	case <-ctx.Done():
		s.disableWatch()
		s.hub.CloseAll()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Recompute
// =============================================================================

// load runs the pipeline once and stores the result, using caches.
func (s *Server) load(ctx context.Context) error {
	gen := s.gen.Add(1)

	opts := s.opts.Pipeline
	opts.Formats = []string{pipeline.FormatJSON}

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	s.store(gen, res)
	return nil
}

// refresh recomputes with caches bypassed and broadcasts the new layout.
// Lock contention with a concurrent git process is retried with backoff.
func (s *Server) refresh(ctx context.Context) {
	gen := s.gen.Add(1)

	opts := s.opts.Pipeline
	opts.Refresh = true
	opts.Formats = []string{pipeline.FormatJSON}

	var res *pipeline.Result
	err := cache.RetryWithBackoff(ctx, func() error {
		out, err := s.runner.Execute(ctx, opts)
		if err != nil {
			var locked *gerrors.RepoLockedError
			if stderrors.As(err, &locked) {
				return cache.Retryable(err)
			}
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		s.logger.Error("recompute failed", "error", err)
		s.hub.Broadcast(Frame{Type: FrameError})
		return
	}

	if !s.store(gen, res) {
		s.logger.Debug("recompute superseded", "generation", gen)
		return
	}
	s.broadcastGraph(res)
}

// store applies a result unless a newer generation has already landed.
func (s *Server) store(gen uint64, res *pipeline.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		return false
	}
	s.applied = gen
	s.result = res
	return true
}

// latest returns the most recently applied result, or nil before the
// first load.
func (s *Server) latest() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Server) broadcastGraph(res *pipeline.Result) {
	data := res.Artifacts[pipeline.FormatJSON]
	if data == nil {
		return
	}
	s.hub.Broadcast(Frame{Type: FrameGraph, Data: data})
	s.logger.Debug("broadcast layout", "clients", s.hub.Clients(), "bytes", len(data))
}

func (s *Server) refreshCtx() context.Context {
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return context.Background()
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed,
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// sameHostOrigin rejects cross-site websocket connects while letting
// non-browser clients (no Origin header) through.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
