// Package serve runs the local preview server: it serves the public
// directory, rebuilds on change and pushes reloads to open browsers.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron/v2"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/site"
)

// StatusPath reports the outcome of the latest build as JSON.
const StatusPath = "/_status"

// Builder runs one build and returns its report.
type Builder func(ctx context.Context) (*site.BuildReport, error)

// Options configures a Server.
type Options struct {
	Addr   string
	Public string
	// Watch lists files and directories that trigger a rebuild on change.
	Watch []string
	// RebuildEvery schedules periodic rebuilds when positive.
	RebuildEvery time.Duration
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Status is the JSON body served at StatusPath.
type Status struct {
	BuildID  string    `json:"build_id"`
	Outcome  string    `json:"outcome"`
	Errors   []string  `json:"errors"`
	Warnings int       `json:"warnings"`
	Finished time.Time `json:"finished"`
	Builds   int       `json:"builds"`
}

// Server serves the generated site. Requests hold a read lock on the public
// directory while a rebuild holds the write lock.
type Server struct {
	opts    Options
	build   Builder
	logger  *slog.Logger
	hub     *LiveReloadHub
	gate    sync.RWMutex
	handler http.Handler
	errs    *foundationerrors.HTTPErrorAdapter

	mu        sync.Mutex
	status    Status
	lastErr   error
	goodBuild bool
	running   bool
	pending   bool
}

func New(build Builder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{opts: opts, build: build, logger: opts.Logger, hub: NewLiveReloadHub()}
	s.errs = foundationerrors.NewHTTPErrorAdapter(opts.Logger)
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.handler }

// Status returns the latest build status.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.Errors = append([]string(nil), s.status.Errors...)
	return st
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get(StatusPath, s.handleStatus)
	r.Handle(LiveReloadPath, s.hub)
	r.Get(LiveReloadPath+".js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(LiveReloadScript))
	})
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}
	files := injectLiveReload(http.FileServer(http.Dir(s.opts.Public)))
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.gate.RLock()
		defer s.gate.RUnlock()
		if err := s.failure(); err != nil {
			s.errs.WriteErrorResponse(w, req, err)
			return
		}
		files.ServeHTTP(w, req)
	}))
	return r
}

// failure returns the last build error while no build has succeeded yet.
func (s *Server) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goodBuild {
		return nil
	}
	return s.lastErr
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		s.logger.Error("failed to write status", logfields.Error(err))
	}
}

// Rebuild runs the builder while holding the write lock and broadcasts the
// new build id to live reload clients.
func (s *Server) Rebuild(ctx context.Context) error {
	s.gate.Lock()
	report, err := s.build(ctx)
	s.gate.Unlock()

	s.mu.Lock()
	st := Status{Builds: s.status.Builds + 1, Finished: time.Now()}
	if report != nil {
		st.BuildID = report.BuildID
		st.Outcome = string(report.Outcome)
		st.Warnings = len(report.Warnings)
		for _, e := range report.Errors {
			st.Errors = append(st.Errors, e.Error())
		}
	}
	if err != nil && len(st.Errors) == 0 {
		st.Errors = []string{err.Error()}
	}
	if err == nil {
		s.goodBuild = true
	}
	s.lastErr = err
	s.status = st
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("rebuild failed", logfields.Error(err))
		return err
	}
	s.hub.Broadcast(st.BuildID)
	return nil
}

// requestRebuild runs a rebuild unless one is in flight, in which case exactly
// one follow-up rebuild is queued.
func (s *Server) requestRebuild(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		s.logger.Info("Change detected; rebuilding site")
		_ = s.Rebuild(ctx)
		s.mu.Lock()
		if !s.pending || ctx.Err() != nil {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()
	}
}

// Run performs an initial build, then serves until ctx is canceled. A failed
// initial build is reported through the status endpoint and does not stop
// the server.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil && ctx.Err() != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryNetwork, "failed to listen").
			WithContext("addr", s.opts.Addr).Build()
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	deb := newDebouncer(DebounceWindow)
	defer deb.Stop()
	w, err := newWatcher(s.opts.Watch, s.logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = w.Close() }()
	go w.run(ctx, deb.Trigger)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-deb.C:
				s.requestRebuild(ctx)
			}
		}
	}()

	if s.opts.RebuildEvery > 0 {
		sched, err := s.schedule(ctx, s.opts.RebuildEvery, deb.fire)
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer func() { _ = sched.Shutdown() }()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving site", slog.String("url", "http://"+ln.Addr().String()+"/"))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryNetwork, "server failed").Build()
		}
	}

	s.logger.Info("Shutting down preview server...")
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}

// schedule starts a gocron scheduler invoking fn every interval.
func (s *Server) schedule(_ context.Context, interval time.Duration, fn func()) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	sched.Start()
	s.logger.Info("Scheduled periodic rebuild", slog.Duration("interval", interval))
	return sched, nil
}
