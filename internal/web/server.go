// Package web serves the spec dashboard over HTTP: a JSON API, a stream of
// server-sent reload events and a small HTML page.
//
// The server holds the latest scan result behind an atomic pointer. Every
// request reads whatever result is current; a rescan swaps in a new one and
// then tells connected event streams to reload.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/spec-view-go/internal/history"
	"github.com/nibzard/spec-view-go/internal/logging"
	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/watcher"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	keepAliveInterval = 30 * time.Second
)

// ScanFunc produces a fresh scan result.
type ScanFunc func() (*scanner.Result, error)

// HistoryFunc returns recent commits for the project.
type HistoryFunc func(ctx context.Context) ([]history.Commit, error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory sets the source of /api/history. Without it the endpoint
// returns no commits.
func WithHistory(fn HistoryFunc) Option {
	return func(s *Server) {
		s.history = fn
	}
}

type snapshot struct {
	result *scanner.Result
	at     time.Time
}

// Server is the HTTP dashboard.
type Server struct {
	scan    ScanFunc
	history HistoryFunc
	logger  *log.Logger

	current atomic.Pointer[snapshot]
	reloads *watcher.Notifier
	mux     *http.ServeMux
}

// New creates a server and performs the initial scan.
func New(scan ScanFunc, opts ...Option) (*Server, error) {
	if scan == nil {
		return nil, errors.New("web: scan function is required")
	}
	s := &Server{
		scan:    scan,
		logger:  logging.Discard(),
		reloads: watcher.NewNotifier(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Rescan(); err != nil {
		return nil, err
	}

	s.mux.HandleFunc("GET /api/specs", s.handleSpecs)
	s.mux.HandleFunc("GET /api/specs/{name}", s.handleSpec)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /events", s.handleEvents)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Result returns the current scan result.
func (s *Server) Result() *scanner.Result {
	return s.current.Load().result
}

// Rescan replaces the current result and notifies event streams. On error
// the previous result stays in place.
func (s *Server) Rescan() error {
	result, err := s.scan()
	if err != nil {
		return fmt.Errorf("scan specs: %w", err)
	}
	s.current.Store(&snapshot{result: result, at: time.Now().UTC()})
	s.reloads.Notify()
	return nil
}

// Follow rescans whenever changes fires, until ctx is done or changes is
// closed.
func (s *Server) Follow(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := s.Rescan(); err != nil {
				s.logger.Error("rescan failed", "err", err)
				continue
			}
			s.logger.Debug("rescanned", "groups", len(s.Result().Groups))
		}
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving dashboard", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSpecsJSON(s.current.Load()))
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	name := r.PathValue("name")
	g := snap.result.Group(name)
	if g == nil {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: fmt.Sprintf("spec %q not found", name)})
		return
	}
	writeJSON(w, http.StatusOK, newGroupDetailJSON(g, snap.result.Root))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var commits []history.Commit
	if s.history != nil {
		var err error
		commits, err = s.history(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorJSON{Error: err.Error()})
			return
		}
	}
	if commits == nil {
		commits = []history.Commit{}
	}
	writeJSON(w, http.StatusOK, historyJSON{Commits: commits, Summary: history.Summarize(commits)})
}

// handleEvents streams "data: reload" after every rescan.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	ch, cancel := s.reloads.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Debug("event stream cannot flush", "err", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		var msg string
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			msg = ": keep-alive\n\n"
		case <-ch:
			msg = "data: reload\n\n"
		}
		if _, err := fmt.Fprint(w, msg); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
