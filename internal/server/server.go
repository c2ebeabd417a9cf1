// Package server exposes a session over HTTP and streams its log over a
// websocket while a background loop ticks the city in real time.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samlin1112/CitySim/pkg/session"
	"github.com/samlin1112/CitySim/pkg/store"
)

// Options configures a Server.
type Options struct {
	Port         int
	TickInterval time.Duration
	AutoTick     bool
	// Store enables the save slot endpoints when set.
	Store   *store.Store
	History *session.History
	Hub     *Hub
	Logger  *slog.Logger
}

// Server serves one session. All session access goes through mu.
type Server struct {
	mu      sync.Mutex
	sess    *session.Session
	paused  bool
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

// New creates a server for sess.
func New(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.History == nil {
		opts.History = session.NewHistory(0)
	}
	if opts.Hub == nil {
		opts.Hub = NewHub(opts.Logger)
	}
	s := &Server{
		sess:   sess,
		paused: !opts.AutoTick,
		opts:   opts,
		logger: opts.Logger,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.opts.Hub.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/report", s.handleReport)
		r.Get("/log", s.handleLog)

		r.Post("/new", s.handleNew)
		r.Post("/clear", s.handleClear)
		r.Post("/tick", s.handleTick)
		r.Post("/build", s.handleBuild)
		r.Get("/upgrade", s.handleQuoteUpgrade)
		r.Post("/upgrade", s.handleUpgrade)
		r.Post("/event", s.handleEvent)
		r.Put("/tax", s.handleTax)
		r.Post("/pause", s.handlePause)

		r.Get("/save", s.handleSave)
		r.Post("/load", s.handleLoad)

		if s.opts.Store != nil {
			r.Get("/slots", s.handleListSlots)
			r.Post("/slots", s.handleSaveSlot)
			r.Post("/slots/{id}/load", s.handleLoadSlot)
			r.Delete("/slots/{id}", s.handleDeleteSlot)
		}
	})
	return r
}

// Paused reports whether the real-time loop is holding.
func (s *Server) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// beat runs one real-time step unless paused.
func (s *Server) beat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return false
	}
	s.sess.Step()
	return true
}

func (s *Server) tickLoop(ctx context.Context) {
	t := time.NewTicker(s.opts.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.beat()
		}
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.opts.Hub.Run(ctx)
	if s.opts.TickInterval > 0 {
		go s.tickLoop(ctx)
	}

	addr := fmt.Sprintf(":%d", s.opts.Port)
	srv := &http.Server{Addr: addr, Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("CitySim server starting", "addr", "http://localhost"+addr,
			"session", s.sess.ID().String(), "auto_tick", !s.Paused(), "interval", s.opts.TickInterval)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
