// Package web exposes the tracker over HTTP: a small JSON API for the form
// and table views, and an SSE stream of ladder events for live updates.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/laddr/internal/domain"
)

const eventPollInterval = 2 * time.Second

type ladderEventReader interface {
	EventsAfter(index uint64) ([]domain.LadderEventRecord, error)
}

// Server serves the ladder API.
type Server struct {
	addr    string
	tracker Tracker
	events  ladderEventReader
	log     *zap.Logger
}

// NewServer creates a server over the tracker. events may be nil, in which
// case the stream endpoint reports unavailable.
func NewServer(addr string, tracker Tracker, events ladderEventReader, log *zap.Logger) *Server {
	return &Server{addr: addr, tracker: tracker, events: events, log: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/ladders", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/win", s.handleWinTap)
			r.Post("/loss", s.handleLoss)
			r.Post("/select", s.handleSelect)
		})
	})
	r.Get("/events/stream", s.handleEventStream)

	return r
}

// Start runs the HTTP server and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("web server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
