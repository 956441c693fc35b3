package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"smartsched/internal/config"
	"smartsched/internal/store"
)

// Server represents the HTTP server of the scheduling service.
type Server struct {
	store      *store.Store
	handler    http.Handler
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer creates a new Server with an empty task store.
func NewServer(cfg config.Config, log zerolog.Logger) (*Server, error) {
	st := store.New(func(ev store.Event) {
		log.Debug().
			Str("event", ev.Kind.String()).
			Str("task_id", ev.TaskID).
			Uint64("revision", ev.Revision).
			Msg("store changed")
	})

	handlers, err := NewHandlers(st, cfg.CacheSize, cfg.MaxBodyBytes, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Register routes using Go 1.22+ method routing
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.HandleFunc("POST /tasks", handlers.HandleCreateTask)
	mux.HandleFunc("GET /tasks", handlers.HandleListTasks)
	mux.HandleFunc("DELETE /tasks", handlers.HandleClearTasks)
	mux.HandleFunc("GET /tasks/{id}", handlers.HandleGetTask)
	mux.HandleFunc("DELETE /tasks/{id}", handlers.HandleDeleteTask)
	mux.HandleFunc("POST /schedule", handlers.HandleSchedule)
	mux.HandleFunc("POST /schedule/preview", handlers.HandlePreview)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	handler := requestLogger(log, rateLimit(limiter, mux))

	return &Server{
		store:   st,
		handler: handler,
		log:     log,
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      h2c.NewHandler(handler, &http2.Server{}),
			ReadTimeout:  cfg.ReadTimeout(),
			WriteTimeout: cfg.WriteTimeout(),
		},
	}, nil
}

// Start starts the HTTP server.
// Blocks until the server is stopped or an error occurs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting scheduler API")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the task store for testing purposes.
func (s *Server) Store() *store.Store {
	return s.store
}
