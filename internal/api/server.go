// Package api serves the REST and websocket interface.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typrr/internal/auth"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/snippet"
)

// Store is the persistence the server needs.
type Store interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)
	InsertAttempt(ctx context.Context, attempt model.Attempt) (model.Attempt, error)
	ListAttempts(ctx context.Context, userID string, filter model.AttemptFilter) ([]model.Attempt, error)
	AttemptStats(ctx context.Context, userID string) (model.AttemptStats, error)
	Leaderboard(ctx context.Context, filter model.LeaderboardFilter) ([]model.LeaderboardEntry, error)
	Ping(ctx context.Context) error
}

// Server holds handler dependencies.
type Server struct {
	store    Store
	issuer   *auth.Issuer
	catalog  *snippet.Catalog
	schemas  *schemas
	origin   string
	now      func() time.Time
	logf     func(format string, args ...any)
	upgrader websocket.Upgrader
	saveTime time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS headers.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.origin = origin
	}
}

// WithClock replaces the time source used by live sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogf replaces log.Printf.
func WithLogf(fn func(format string, args ...any)) Option {
	return func(s *Server) {
		s.logf = fn
	}
}

// New compiles request schemas and returns a Server.
func New(store Store, issuer *auth.Issuer, catalog *snippet.Catalog, opts ...Option) (*Server, error) {
	compiled, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:    store,
		issuer:   issuer,
		catalog:  catalog,
		schemas:  compiled,
		origin:   "*",
		now:      time.Now,
		logf:     log.Printf,
		saveTime: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/", s.root)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/live", s.live)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.With(s.requireAuth).Get("/profile", s.profile)
		})

		r.Route("/attempts", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.saveAttempt)
			r.Get("/", s.listAttempts)
			r.Get("/stats", s.attemptStats)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", s.leaderboard)
			r.Get("/language/{language}", s.languageLeaderboard)
		})
	})
	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.origin == "*" {
		return true
	}
	return origin == s.origin
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("typrr backend is running\n"))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logf("health check failed: %v", err)
		respondJSON(w, map[string]string{"status": "ERROR", "message": "database unavailable"}, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]string{"status": "OK", "message": "typrr API is running"}, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}

// internalError logs err and replies with a generic 500.
func (s *Server) internalError(w http.ResponseWriter, message string, err error) {
	s.logf("%s: %v", message, err)
	respondError(w, message, http.StatusInternalServerError)
}
