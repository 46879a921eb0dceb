package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/typrr/internal/auth"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/store"
)

type contextKey string

const claimsKey contextKey = "claims"

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userView `json:"user"`
}

func viewOf(u model.User) userView {
	return userView{ID: u.ID, Email: u.Email, Username: u.Username}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, "Access token required", http.StatusUnauthorized)
			return
		}
		claims, err := s.issuer.Parse(token)
		if err != nil {
			respondError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.schemas.decode(r, schemaRegister, &req); err != nil {
		respondValidation(w, err)
		return
	}
	// maxLength in the schema counts characters; bcrypt counts bytes.
	if len(req.Password) > auth.MaxPasswordBytes {
		respondValidation(w, &ValidationError{
			Message: "Validation failed",
			Details: []string{fmt.Sprintf("/password: must be at most %d bytes", auth.MaxPasswordBytes)},
		})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, "Failed to register user", err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), strings.TrimSpace(req.Email), req.Username, hash)
	if errors.Is(err, store.ErrDuplicate) {
		respondError(w, "Email or username already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.internalError(w, "Failed to register user", err)
		return
	}
	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		s.internalError(w, "Failed to register user", err)
		return
	}
	respondJSON(w, authResponse{Message: "User created successfully", Token: token, User: viewOf(user)}, http.StatusCreated)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.schemas.decode(r, schemaLogin, &req); err != nil {
		respondValidation(w, err)
		return
	}
	user, err := s.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.internalError(w, "Failed to login", err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		s.internalError(w, "Failed to login", err)
		return
	}
	respondJSON(w, authResponse{Message: "Login successful", Token: token, User: viewOf(user)}, http.StatusOK)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), claimsFrom(r).UserID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "Failed to get profile", err)
		return
	}
	respondJSON(w, map[string]model.User{"user": user}, http.StatusOK)
}

func (s *Server) saveAttempt(w http.ResponseWriter, r *http.Request) {
	var attempt model.Attempt
	if err := s.schemas.decode(r, schemaAttempt, &attempt); err != nil {
		respondValidation(w, err)
		return
	}
	attempt.ID = ""
	attempt.UserID = claimsFrom(r).UserID
	attempt.CreatedAt = s.now()
	saved, err := s.store.InsertAttempt(r.Context(), attempt)
	if err != nil {
		s.internalError(w, "Failed to save attempt", err)
		return
	}
	respondJSON(w, map[string]any{"message": "Attempt saved successfully", "attempt": saved}, http.StatusCreated)
}

func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}
	attempts, err := s.store.ListAttempts(r.Context(), claimsFrom(r).UserID, model.AttemptFilter{
		Language:   q.Get("language"),
		Difficulty: q.Get("difficulty"),
		Limit:      limit,
	})
	if err != nil {
		s.internalError(w, "Failed to get attempts", err)
		return
	}
	respondJSON(w, map[string][]model.Attempt{"attempts": attempts}, http.StatusOK)
}

func (s *Server) attemptStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.AttemptStats(r.Context(), claimsFrom(r).UserID)
	if err != nil {
		s.internalError(w, "Failed to get stats", err)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}
	if limit == 0 {
		limit = store.DefaultLeaderboardLimit
	}
	entries, err := s.store.Leaderboard(r.Context(), model.LeaderboardFilter{
		Language:   q.Get("language"),
		Difficulty: q.Get("difficulty"),
		Limit:      limit,
	})
	if err != nil {
		s.internalError(w, "Failed to get leaderboard", err)
		return
	}
	respondJSON(w, map[string][]model.LeaderboardEntry{"leaderboard": entries}, http.StatusOK)
}

func (s *Server) languageLeaderboard(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "language")
	limit, ok := parseLimit(w, r.URL.Query().Get("limit"))
	if !ok {
		return
	}
	if limit == 0 {
		limit = store.DefaultLanguageLeaderboardLimit
	}
	entries, err := s.store.Leaderboard(r.Context(), model.LeaderboardFilter{Language: lang, Limit: limit})
	if err != nil {
		s.internalError(w, "Failed to get language leaderboard", err)
		return
	}
	respondJSON(w, map[string]any{"language": lang, "leaderboard": entries}, http.StatusOK)
}

// parseLimit reads an optional positive limit. Zero means unset.
func parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		respondJSON(w, &ValidationError{Message: "Validation failed", Details: []string{"limit must be a positive integer"}}, http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}
