// Package client talks to the typrr REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

// DefaultTimeout bounds each request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client is a typrr API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:3001".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates an account and returns its credential.
func (c *Client) Register(ctx context.Context, email, username, password string) (model.Credential, error) {
	var out authResponse
	body := map[string]string{"email": email, "username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return model.Credential{}, err
	}
	return credential(out), nil
}

// Login exchanges email and password for a credential.
func (c *Client) Login(ctx context.Context, email, password string) (model.Credential, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return model.Credential{}, err
	}
	return credential(out), nil
}

func credential(r authResponse) model.Credential {
	return model.Credential{Token: r.Token, UserID: r.User.ID, Email: r.User.Email, Username: r.User.Username}
}

// Profile returns the account behind token.
func (c *Client) Profile(ctx context.Context, token string) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", token, nil, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

type attemptRequest struct {
	SnippetID  string     `json:"snippetId"`
	Language   string     `json:"language"`
	Difficulty string     `json:"difficulty"`
	Category   string     `json:"category"`
	WPM        float64    `json:"wpm"`
	Accuracy   float64    `json:"accuracy"`
	Errors     int        `json:"errors"`
	TimeMs     int64      `json:"timeMs"`
	Mode       model.Mode `json:"mode"`
}

// SubmitAttempt stores a finished attempt for the account behind token.
func (c *Client) SubmitAttempt(ctx context.Context, token string, attempt model.Attempt) (model.Attempt, error) {
	req := attemptRequest{
		SnippetID:  attempt.SnippetID,
		Language:   attempt.Language,
		Difficulty: attempt.Difficulty,
		Category:   attempt.Category,
		WPM:        attempt.WPM,
		Accuracy:   attempt.Accuracy,
		Errors:     attempt.Errors,
		TimeMs:     attempt.TimeMs,
		Mode:       attempt.Mode,
	}
	var out struct {
		Attempt model.Attempt `json:"attempt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/attempts", token, req, &out); err != nil {
		return model.Attempt{}, err
	}
	return out.Attempt, nil
}

// Attempts lists the caller's attempts, newest first.
func (c *Client) Attempts(ctx context.Context, token string, filter model.AttemptFilter) ([]model.Attempt, error) {
	q := url.Values{}
	setQuery(q, "language", filter.Language)
	setQuery(q, "difficulty", filter.Difficulty)
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var out struct {
		Attempts []model.Attempt `json:"attempts"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/attempts", q), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

// Stats returns the caller's aggregate statistics.
func (c *Client) Stats(ctx context.Context, token string) (model.AttemptStats, error) {
	var out model.AttemptStats
	if err := c.do(ctx, http.MethodGet, "/api/attempts/stats", token, nil, &out); err != nil {
		return model.AttemptStats{}, err
	}
	return out, nil
}

// Leaderboard returns the global leaderboard.
func (c *Client) Leaderboard(ctx context.Context, filter model.LeaderboardFilter) ([]model.LeaderboardEntry, error) {
	q := url.Values{}
	setQuery(q, "language", filter.Language)
	setQuery(q, "difficulty", filter.Difficulty)
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var out struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/leaderboard", q), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

// LanguageLeaderboard returns the leaderboard for one language.
func (c *Client) LanguageLeaderboard(ctx context.Context, lang string, limit int) ([]model.LeaderboardEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	path := withQuery("/api/leaderboard/language/"+url.PathEscape(lang), q)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

// Health checks that the API and its database respond.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, &out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer func() {
		// Best-effort close.
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
