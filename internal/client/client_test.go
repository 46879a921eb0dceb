package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typrr/internal/api"
	"github.com/verte-zerg/typrr/internal/auth"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/persist"
	"github.com/verte-zerg/typrr/internal/progress"
	"github.com/verte-zerg/typrr/internal/snippet"
	"github.com/verte-zerg/typrr/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	issuer, err := auth.NewIssuer("client-test-secret", time.Hour)
	require.NoError(t, err)
	catalog, err := snippet.Builtin()
	require.NoError(t, err)
	srv, err := api.New(st, issuer, catalog, api.WithLogf(func(string, ...any) {}))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL + "/")
}

func sampleAttempt(wpm float64, lang string) model.Attempt {
	return model.Attempt{
		SnippetID:  "py_factorial",
		Language:   lang,
		Difficulty: "easy",
		Category:   "algorithms",
		WPM:        wpm,
		Accuracy:   0.9,
		Errors:     2,
		TimeMs:     15000,
		Mode:       model.ModePractice,
	}
}

func TestAccountFlow(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	cred, err := c.Register(ctx, "ada@example.com", "ada", "secret123")
	require.NoError(t, err)
	assert.True(t, cred.Authenticated())
	assert.Equal(t, "ada", cred.Username)

	_, err = c.Register(ctx, "ada@example.com", "ada2", "secret123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Email or username already exists", apiErr.Message)

	login, err := c.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, cred.UserID, login.UserID)

	_, err = c.Login(ctx, "ada@example.com", "nope-nope")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	user, err := c.Profile(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	require.NoError(t, c.Health(ctx))
}

func TestAttemptsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	ada, err := c.Register(ctx, "ada@example.com", "ada", "secret123")
	require.NoError(t, err)
	bob, err := c.Register(ctx, "bob@example.com", "bob", "secret123")
	require.NoError(t, err)

	saved, err := c.SubmitAttempt(ctx, ada.Token, sampleAttempt(80, "go"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, ada.UserID, saved.UserID)
	_, err = c.SubmitAttempt(ctx, ada.Token, sampleAttempt(60, "python"))
	require.NoError(t, err)
	_, err = c.SubmitAttempt(ctx, bob.Token, sampleAttempt(70, "python"))
	require.NoError(t, err)

	attempts, err := c.Attempts(ctx, ada.Token, model.AttemptFilter{Language: "go"})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 80.0, attempts[0].WPM)

	stats, err := c.Stats(ctx, ada.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAttempts)
	assert.Equal(t, 80.0, stats.BestWPM)
	assert.Equal(t, int64(30000), stats.TotalTimeMs)

	board, err := c.Leaderboard(ctx, model.LeaderboardFilter{})
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "ada", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)

	python, err := c.LanguageLeaderboard(ctx, "python", 10)
	require.NoError(t, err)
	require.Len(t, python, 2)
	assert.Equal(t, "bob", python[0].Username)

	_, err = c.Stats(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRecorderSubmitsThroughClient(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	cred, err := c.Register(ctx, "ada@example.com", "ada", "secret123")
	require.NoError(t, err)

	mem := localstate.NewMemory()
	require.NoError(t, localstate.NewJSON[model.Credential](mem, localstate.KeyCredential, nil).Save(ctx, cred))
	quota := progress.NewQuota(mem, progress.DefaultDailyMax)
	rec := persist.NewRecorder(mem, quota, persist.WithSubmitter(c), persist.WithLogf(func(string, ...any) {}))

	receipt := rec.Record(ctx, sampleAttempt(42, "go"))
	require.NotNil(t, receipt.Submission)
	require.NoError(t, receipt.Submission.Wait())

	remote, err := c.Attempts(ctx, cred.Token, model.AttemptFilter{})
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, 42.0, remote[0].WPM)
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	err := c.Health(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
