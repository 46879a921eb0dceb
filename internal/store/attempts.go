package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/typrr/internal/model"
)

const (
	// DefaultAttemptLimit caps attempt listings without an explicit limit.
	DefaultAttemptLimit = 10
	// DefaultLeaderboardLimit caps global leaderboards without an explicit limit.
	DefaultLeaderboardLimit = 100
	// DefaultLanguageLeaderboardLimit caps per-language leaderboards.
	DefaultLanguageLeaderboardLimit = 50
)

// InsertAttempt stores a finished attempt for attempt.UserID.
func (s *Store) InsertAttempt(ctx context.Context, attempt model.Attempt) (model.Attempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = s.now()
	}
	createdAt := formatTime(attempt.CreatedAt)
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.Attempt{}, err
	}
	attempt.CreatedAt = parsed
	attempt.Date = parsed.Format("2006-01-02")

	_, err = s.exec(ctx,
		`INSERT INTO attempts (id, user_id, snippet_id, language, difficulty, category, wpm, accuracy, errors, time_ms, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.UserID,
		attempt.SnippetID,
		attempt.Language,
		attempt.Difficulty,
		attempt.Category,
		attempt.WPM,
		attempt.Accuracy,
		attempt.Errors,
		attempt.TimeMs,
		string(attempt.Mode),
		createdAt,
	)
	if err != nil {
		return model.Attempt{}, fmt.Errorf("failed to insert attempt: %w", err)
	}
	return attempt, nil
}

// ListAttempts returns a user's attempts, newest first.
func (s *Store) ListAttempts(ctx context.Context, userID string, filter model.AttemptFilter) ([]model.Attempt, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Language != "" {
		clauses = append(clauses, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.Difficulty != "" {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, filter.Difficulty)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT id, user_id, snippet_id, language, difficulty, category, wpm, accuracy, errors, time_ms, mode, created_at
		FROM attempts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ?`, strings.Join(clauses, " AND "))
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		var mode, createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.SnippetID, &a.Language, &a.Difficulty, &a.Category,
			&a.WPM, &a.Accuracy, &a.Errors, &a.TimeMs, &mode, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		a.Mode = model.Mode(mode)
		a.CreatedAt = parsed
		a.Date = parsed.Format("2006-01-02")
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// AttemptStats aggregates every attempt of a user. A user without attempts gets zeros.
func (s *Store) AttemptStats(ctx context.Context, userID string) (model.AttemptStats, error) {
	var stats model.AttemptStats
	err := s.queryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(wpm), 0), COALESCE(MAX(wpm), 0), COALESCE(AVG(accuracy), 0), COALESCE(SUM(time_ms), 0)
		 FROM attempts WHERE user_id = ?`, userID).
		Scan(&stats.TotalAttempts, &stats.AverageWPM, &stats.BestWPM, &stats.AverageAccuracy, &stats.TotalTimeMs)
	if err != nil {
		return model.AttemptStats{}, fmt.Errorf("failed to aggregate attempts: %w", err)
	}
	return stats, nil
}

// Leaderboard returns the best attempt of each user, fastest first.
// The limit applies to users, not attempts.
func (s *Store) Leaderboard(ctx context.Context, filter model.LeaderboardFilter) ([]model.LeaderboardEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Language != "" {
		clauses = append(clauses, "a.language = ?")
		args = append(args, filter.Language)
	}
	if filter.Difficulty != "" {
		clauses = append(clauses, "a.difficulty = ?")
		args = append(args, filter.Difficulty)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT user_id, username, wpm, accuracy, language, difficulty, created_at FROM (
			SELECT a.user_id, u.username, a.wpm, a.accuracy, a.language, a.difficulty, a.created_at,
				ROW_NUMBER() OVER (PARTITION BY a.user_id ORDER BY a.wpm DESC, a.created_at ASC) AS rn
			FROM attempts a
			JOIN users u ON u.id = a.user_id
			WHERE %s
		) best
		WHERE rn = 1
		ORDER BY wpm DESC, created_at ASC
		LIMIT ?`, strings.Join(clauses, " AND "))
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		var createdAt string
		if err := rows.Scan(&e.UserID, &e.Username, &e.BestWPM, &e.Accuracy, &e.Language, &e.Difficulty, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = parsed
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
