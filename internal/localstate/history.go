package localstate

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/verte-zerg/typrr/internal/model"
)

// History is the append-only list of finished attempts kept on this machine.
type History struct {
	store *JSON[[]model.Attempt]
}

// NewHistory returns the history stored in backend.
func NewHistory(backend Backend) *History {
	return &History{store: NewJSON(backend, KeyHistory, func() []model.Attempt { return nil })}
}

// All returns every recorded attempt in insertion order.
func (h *History) All(ctx context.Context) []model.Attempt {
	return h.store.Load(ctx)
}

// Append records attempt and returns the stored copy with its id set.
func (h *History) Append(ctx context.Context, attempt model.Attempt) (model.Attempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	entries := h.store.Load(ctx)
	entries = append(entries, attempt)
	if err := h.store.Save(ctx, entries); err != nil {
		return model.Attempt{}, err
	}
	return attempt, nil
}

// Recent returns up to limit attempts, newest first.
func (h *History) Recent(ctx context.Context, limit int) []model.Attempt {
	entries := h.store.Load(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Clear removes all history.
func (h *History) Clear(ctx context.Context) error {
	return h.store.Clear(ctx)
}
