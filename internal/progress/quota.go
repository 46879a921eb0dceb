// Package progress tracks the daily quota, streaks, XP and achievements.
package progress

import (
	"context"
	"time"

	"github.com/verte-zerg/typrr/internal/localstate"
)

// DefaultDailyMax is the number of daily-mode sessions allowed per day.
const DefaultDailyMax = 3

const dayLayout = "2006-01-02"

// Day returns the calendar day key (YYYY-MM-DD, UTC) of t.
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// DailyRecord is the persisted state of one day in daily mode.
type DailyRecord struct {
	Attempts int      `json:"attempts"`
	BestWPM  *float64 `json:"bestWpm,omitempty"`
}

// Quota limits daily-mode sessions per calendar day.
// Each day is stored under its own key, so a new day starts fresh.
type Quota struct {
	backend localstate.Backend
	max     int
	now     func() time.Time
}

// NewQuota returns a quota allowing max sessions per day. Non-positive max uses DefaultDailyMax.
func NewQuota(backend localstate.Backend, max int) *Quota {
	if max <= 0 {
		max = DefaultDailyMax
	}
	return &Quota{backend: backend, max: max, now: time.Now}
}

// SetClock replaces the time source.
func (q *Quota) SetClock(now func() time.Time) {
	q.now = now
}

// Max returns the per-day limit.
func (q *Quota) Max() int {
	return q.max
}

// Today returns the calendar day the quota currently counts.
func (q *Quota) Today() string {
	return Day(q.now())
}

func (q *Quota) store(day string) *localstate.JSON[DailyRecord] {
	return localstate.NewJSON[DailyRecord](q.backend, localstate.DailyKey(day), nil)
}

// Record returns today's record.
func (q *Quota) Record(ctx context.Context) DailyRecord {
	return q.store(q.Today()).Load(ctx)
}

// Remaining returns how many daily sessions are left today.
func (q *Quota) Remaining(ctx context.Context) int {
	left := q.max - q.Record(ctx).Attempts
	if left < 0 {
		return 0
	}
	return left
}

// Exhausted reports whether no daily sessions are left today.
func (q *Quota) Exhausted(ctx context.Context) bool {
	return q.Remaining(ctx) == 0
}

// Lock returns a predicate suitable for engine.WithLock.
func (q *Quota) Lock(ctx context.Context) func() bool {
	return func() bool {
		return q.Exhausted(ctx)
	}
}

// Consume counts one finished daily session and keeps the best WPM of the day.
func (q *Quota) Consume(ctx context.Context, wpm float64) (DailyRecord, error) {
	st := q.store(q.Today())
	rec := st.Load(ctx)
	if rec.Attempts < q.max {
		rec.Attempts++
	}
	if rec.BestWPM == nil || wpm > *rec.BestWPM {
		best := wpm
		rec.BestWPM = &best
	}
	if err := st.Save(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}
