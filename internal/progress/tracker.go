package progress

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
)

// Report is what a finished attempt changed.
type Report struct {
	Attempt  model.Attempt
	XPGained int
	XP       XPState
	LevelUp  bool
	Streak   StreakUpdate
	Unlocked []Achievement
}

// Tracker updates streak, XP and achievements after each finished attempt.
type Tracker struct {
	history      *localstate.History
	streak       *localstate.JSON[Streak]
	xp           *localstate.JSON[int]
	achievements *localstate.JSON[[]Unlocked]
	now          func() time.Time
	notify       func(Report)
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithNotify registers fn to receive every report.
func WithNotify(fn func(Report)) TrackerOption {
	return func(t *Tracker) {
		t.notify = fn
	}
}

// WithClock replaces the time source used for unlock timestamps.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker returns a Tracker persisting to backend.
func NewTracker(backend localstate.Backend, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		history:      localstate.NewHistory(backend),
		streak:       localstate.NewJSON[Streak](backend, localstate.KeyStreak, nil),
		xp:           localstate.NewJSON[int](backend, localstate.KeyXP, nil),
		achievements: localstate.NewJSON[[]Unlocked](backend, localstate.KeyAchievements, nil),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe applies attempt. The attempt is expected to be in history already.
func (t *Tracker) Observe(ctx context.Context, attempt model.Attempt) error {
	var errs []error
	report := Report{Attempt: attempt}

	day := attempt.Date
	if day == "" {
		day = Day(attempt.CreatedAt)
	}
	report.Streak = UpdateStreak(t.streak.Load(ctx), day)
	if report.Streak.NewDay {
		if err := t.streak.Save(ctx, report.Streak.Streak); err != nil {
			errs = append(errs, err)
		}
	}

	total := t.xp.Load(ctx)
	before := LevelFor(total)
	report.XPGained = CalculateXP(attempt.WPM, attempt.Accuracy, attempt.Errors, attempt.Difficulty)
	if report.Streak.Reward != nil {
		report.XPGained += report.Streak.Reward.XPBonus
	}
	total += report.XPGained
	if err := t.xp.Save(ctx, total); err != nil {
		errs = append(errs, err)
	}
	report.XP = StateFor(total)
	report.LevelUp = report.XP.Level.Level > before.Level

	_, unlocked, fresh := Evaluate(t.history.All(ctx), report.Streak.Streak, t.achievements.Load(ctx), t.now())
	if len(fresh) > 0 {
		if err := t.achievements.Save(ctx, unlocked); err != nil {
			errs = append(errs, err)
		}
	}
	report.Unlocked = fresh

	if t.notify != nil {
		t.notify(report)
	}
	return errors.Join(errs...)
}

// Streak returns the stored streak.
func (t *Tracker) Streak(ctx context.Context) Streak {
	return t.streak.Load(ctx)
}

// XP returns the stored XP state.
func (t *Tracker) XP(ctx context.Context) XPState {
	return StateFor(t.xp.Load(ctx))
}

// Achievements evaluates every achievement without persisting new unlocks.
func (t *Tracker) Achievements(ctx context.Context) []Achievement {
	all, _, _ := Evaluate(t.history.All(ctx), t.streak.Load(ctx), t.achievements.Load(ctx), t.now())
	return all
}
