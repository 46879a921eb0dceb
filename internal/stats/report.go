package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
)

// ReportConfig selects what a report covers.
type ReportConfig struct {
	Lang        string
	Last        int
	Recent      int
	CurveWindow int
	Calendar    int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts     []model.Attempt
	Totals       model.AttemptStats
	Languages    []model.LanguageStats
	Recent       []model.Attempt
	Weakest      []SnippetStats
	Favorites    []SnippetStats
	Streak       progress.Streak
	Calendar     []progress.CalendarDay
	XP           progress.XPState
	Achievements []progress.Achievement
}

// BuildReport loads local history and progress and prepares them for rendering.
func BuildReport(ctx context.Context, history *localstate.History, tracker *progress.Tracker, cfg ReportConfig, now time.Time) Report {
	attempts := Chronological(history.All(ctx))
	if cfg.Lang != "" {
		filtered := attempts[:0:0]
		for _, a := range attempts {
			if a.Language == cfg.Lang {
				filtered = append(filtered, a)
			}
		}
		attempts = filtered
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	recent := cfg.Recent
	if recent <= 0 {
		recent = 10
	}
	latest := make([]model.Attempt, 0, recent)
	for i := len(attempts) - 1; i >= 0 && len(latest) < recent; i-- {
		latest = append(latest, attempts[i])
	}
	days := cfg.Calendar
	if days <= 0 {
		days = 28
	}

	streak := tracker.Streak(ctx)
	return Report{
		Attempts:     attempts,
		Totals:       Totals(attempts),
		Languages:    ByLanguage(attempts),
		Recent:       latest,
		Weakest:      WeakestSnippets(attempts, 3),
		Favorites:    TopSnippets(attempts, 3),
		Streak:       streak,
		Calendar:     progress.Calendar(streak, now, days),
		XP:           tracker.XP(ctx),
		Achievements: tracker.Achievements(ctx),
	}
}

// RenderReport prints every section of r.
func RenderReport(w io.Writer, r Report, cfg ReportConfig, width int, color bool) error {
	if err := RenderSummary(w, r.Totals); err != nil {
		return err
	}
	if r.Totals.TotalAttempts == 0 {
		return nil
	}
	if err := RenderProgress(w, r); err != nil {
		return err
	}
	if err := RenderLanguageTable(w, r.Languages); err != nil {
		return err
	}
	if err := RenderSnippetTable(w, "Most Practiced", r.Favorites); err != nil {
		return err
	}
	if err := RenderSnippetTable(w, "Needs Work", r.Weakest); err != nil {
		return err
	}
	if err := RenderRecent(w, r.Recent); err != nil {
		return err
	}
	wpm, acc := Series(r.Attempts)
	if len(wpm) < 2 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "WPM trend: %s\n\n", Sparkline(MovingAverage(wpm, cfg.CurveWindow))); err != nil {
		return err
	}
	chart := Chart{Title: "Progress", Width: ChartWidthFor(width), Color: color}
	return chart.Render(w,
		Curve{Name: "WPM", Values: MovingAverage(wpm, cfg.CurveWindow)},
		Curve{Name: "Accuracy", Values: MovingAverage(acc, cfg.CurveWindow)},
	)
}

// RenderProgress prints level, streak, calendar and achievement counts.
func RenderProgress(w io.Writer, r Report) error {
	var cal strings.Builder
	for _, d := range r.Calendar {
		if d.Practiced {
			cal.WriteRune('■')
		} else {
			cal.WriteRune('·')
		}
	}
	unlocked := 0
	for _, a := range r.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	lines := []string{
		"Progress",
		fmt.Sprintf("Level %d %s: %d XP (%.0f%% to next)", r.XP.Level.Level, r.XP.Level.Name, r.XP.Total, r.XP.Progress),
		fmt.Sprintf("Streak: %d days (longest %d, %d days total)", r.Streak.CurrentStreak, r.Streak.LongestStreak, r.Streak.TotalDays),
		fmt.Sprintf("Last %d days: %s", len(r.Calendar), cal.String()),
		fmt.Sprintf("Achievements: %d/%d", unlocked, len(r.Achievements)),
		"",
	}
	return writeLines(w, lines)
}
