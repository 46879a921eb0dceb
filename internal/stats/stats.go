// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Totals aggregates every attempt in history.
func Totals(history []model.Attempt) model.AttemptStats {
	var out model.AttemptStats
	if len(history) == 0 {
		return out
	}
	var wpmSum, accSum float64
	for _, a := range history {
		wpmSum += a.WPM
		accSum += a.Accuracy
		out.TotalTimeMs += a.TimeMs
		if a.WPM > out.BestWPM {
			out.BestWPM = a.WPM
		}
	}
	out.TotalAttempts = len(history)
	out.AverageWPM = wpmSum / float64(len(history))
	out.AverageAccuracy = accSum / float64(len(history))
	return out
}

// ByLanguage aggregates attempts per language, most practiced first.
func ByLanguage(history []model.Attempt) []model.LanguageStats {
	groups := map[string][]model.Attempt{}
	for _, a := range history {
		groups[a.Language] = append(groups[a.Language], a)
	}
	out := make([]model.LanguageStats, 0, len(groups))
	for lang, attempts := range groups {
		out = append(out, model.LanguageStats{Language: lang, AttemptStats: Totals(attempts)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAttempts == out[j].TotalAttempts {
			return out[i].Language < out[j].Language
		}
		return out[i].TotalAttempts > out[j].TotalAttempts
	})
	return out
}

// Chronological returns a copy of history ordered oldest first.
func Chronological(history []model.Attempt) []model.Attempt {
	out := make([]model.Attempt, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Series extracts WPM and accuracy (percent) in chronological order.
func Series(history []model.Attempt) (wpm, accuracy []float64) {
	ordered := Chronological(history)
	wpm = make([]float64, len(ordered))
	accuracy = make([]float64, len(ordered))
	for i, a := range ordered {
		wpm[i] = a.WPM
		accuracy[i] = a.Accuracy * 100
	}
	return wpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// FormatDuration renders milliseconds as "1h 2m", "3m 4s" or "5s".
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	hours := int(d.Hours())
	minutes := int(d.Minutes())
	seconds := int(d.Seconds())
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// RenderSummary prints overall totals.
func RenderSummary(w io.Writer, totals model.AttemptStats) error {
	if totals.TotalAttempts == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", totals.TotalAttempts),
		fmt.Sprintf("Avg WPM: %.2f", totals.AverageWPM),
		fmt.Sprintf("Best WPM: %.2f", totals.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totals.AverageAccuracy*100),
		fmt.Sprintf("Time Typing: %s", FormatDuration(totals.TotalTimeMs)),
		"",
	}
	return writeLines(w, lines)
}

// RenderLanguageTable prints per-language aggregates.
func RenderLanguageTable(w io.Writer, langs []model.LanguageStats) error {
	if len(langs) == 0 {
		return nil
	}
	headers := []string{"Language", "Attempts", "Avg WPM", "Best WPM", "Accuracy", "Time"}
	rows := make([][]string, 0, len(langs))
	for _, l := range langs {
		rows = append(rows, []string{
			l.Language,
			fmt.Sprintf("%d", l.TotalAttempts),
			fmt.Sprintf("%.1f", l.AverageWPM),
			fmt.Sprintf("%.1f", l.BestWPM),
			fmt.Sprintf("%.1f%%", l.AverageAccuracy*100),
			FormatDuration(l.TotalTimeMs),
		})
	}
	lines := append([]string{"By Language"}, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderRecent prints the given attempts, one per row.
func RenderRecent(w io.Writer, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	headers := []string{"Date", "Snippet", "Mode", "WPM", "Accuracy", "Errors", "Time"}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, []string{
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			a.SnippetID,
			string(a.Mode),
			fmt.Sprintf("%.1f", a.WPM),
			fmt.Sprintf("%.1f%%", a.Accuracy*100),
			fmt.Sprintf("%d", a.Errors),
			fmt.Sprintf("%.2fs", float64(a.TimeMs)/1000),
		})
	}
	lines := append([]string{"Recent"}, formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderLeaderboard prints leaderboard entries.
func RenderLeaderboard(w io.Writer, title string, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No leaderboard entries yet.")
		return err
	}
	headers := []string{"#", "User", "Best WPM", "Accuracy", "Language", "Date"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.Username,
			fmt.Sprintf("%.1f", e.BestWPM),
			fmt.Sprintf("%.1f%%", e.Accuracy*100),
			e.Language,
			e.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	lines := append([]string{title}, formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true})...)
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
