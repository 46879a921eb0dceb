package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleHistory() []model.Attempt {
	return []model.Attempt{
		{SnippetID: "go_prime", Language: "go", WPM: 60, Accuracy: 1, TimeMs: 30000, CreatedAt: base.Add(2 * time.Minute)},
		{SnippetID: "py_factorial", Language: "python", WPM: 40, Accuracy: 0.9, TimeMs: 20000, CreatedAt: base},
		{SnippetID: "go_struct", Language: "go", WPM: 50, Accuracy: 0.8, TimeMs: 10000, CreatedAt: base.Add(time.Minute)},
	}
}

func TestTotals(t *testing.T) {
	got := Totals(sampleHistory())
	if got.TotalAttempts != 3 || got.AverageWPM != 50 || got.BestWPM != 60 || got.TotalTimeMs != 60000 {
		t.Fatalf("unexpected totals %+v", got)
	}
	if got.AverageAccuracy < 0.8999 || got.AverageAccuracy > 0.9001 {
		t.Fatalf("unexpected accuracy %v", got.AverageAccuracy)
	}
	if Totals(nil) != (model.AttemptStats{}) {
		t.Fatalf("expected zero totals for empty history")
	}
}

func TestByLanguage(t *testing.T) {
	langs := ByLanguage(sampleHistory())
	if len(langs) != 2 || langs[0].Language != "go" || langs[0].TotalAttempts != 2 || langs[0].BestWPM != 60 {
		t.Fatalf("unexpected language stats %+v", langs)
	}
}

func TestSeriesIsChronological(t *testing.T) {
	wpm, acc := Series(sampleHistory())
	if wpm[0] != 40 || wpm[1] != 50 || wpm[2] != 60 {
		t.Fatalf("unexpected order %v", wpm)
	}
	if acc[2] != 100 {
		t.Fatalf("expected accuracy in percent, got %v", acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{59999, "59s"},
		{61000, "1m 1s"},
		{3723000, "1h 2m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Fatalf("FormatDuration(%d) = %q want %q", tt.ms, got, tt.want)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Totals(sampleHistory())); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 3", "Best WPM: 60.00", "Avg Accuracy: 90.00%", "Time Typing: 1m 0s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	buf.Reset()
	if err := RenderSummary(&buf, model.AttemptStats{}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No attempts found." {
		t.Fatalf("unexpected empty summary %q", buf.String())
	}
}

func TestRenderLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	entries := []model.LeaderboardEntry{
		{Rank: 1, Username: "ada", BestWPM: 120, Accuracy: 0.99, Language: "go", CreatedAt: base},
		{Rank: 2, Username: "bob", BestWPM: 95.5, Accuracy: 0.9, Language: "python", CreatedAt: base},
	}
	if err := RenderLeaderboard(&buf, "Global", entries); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "Global" {
		t.Fatalf("unexpected leaderboard output:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "ada") || !strings.Contains(lines[2], "120.0") {
		t.Fatalf("unexpected first row %q", lines[2])
	}
}
