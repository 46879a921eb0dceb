package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/snippet"
)

const testCatalog = `
[[snippet]]
id = "tiny"
lang = "go"
difficulty = "easy"
category = "basics"
text = "ab"

[[snippet]]
id = "tiny_two"
lang = "go"
difficulty = "easy"
category = "basics"
text = "cd"
`

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(500 * time.Millisecond)
	return c.t
}

func newTestModel(t *testing.T, mode model.Mode, dailyMax int) (*Model, *localstate.Memory) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snippets.toml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := snippet.LoadFile(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	picker, err := snippet.NewPicker(catalog, "", "", false, 0)
	if err != nil {
		t.Fatalf("new picker: %v", err)
	}
	backend := localstate.NewMemory()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)}
	m, err := NewModel(model.Config{Mode: mode, DailyMax: dailyMax}, Deps{
		Backend: backend,
		Catalog: catalog,
		Picker:  picker,
		Now:     clock.now,
		Logf:    func(string, ...any) {},
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, backend
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestModelFinishRecordsAttempt(t *testing.T) {
	m, backend := newTestModel(t, model.ModePractice, 5)
	typeText(m, m.snippet.Text)

	if m.screen != screenResults {
		t.Fatalf("expected results screen after finishing")
	}
	history := localstate.NewHistory(backend).All(context.Background())
	if len(history) != 1 {
		t.Fatalf("expected 1 stored attempt, got %d", len(history))
	}
	if history[0].SnippetID != "tiny" || history[0].Errors != 0 {
		t.Fatalf("unexpected attempt: %+v", history[0])
	}
	if m.report == nil || m.report.XPGained <= 0 {
		t.Fatalf("expected progress report with XP")
	}
	view := m.View()
	if !strings.Contains(view, "Finished tiny") || !strings.Contains(view, "XP") {
		t.Fatalf("results view missing details: %s", view)
	}
}

func TestModelIgnoresInputAfterFinish(t *testing.T) {
	m, backend := newTestModel(t, model.ModePractice, 5)
	typeText(m, "ab")
	typeText(m, "zz")

	if got := len(localstate.NewHistory(backend).All(context.Background())); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestModelBackspaceAndErrors(t *testing.T) {
	m, _ := newTestModel(t, model.ModePractice, 5)
	typeText(m, "x")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeText(m, "ab")

	if m.result.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", m.result.Errors)
	}
	if m.result.Typed != 2 {
		t.Fatalf("expected backspace to undo the typed count, got %d", m.result.Typed)
	}
}

func TestModelNextSnippet(t *testing.T) {
	m, _ := newTestModel(t, model.ModePractice, 5)
	typeText(m, "ab")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.screen != screenTyping {
		t.Fatalf("expected typing screen after continue")
	}
	if m.snippet.ID != "tiny_two" {
		t.Fatalf("expected next snippet, got %s", m.snippet.ID)
	}
}

func TestModelDailyLimit(t *testing.T) {
	m, _ := newTestModel(t, model.ModeDaily, 1)
	daily := m.snippet.Text
	typeText(m, daily)
	if m.receipt.Daily == nil || m.receipt.Daily.Attempts != 1 {
		t.Fatalf("expected daily record after attempt")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, daily)
	if m.screen != screenTyping {
		t.Fatalf("expected keystrokes to be rejected once the quota is used")
	}
	if !strings.Contains(m.View(), "Daily limit reached") {
		t.Fatalf("expected daily limit view")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _ := newTestModel(t, model.ModePractice, 5)
	typeText(m, "a")
	m.hasLast = true
	m.lastWPM = 72.4
	m.lastAcc = 0.978
	m.allWPM = 68.1
	m.allAcc = 0.969
	m.allCount = 3

	out := m.renderFooter()
	for _, want := range []string{"Progress 50%", "Last 72.4 WPM", "97.8%", "All-time 68.1 WPM", "96.9%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestKeysFor(t *testing.T) {
	if got := keysFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("xy")}); len(got) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(got))
	}
	if got := keysFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}); got != nil {
		t.Fatalf("expected alt keys to be ignored")
	}
	if got := keysFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("paste"), Paste: true}); got != nil {
		t.Fatalf("expected pasted text to be ignored")
	}
}

func TestModelRandomSnippet(t *testing.T) {
	m, _ := newTestModel(t, model.ModePractice, 5)
	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	if m.snippet.ID != "tiny_two" {
		t.Fatalf("expected a different snippet, got %s", m.snippet.ID)
	}
	if len(m.session.Input()) != 0 {
		t.Fatalf("expected a fresh session")
	}
}

func TestModelRandomDisabledInDaily(t *testing.T) {
	m, _ := newTestModel(t, model.ModeDaily, 3)
	before := m.snippet.ID
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.snippet.ID != before {
		t.Fatalf("expected daily snippet to stay fixed")
	}
}
