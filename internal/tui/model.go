// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typrr/internal/engine"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/persist"
	"github.com/verte-zerg/typrr/internal/progress"
	"github.com/verte-zerg/typrr/internal/snippet"
	"github.com/verte-zerg/typrr/internal/stats"
)

const (
	tickInterval      = 200 * time.Millisecond
	milestoneShownFor = 3 * time.Second
	// milestoneWarmup keeps the first keystrokes, whose WPM is meaningless, from firing milestones.
	milestoneWarmup = time.Second
)

// Deps are the collaborators of a typing session.
type Deps struct {
	Backend localstate.Backend
	Catalog *snippet.Catalog
	// Picker is required in practice mode.
	Picker *snippet.Picker
	// Submitter is nil when attempts stay local.
	Submitter persist.Submitter
	Now       func() time.Time
	Logf      func(format string, args ...any)
}

type screen int

const (
	screenTyping screen = iota
	screenResults
)

type tickMsg time.Time

type submittedMsg struct {
	err error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	now    func() time.Time
	keys   keyMap
	help   help.Model

	catalog  *snippet.Catalog
	picker   *snippet.Picker
	quota    *progress.Quota
	tracker  *progress.Tracker
	history  *localstate.History
	recorder *persist.Recorder

	width  int
	height int

	snippet     model.Snippet
	session     *engine.Session
	milestones  progress.Milestones
	milestone   int
	milestoneAt time.Time
	ticking     bool

	screen      screen
	result      engine.Result
	receipt     persist.Receipt
	report      *progress.Report
	submitState string

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPM   float64
	allAcc   float64
	allCount int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	whitespaceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	milestoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	goodStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, deps Deps) (*Model, error) {
	if deps.Backend == nil || deps.Catalog == nil {
		return nil, errors.New("tui: backend and catalog are required")
	}
	if cfg.Mode == model.ModePractice && deps.Picker == nil {
		return nil, errors.New("tui: practice mode needs a snippet picker")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logf := deps.Logf
	if logf == nil {
		logf = logErrf
	}
	m := &Model{
		config:  cfg,
		now:     now,
		keys:    newKeyMap(cfg.Mode == model.ModePractice),
		help:    help.New(),
		catalog: deps.Catalog,
		picker:  deps.Picker,
		history: localstate.NewHistory(deps.Backend),
	}
	m.quota = progress.NewQuota(deps.Backend, cfg.DailyMax)
	m.quota.SetClock(now)
	m.tracker = progress.NewTracker(deps.Backend, progress.WithNotify(m.onProgress), progress.WithClock(now))
	opts := []persist.Option{persist.WithObserver(m.tracker), persist.WithLogf(logf)}
	if deps.Submitter != nil {
		opts = append(opts, persist.WithSubmitter(deps.Submitter))
	}
	m.recorder = persist.NewRecorder(deps.Backend, m.quota, opts...)

	if cfg.Mode == model.ModeDaily {
		m.snippet = m.catalog.Daily(m.quota.Today())
	} else {
		m.snippet = m.picker.Current()
	}
	m.newSession()
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if m.screen != screenTyping || m.session.State() != engine.StateRunning {
			m.ticking = false
			return m, nil
		}
		m.checkMilestone(time.Time(msg))
		return m, tick()
	case submittedMsg:
		if msg.err != nil {
			m.submitState = "Not saved online (kept locally)"
		} else {
			m.submitState = "Saved online"
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.restart()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.nextSnippet()
		return m, nil
	case key.Matches(msg, m.keys.Random):
		m.randomSnippet()
		return m, nil
	}
	if m.screen == screenResults {
		switch {
		case key.Matches(msg, m.keys.Again):
			if m.config.Mode == model.ModePractice {
				m.nextSnippet()
			} else {
				m.restart()
			}
		case msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	for _, k := range keysFor(msg) {
		at := m.now()
		outcome := m.session.Apply(k, at)
		if outcome.Finished {
			m.screen = screenResults
			m.ticking = false
			return m, m.awaitSubmission()
		}
		if outcome.Accepted {
			m.checkMilestone(at)
		}
	}
	if m.session.State() == engine.StateRunning && !m.ticking {
		m.ticking = true
		return m, tick()
	}
	return m, nil
}

// keysFor maps a terminal key event to engine keystrokes.
func keysFor(msg tea.KeyMsg) []engine.Key {
	if msg.Paste || msg.Alt {
		return nil
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyCtrlH:
		return []engine.Key{engine.Backspace}
	case tea.KeyEnter:
		return []engine.Key{engine.Enter}
	case tea.KeyTab:
		return []engine.Key{engine.Tab}
	case tea.KeySpace:
		return []engine.Key{engine.Rune(' ')}
	case tea.KeyRunes:
		out := make([]engine.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, engine.Rune(r))
		}
		return out
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) newSession() {
	opts := []engine.Option{engine.WithOnFinish(m.onFinish)}
	if m.config.Mode == model.ModeDaily {
		opts = append(opts, engine.WithLock(m.quota.Lock(context.Background())))
	}
	m.session = engine.NewSession(m.snippet.Text, opts...)
	m.milestones.Reset()
	m.milestone = 0
	m.milestoneAt = time.Time{}
	m.ticking = false
	m.screen = screenTyping
}

func (m *Model) restart() {
	m.newSession()
}

func (m *Model) nextSnippet() {
	if m.picker == nil || m.config.Mode != model.ModePractice {
		return
	}
	m.snippet = m.picker.Next()
	m.newSession()
}

func (m *Model) randomSnippet() {
	if m.picker == nil || m.config.Mode != model.ModePractice {
		return
	}
	m.snippet = m.picker.Random()
	m.newSession()
}

func (m *Model) checkMilestone(at time.Time) {
	metrics := m.session.Metrics(at)
	if metrics.Elapsed < milestoneWarmup {
		return
	}
	if ms, ok := m.milestones.Check(metrics.WPM); ok {
		m.milestone = ms
		m.milestoneAt = at
	}
}

// onFinish is the completion side effect of a session; the engine runs it once.
func (m *Model) onFinish(res engine.Result) {
	attempt := model.Attempt{
		SnippetID:  m.snippet.ID,
		Language:   m.snippet.Lang,
		Difficulty: m.snippet.Difficulty,
		Category:   m.snippet.Category,
		WPM:        res.WPM,
		Accuracy:   res.Accuracy,
		Errors:     res.Errors,
		TimeMs:     res.Elapsed.Milliseconds(),
		Mode:       m.config.Mode,
		CreatedAt:  res.FinishedAt,
	}
	m.result = res
	m.report = nil
	m.submitState = ""
	m.receipt = m.recorder.Record(context.Background(), attempt)
	m.addFooterAttempt(attempt)
}

func (m *Model) onProgress(r progress.Report) {
	m.report = &r
}

func (m *Model) awaitSubmission() tea.Cmd {
	sub := m.receipt.Submission
	if sub == nil {
		return nil
	}
	m.submitState = "Saving online..."
	return func() tea.Msg {
		return submittedMsg{err: sub.Wait()}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.screen == screenResults {
		content = m.renderResults()
	} else {
		content = m.renderTyping()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	parts := []string{m.snippet.ID, m.snippet.Lang, m.snippet.Difficulty, string(m.config.Mode)}
	if m.config.Mode == model.ModeDaily {
		parts = append(parts, fmt.Sprintf("%d/%d left today", m.quota.Remaining(context.Background()), m.quota.Max()))
	}
	return headerStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) renderTyping() string {
	if m.session.Locked() && m.session.State() == engine.StateIdle {
		rec := m.quota.Record(context.Background())
		lines := []string{
			titleStyle.Render("Daily limit reached"),
			fmt.Sprintf("You have used all %d attempts for %s.", m.quota.Max(), m.quota.Today()),
		}
		if rec.BestWPM != nil {
			lines = append(lines, fmt.Sprintf("Best today: %.1f WPM", *rec.BestWPM))
		}
		lines = append(lines, "Come back tomorrow for a new snippet.", "", m.help.ShortHelpView([]key.Binding{m.keys.Quit}))
		return strings.Join(lines, "\n")
	}

	target := m.session.Target()
	input := m.session.Input()
	cursorIndex := -1
	if len(input) < len(target) {
		cursorIndex = len(input)
	}
	styledRunes := buildStyledRunes(target, input, cursorIndex)
	text := renderStyledRunes(styledRunes)
	if m.width > 0 {
		contentWidth := max(1, int(float64(m.width)*0.70))
		text = lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styledRunes, contentWidth))
	}
	lines := []string{m.renderHeader(), "", text, ""}
	if banner := m.renderMilestone(); banner != "" {
		lines = append(lines, banner)
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) renderMilestone() string {
	if m.milestone == 0 || m.now().Sub(m.milestoneAt) > milestoneShownFor {
		return ""
	}
	return milestoneStyle.Render(fmt.Sprintf("%d WPM reached!", m.milestone))
}

func (m *Model) renderResults() string {
	res := m.result
	lines := []string{
		titleStyle.Render("Finished " + m.snippet.ID),
		"",
		fmt.Sprintf("WPM       %.1f", res.WPM),
		fmt.Sprintf("Accuracy  %.1f%%", res.Accuracy*100),
		fmt.Sprintf("Errors    %d", res.Errors),
		fmt.Sprintf("Time      %.1fs", res.Elapsed.Seconds()),
	}
	if daily := m.receipt.Daily; daily != nil {
		line := fmt.Sprintf("Daily     %d/%d", daily.Attempts, m.quota.Max())
		if daily.BestWPM != nil {
			line += fmt.Sprintf(" · best %.1f WPM", *daily.BestWPM)
		}
		lines = append(lines, line)
	}
	if r := m.report; r != nil {
		lines = append(lines, "", fmt.Sprintf("+%d XP · Level %d %s (%d XP)", r.XPGained, r.XP.Level.Level, r.XP.Level.Name, r.XP.Total))
		if r.LevelUp {
			lines = append(lines, goodStyle.Render(fmt.Sprintf("Level up! You are now %s.", r.XP.Level.Name)))
		}
		lines = append(lines, fmt.Sprintf("Streak %d days (longest %d)", r.Streak.Streak.CurrentStreak, r.Streak.Streak.LongestStreak))
		if reward := r.Streak.Reward; reward != nil {
			lines = append(lines, goodStyle.Render(fmt.Sprintf("%s: %s +%d XP", reward.Title, reward.Description, reward.XPBonus)))
		}
		for _, a := range r.Unlocked {
			lines = append(lines, goodStyle.Render(fmt.Sprintf("Achievement unlocked: %s (%s)", a.Title, a.Description)))
		}
	}
	if m.submitState != "" {
		lines = append(lines, "", headerStyle.Render(m.submitState))
	}
	lines = append(lines, "", m.help.ShortHelpView(m.keys.results()))
	return strings.Join(lines, "\n")
}

func (m *Model) loadFooterStats() {
	history := m.history.Recent(context.Background(), 0)
	if m.config.Lang != "" {
		filtered := history[:0]
		for _, a := range history {
			if a.Language == m.config.Lang {
				filtered = append(filtered, a)
			}
		}
		history = filtered
	}
	if len(history) == 0 {
		return
	}
	m.lastWPM = history[0].WPM
	m.lastAcc = history[0].Accuracy
	m.hasLast = true
	totals := stats.Totals(history)
	m.allWPM = totals.AverageWPM
	m.allAcc = totals.AverageAccuracy
	m.allCount = totals.TotalAttempts
}

func (m *Model) addFooterAttempt(a model.Attempt) {
	if m.config.Lang != "" && a.Language != m.config.Lang {
		return
	}
	m.lastWPM = a.WPM
	m.lastAcc = a.Accuracy
	m.hasLast = true
	n := float64(m.allCount)
	m.allWPM = (m.allWPM*n + a.WPM) / (n + 1)
	m.allAcc = (m.allAcc*n + a.Accuracy) / (n + 1)
	m.allCount++
}

func (m *Model) renderFooter() string {
	if m.session == nil {
		return ""
	}
	target := m.session.Target()
	if len(target) == 0 {
		return ""
	}
	pct := len(m.session.Input()) * 100 / len(target)
	segments := []string{fmt.Sprintf("Progress %d%%", pct)}
	if m.session.State() == engine.StateRunning {
		live := m.session.Metrics(m.now())
		segments = append(segments, fmt.Sprintf("Now %.1f WPM · %.1f%%", live.WPM, live.Accuracy*100))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc*100))
	}
	if m.allCount > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
