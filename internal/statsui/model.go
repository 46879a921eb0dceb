// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
	"github.com/verte-zerg/typrr/internal/stats"
)

const (
	tabOverview = iota
	tabAttempts
	tabProgress
	tabLeaderboard
)

const (
	plotHeight         = 10
	leaderboardLimit   = 20
	leaderboardTimeout = 10 * time.Second
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	unlockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// LeaderboardFunc fetches leaderboard entries, for one language when lang is set.
type LeaderboardFunc func(ctx context.Context, lang string, limit int) ([]model.LeaderboardEntry, error)

// Deps are the data sources of the stats UI.
type Deps struct {
	History *localstate.History
	Tracker *progress.Tracker
	// Leaderboard is nil when no server is configured.
	Leaderboard LeaderboardFunc
	Now         func() time.Time
}

type leaderboardMsg struct {
	lang    string
	entries []model.LeaderboardEntry
	err     error
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	deps Deps
	cfg  stats.ReportConfig

	report stats.Report

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	attemptTable table.Model

	leaderboard        []model.LeaderboardEntry
	leaderboardLang    string
	leaderboardErr     string
	leaderboardLoading bool
	leaderboardLoaded  bool

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(deps Deps, cfg stats.ReportConfig) *Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &Model{
		deps: deps,
		cfg:  cfg,
		tabs: []string{"Overview", "Attempts", "Progress", "Leaderboard"},
	}
	m.initInputs()
	m.attemptTable = table.New(table.WithColumns(attemptColumns()))
	m.attemptTable.SetStyles(attemptTableStyles())
	m.initViewports()
	m.refreshReport()
	return m
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case leaderboardMsg:
		if msg.lang != m.cfg.Lang {
			return m, nil
		}
		m.leaderboardLoading = false
		m.leaderboardLoaded = true
		m.leaderboardLang = msg.lang
		m.leaderboard = msg.entries
		m.leaderboardErr = ""
		if msg.err != nil {
			m.leaderboardErr = msg.err.Error()
		}
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.activeTab == tabAttempts {
			m.attemptTable.Focus()
		} else {
			m.attemptTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			return m, tea.Batch(m.moveTab(-1), tea.ClearScreen)
		case "right", "l":
			return m, tea.Batch(m.moveTab(1), tea.ClearScreen)
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startFilter()
		case "r":
			m.refreshReport()
			m.leaderboardLoaded = false
			return m, m.fetchLeaderboard()
		case "g", "home":
			if m.activeTab == tabAttempts {
				m.attemptTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabAttempts {
				m.attemptTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabAttempts {
				m.attemptTable, cmd = m.attemptTable.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Lang: "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Lang))
	if m.cfg.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.attemptTable.SetWidth(m.width)
	m.attemptTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) tea.Cmd {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabAttempts {
		m.attemptTable.Focus()
	} else {
		m.attemptTable.Blur()
	}
	if m.activeTab == tabLeaderboard && !m.leaderboardLoaded {
		return m.fetchLeaderboard()
	}
	return nil
}

func (m *Model) fetchLeaderboard() tea.Cmd {
	if m.deps.Leaderboard == nil || m.leaderboardLoading {
		return nil
	}
	m.leaderboardLoading = true
	m.renderTabContents()
	fetch := m.deps.Leaderboard
	lang := m.cfg.Lang
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
		defer cancel()
		entries, err := fetch(ctx, lang, leaderboardLimit)
		return leaderboardMsg{lang: lang, entries: entries, err: err}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	lang := m.cfg.Lang
	if lang == "" {
		lang = "any"
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: lang=%s  last=%s  window=%d", lang, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	return headerStyle.Render(truncateLine("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Reload: r  Quit: q", m.width))
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabAttempts {
		if len(m.report.Attempts) == 0 {
			return fitLines("No attempts found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.attemptTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	m.report = stats.BuildReport(ctx, m.deps.History, m.deps.Tracker, m.cfg, m.deps.Now())
	m.attemptTable.SetRows(attemptRows(m.report.Attempts))
	m.attemptTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabProgress].SetContent(renderProgress(m.report))
	m.viewports[tabLeaderboard].SetContent(m.renderLeaderboard())
}

func renderOverview(r stats.Report, window, width int) string {
	if r.Totals.TotalAttempts == 0 {
		return "No attempts found."
	}
	summary := renderSummaryCards(r.Totals, width)
	var buf bytes.Buffer
	if err := stats.RenderLanguageTable(&buf, r.Languages); err != nil {
		return fmt.Sprintf("Failed to render languages: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String()+renderCurves(r.Attempts, window, width), "\n")
}

func renderSummaryCards(totals model.AttemptStats, width int) string {
	cards := []string{
		metricCard("Attempts", fmt.Sprintf("%d", totals.TotalAttempts)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", totals.AverageWPM)),
		metricCard("Best WPM", fmt.Sprintf("%.1f", totals.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", totals.AverageAccuracy*100)),
		metricCard("Time", stats.FormatDuration(totals.TotalTimeMs)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(attempts []model.Attempt, window, width int) string {
	wpm, acc := stats.Series(attempts)
	if len(wpm) < 2 {
		return "Finish a few more attempts to see your progress curve."
	}
	var buf bytes.Buffer
	chart := stats.Chart{Title: "Progress", Width: stats.ChartWidthFor(width), Height: plotHeight, Color: true}
	err := chart.Render(&buf,
		stats.Curve{Name: "WPM", Values: stats.MovingAverage(wpm, window)},
		stats.Curve{Name: "Accuracy", Values: stats.MovingAverage(acc, window)},
	)
	if err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return buf.String()
}

func renderProgress(r stats.Report) string {
	xp := r.XP
	lines := []string{
		cardValueStyle.Render(fmt.Sprintf("Level %d · %s", xp.Level.Level, xp.Level.Name)),
		fmt.Sprintf("%s %d XP", progressBar(xp.Progress, 30), xp.Total),
	}
	if xp.ToNextLevel > 0 {
		lines = append(lines, headerStyle.Render(fmt.Sprintf("%d XP to the next level", xp.ToNextLevel)))
	}
	lines = append(lines, "",
		cardValueStyle.Render("Streak"),
		fmt.Sprintf("Current %d days · longest %d · %d days total", r.Streak.CurrentStreak, r.Streak.LongestStreak, r.Streak.TotalDays),
		renderCalendar(r.Calendar),
		"",
		cardValueStyle.Render("Achievements"),
	)
	for _, a := range r.Achievements {
		mark := headerStyle.Render("·")
		title := a.Title
		if a.Unlocked {
			mark = unlockedStyle.Render("★")
			title = unlockedStyle.Render(title)
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s (%.0f%%)", mark, title, headerStyle.Render(a.Description), a.Progress))
	}
	return strings.Join(lines, "\n")
}

func renderCalendar(days []progress.CalendarDay) string {
	var b strings.Builder
	for i, d := range days {
		if i > 0 && i%7 == 0 {
			b.WriteRune(' ')
		}
		if d.Practiced {
			b.WriteString(unlockedStyle.Render("■"))
		} else {
			b.WriteString(headerStyle.Render("·"))
		}
	}
	return b.String()
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func (m *Model) renderLeaderboard() string {
	if m.deps.Leaderboard == nil {
		return "Leaderboard unavailable: set api-url in the config to connect to a server."
	}
	if m.leaderboardLoading {
		return "Loading leaderboard..."
	}
	if m.leaderboardErr != "" {
		return errorStyle.Render("Failed to load leaderboard: " + m.leaderboardErr)
	}
	if !m.leaderboardLoaded {
		return "Press r to load the leaderboard."
	}
	title := "Global Leaderboard"
	if m.leaderboardLang != "" {
		title = "Leaderboard: " + m.leaderboardLang
	}
	var buf bytes.Buffer
	if err := stats.RenderLeaderboard(&buf, title, m.leaderboard); err != nil {
		return fmt.Sprintf("Failed to render leaderboard: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func attemptColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Snippet", Width: 18},
		{Title: "Lang", Width: 10},
		{Title: "Mode", Width: 8},
		{Title: "WPM", Width: 6},
		{Title: "Accuracy", Width: 8},
		{Title: "Errors", Width: 6},
		{Title: "Time", Width: 7},
	}
}

// attemptRows lists attempts newest first.
func attemptRows(attempts []model.Attempt) []table.Row {
	rows := make([]table.Row, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		rows = append(rows, table.Row{
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			a.SnippetID,
			a.Language,
			string(a.Mode),
			fmt.Sprintf("%.1f", a.WPM),
			fmt.Sprintf("%.1f%%", a.Accuracy*100),
			fmt.Sprintf("%d", a.Errors),
			fmt.Sprintf("%.1fs", float64(a.TimeMs)/1000),
		})
	}
	return rows
}

func attemptTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		langBefore := m.cfg.Lang
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		if m.cfg.Lang != langBefore {
			m.leaderboardLoaded = false
			m.leaderboardLoading = false
			if m.activeTab == tabLeaderboard {
				return m, m.fetchLeaderboard()
			}
		}
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	lang := strings.TrimSpace(m.filterInputs[0].Value())

	lastInput := strings.TrimSpace(m.filterInputs[1].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[2].Value())
	window := 1
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg.Lang = lang
	m.cfg.Last = last
	m.cfg.CurveWindow = window
	return nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
