// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/legipwd/internal/model"
	"github.com/verte-zerg/legipwd/internal/stats"
	"github.com/verte-zerg/legipwd/internal/store"
)

const (
	tabOverview = iota
	tabRuns
	tabRules
)

const shareBarWidth = 30

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
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model and loads the first report.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Runs", "Rules"},
		overview: viewport.New(0, 0),
	}
	runs := newTable(runColumns(), nil)
	rules := newTable(ruleColumns(), nil)
	m.tables = map[int]*table.Model{tabRuns: &runs, tabRules: &rules}
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
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if t, ok := m.tables[m.activeTab]; ok {
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			m.overview, cmd = m.overview.Update(msg)
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
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// ActiveTab returns the title of the selected tab.
func (m *Model) ActiveTab() string {
	return m.tabs[m.activeTab]
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(maxInt(1, bodyHeight-1))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	if t, ok := m.tables[m.activeTab]; ok {
		t.Blur()
	}
	m.activeTab = next
	if t, ok := m.tables[m.activeTab]; ok {
		t.Focus()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabRuns].SetRows(runRows(report.Runs))
	m.tables[tabRules].SetRows(ruleRows(report))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
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

func (m *Model) renderBody() string {
	if len(m.report.Runs) == 0 && m.errMsg == "" {
		return "No runs recorded. Generate with --record to collect stats."
	}
	if t, ok := m.tables[m.activeTab]; ok {
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render(truncateLine("Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q", m.width))
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return help
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Runs) == 0 {
		return "No runs recorded."
	}
	rate, _ := stats.RunMetrics(report.Accepted, report.Attempts, 0)
	cards := []string{
		metricCard("Runs", fmt.Sprintf("%d", len(report.Runs))),
		metricCard("Passwords", fmt.Sprintf("%d", report.Accepted)),
		metricCard("Attempts", fmt.Sprintf("%d", report.Attempts)),
		metricCard("Acceptance", fmt.Sprintf("%.2f%%", rate*100)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	lines := []string{summary, "", "Rejections"}
	for _, r := range report.Rules {
		share := 0.0
		if report.Rejected > 0 {
			share = float64(r.Count) / float64(report.Rejected)
		}
		lines = append(lines, fmt.Sprintf("%-16s %s %6.2f%%", r.Rule, shareBar(share), share*100))
	}
	return strings.Join(lines, "\n")
}

func shareBar(share float64) string {
	filled := int(share*shareBarWidth + 0.5)
	filled = minInt(maxInt(filled, 0), shareBarWidth)
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("·", shareBarWidth-filled)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 19},
		{Title: "Passwords", Width: 9},
		{Title: "Attempts", Width: 9},
		{Title: "Accepted", Width: 8},
		{Title: "Workers", Width: 7},
		{Title: "Time", Width: 8},
	}
}

func ruleColumns() []table.Column {
	return []table.Column{
		{Title: "Rule", Width: 16},
		{Title: "Share", Width: 8},
		{Title: "Count", Width: 10},
	}
}

func runRows(runs []model.RunAggregate) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		rate, _ := stats.RunMetrics(r.Accepted, r.Attempts, r.DurationMs)
		rows = append(rows, table.Row{
			r.EndedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", r.Accepted),
			fmt.Sprintf("%d", r.Attempts),
			fmt.Sprintf("%.2f%%", rate*100),
			fmt.Sprintf("%d", r.Workers),
			fmt.Sprintf("%dms", r.DurationMs),
		})
	}
	return rows
}

func ruleRows(report stats.Report) []table.Row {
	rows := make([]table.Row, 0, len(report.Rules))
	for _, r := range report.Rules {
		share := 0.0
		if report.Rejected > 0 {
			share = float64(r.Count) / float64(report.Rejected)
		}
		rows = append(rows, table.Row{r.Rule, fmt.Sprintf("%.2f%%", share*100), fmt.Sprintf("%d", r.Count)})
	}
	return rows
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
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
