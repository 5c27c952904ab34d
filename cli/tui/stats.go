package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kordless/mystic/cli/reader"
)

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "stats_metrics":
		content = m.renderStatsMetrics()
	case "stats_state":
		content = m.renderStatsState()
	case "stats_logs":
		content = m.renderStatsLogs()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsMetrics() string {
	data, ok := m.data.(*reader.MetricsSnapshot)
	if !ok {
		return "Invalid data type for stats_metrics"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Performance Tracker"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Tracked", data.FunctionCount, highlightColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	for _, e := range data.Entries {
		b.WriteString(fmt.Sprintf("%s calls=%d mean=%.6fs max=%.6fs\n",
			ValueStyle.Render(e.FullName), e.CallCount, e.MeanTimeS, e.MaxTimeS))
	}

	return b.String()
}

func (m StatsModel) renderStatsState() string {
	data, ok := m.data.(*reader.StateStats)
	if !ok {
		return "Invalid data type for stats_state"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("State Timeline"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Snapshots", data.Count, highlightColor),
		m.renderStatBox("Cursor", data.Cursor, successColor),
		m.renderStatBox("Bookmarks", len(data.Bookmarks), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	return b.String()
}

func (m StatsModel) renderStatsLogs() string {
	data, ok := m.data.(*reader.LogStats)
	if !ok {
		return "Invalid data type for stats_logs"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Call Logger"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Calls", data.CallCount, highlightColor),
		m.renderStatBox("Returns", data.ReturnCount, successColor),
		m.renderStatBox("Errors", data.ErrorCount, errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	return b.String()
}

func (m StatsModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	model := NewStatsModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback and
// tests that don't want a real terminal).
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
