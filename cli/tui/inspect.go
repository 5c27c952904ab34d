package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kordless/mystic/cli/reader"
)

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "inspect_function":
		content = m.renderInspectFunction()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectFunction() string {
	data, ok := m.data.(*reader.FunctionDetail)
	if !ok {
		return "Invalid data type for inspect_function"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Function Details"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Name:"),
		ValueStyle.Render(data.FullName)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Signature:"),
		ValueStyle.Render(data.Signature)))

	if data.Doc != "" {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Doc:"),
			ValueStyle.Render(data.Doc)))
	}

	hijackedLabel := "no"
	if data.Hijacked {
		hijackedLabel = "yes"
	}
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Hijacked:"),
		HijackStyle(data.Hijacked).Render(hijackedLabel)))

	if data.Hijacked {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Calls:"),
			ValueStyle.Render(fmt.Sprintf("%d", data.CallCount))))
	}

	if len(data.Dependencies) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Calls out to:\n"))
		for _, dep := range data.Dependencies {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(dep)))
		}
	}

	return BoxStyle.Render(b.String())
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback
// and for tests that don't want a real terminal).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
