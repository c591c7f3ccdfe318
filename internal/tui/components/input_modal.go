package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/folio/internal/tui/styles"
)

const promptWidth = 36

// Suggester previews what a prompt value would resolve to. An empty
// result means no match.
type Suggester func(value string) string

// InputModal is a one-line prompt used for series slugs and category jumps
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model
	suggest Suggester
	preview string
}

// NewInputModal creates a hidden prompt
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.CharLimit = 80
	ti.Width = promptWidth - 2
	ti.Prompt = "› "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{input: ti}
}

// Show opens an empty prompt. suggest may be nil.
func (m *InputModal) Show(title, placeholder string, suggest Suggester) {
	m.visible = true
	m.title = title
	m.suggest = suggest
	m.preview = ""
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

// Hide dismisses the prompt
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the prompt is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Value returns the trimmed input value
func (m InputModal) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Preview returns the current suggestion for the typed value
func (m InputModal) Preview() string {
	return m.preview
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.Hide()
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.suggest != nil && m.Value() != "" {
		m.preview = m.suggest(m.Value())
	} else {
		m.preview = ""
	}
	return m, cmd, false
}

// View renders the prompt box
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	hint := styles.DimStyle.Render("enter confirm · esc cancel")
	switch {
	case m.preview != "":
		hint = styles.AccentStyle.Render("→ " + styles.Truncate(m.preview, promptWidth-2))
	case m.suggest != nil && m.Value() != "":
		hint = styles.ErrorStyle.Render("no match")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(promptWidth).Render(m.input.View()),
		hint,
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(body)
}
