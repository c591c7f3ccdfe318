package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// SortOption is one field the gallery can be sorted by
type SortOption struct {
	Field string
	Label string
}

// GallerySortOptions returns the sort fields the portfolio API understands
func GallerySortOptions() []SortOption {
	return []SortOption{
		{Field: domain.SortByCreated, Label: "Newest"},
		{Field: domain.SortByLikes, Label: "Most liked"},
		{Field: domain.SortByViews, Label: "Most viewed"},
		{Field: domain.SortByTitle, Label: "Title"},
	}
}

// SortLabel returns the display label for a sort field
func SortLabel(field string) string {
	for _, opt := range GallerySortOptions() {
		if opt.Field == field {
			return opt.Label
		}
	}
	return field
}

// DefaultDirection returns the default sort direction for a field
func DefaultDirection(field string) domain.SortDir {
	if field == domain.SortByTitle {
		return domain.SortAsc // A-Z
	}
	return domain.SortDesc // newest / highest first
}

// SortSelection represents the user's sort choice
type SortSelection struct {
	Field     string
	Direction domain.SortDir
}

// SortModal is a small popup for choosing sort order
type SortModal struct {
	visible     bool
	options     []SortOption
	cursor      int
	activeField string
	activeDir   domain.SortDir
}

// NewSortModal creates a new sort modal
func NewSortModal() SortModal {
	return SortModal{}
}

// Show displays the modal with the current sort state
func (m *SortModal) Show(activeField string, activeDir domain.SortDir) {
	m.visible = true
	m.options = GallerySortOptions()
	m.activeField = activeField
	m.activeDir = activeDir
	m.cursor = 0
	for i, opt := range m.options {
		if opt.Field == activeField {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the modal
func (m *SortModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m SortModal) IsVisible() bool {
	return m.visible
}

// HandleKey processes a key press, returns (handled, selection).
// If selection is non-nil, the user confirmed a choice.
func (m *SortModal) HandleKey(msg tea.KeyMsg) (handled bool, selection *SortSelection) {
	if !m.visible {
		return false, nil
	}

	switch {
	case key.Matches(msg, SortModalKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
		return true, nil
	case key.Matches(msg, SortModalKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return true, nil
	case key.Matches(msg, SortModalKeys.Enter):
		chosen := m.options[m.cursor].Field
		dir := DefaultDirection(chosen)
		if chosen == m.activeField {
			// Toggle direction
			if m.activeDir == domain.SortAsc {
				dir = domain.SortDesc
			} else {
				dir = domain.SortAsc
			}
		}
		m.visible = false
		return true, &SortSelection{Field: chosen, Direction: dir}
	case key.Matches(msg, SortModalKeys.Escape):
		m.visible = false
		return true, nil
	}

	return true, nil // consume all keys when visible
}

// View renders the sort modal
func (m SortModal) View() string {
	if !m.visible || len(m.options) == 0 {
		return ""
	}

	var lines []string
	for i, opt := range m.options {
		isActive := opt.Field == m.activeField

		prefix := "  "
		suffix := ""
		if isActive {
			prefix = "✓ "
			if m.activeDir == domain.SortAsc {
				suffix = " ↑"
			} else {
				suffix = " ↓"
			}
		}
		text := styles.Pad(prefix+opt.Label+suffix, 20)

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		switch {
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		case isActive:
			style = lipgloss.NewStyle().Foreground(styles.Amber)
		}
		lines = append(lines, style.Render(text))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Sort by") + "\n" + strings.Join(lines, "\n"))
}
