package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// CategoryItem implements list.Item for categories. A nil Category is the
// "all photos" entry.
type CategoryItem struct {
	Category *domain.Category
	Active   bool
}

func (i CategoryItem) FilterValue() string {
	if i.Category == nil {
		return "All"
	}
	return i.Category.Name
}

func (i CategoryItem) Title() string {
	marker := "  "
	if i.Active {
		marker = "✓ "
	}
	if i.Category == nil {
		return marker + "All photos"
	}
	if i.Category.ItemCount > 0 {
		return fmt.Sprintf("%s%s (%d)", marker, i.Category.Name, i.Category.ItemCount)
	}
	return marker + i.Category.Name
}

func (i CategoryItem) Description() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Description
}

// Border overhead for the sidebar panel
const BorderSize = 2

// Sidebar is the category selection sidebar component
type Sidebar struct {
	list       list.Model
	focused    bool
	width      int
	height     int
	categories []domain.Category
	activeID   string
	loading    bool
	frame      int
}

// NewSidebar creates a new sidebar component
func NewSidebar() Sidebar {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.White).
		Background(styles.SlateLight).
		Padding(0, 1)
	delegate.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(styles.LightGray).
		Padding(0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Categories"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Padding(0, 1)

	s := Sidebar{list: l, loading: true}
	s.refreshItems()
	return s
}

// SetCategories updates the categories in the sidebar
func (s *Sidebar) SetCategories(categories []domain.Category) {
	s.categories = categories
	s.loading = false
	s.refreshItems()
}

// SetActive marks the category the gallery is filtered by ("" = all)
func (s *Sidebar) SetActive(categoryID string) {
	s.activeID = categoryID
	s.refreshItems()
}

// SetSpinnerFrame updates the spinner animation frame
func (s *Sidebar) SetSpinnerFrame(frame int) {
	s.frame = frame
	if s.loading {
		s.list.Title = styles.SpinnerFrames[frame%len(styles.SpinnerFrames)] + " Categories"
	} else {
		s.list.Title = "Categories"
	}
}

// Categories returns the loaded categories
func (s Sidebar) Categories() []domain.Category {
	return s.categories
}

func (s *Sidebar) refreshItems() {
	items := make([]list.Item, 0, len(s.categories)+1)
	items = append(items, CategoryItem{Active: s.activeID == ""})
	for i := range s.categories {
		cat := s.categories[i]
		items = append(items, CategoryItem{Category: &cat, Active: cat.ID == s.activeID})
	}
	s.list.SetItems(items)
}

// SetSize updates the component dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(width-BorderSize, height-BorderSize)
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s Sidebar) IsFocused() bool {
	return s.focused
}

// SelectedCategoryID returns the category under the cursor ("" = all)
func (s Sidebar) SelectedCategoryID() string {
	item, ok := s.list.SelectedItem().(CategoryItem)
	if !ok || item.Category == nil {
		return ""
	}
	return item.Category.ID
}

// SelectCategory moves the cursor onto categoryID
func (s *Sidebar) SelectCategory(categoryID string) {
	if categoryID == "" {
		s.list.Select(0)
		return
	}
	for i, cat := range s.categories {
		if cat.ID == categoryID {
			s.list.Select(i + 1)
			return
		}
	}
}

// Init initializes the component
func (s Sidebar) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	if !s.focused {
		return s, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "j", "down":
			s.list.CursorDown()
		case "k", "up":
			s.list.CursorUp()
		case "g":
			s.list.Select(0)
		case "G":
			s.list.Select(len(s.list.Items()) - 1)
		}
	}

	return s, nil
}

// View renders the component
func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()

	return style.
		Width(s.width - frameW).
		Height(s.height - frameH).
		Render(s.list.View())
}
