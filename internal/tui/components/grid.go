package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/search"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// Layout constants for grid
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Scroll indicators ("↑ more" and the footer line) each take 1 line
	ScrollIndicatorLines = 2

	// Breadcrumb line at top of content area
	BreadcrumbLines = 1

	// Extra safety margin for item width calculations
	ItemWidthMargin = 2
)

// Grid is the gallery browser. Rows are laid out top to bottom in list
// order; row positions double as reveal bounds.
type Grid struct {
	items    []domain.MediaItem
	index    *search.FilterIndex
	revealed func(id string) bool

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	breadcrumb string
	footer     string // shown under the last row: load-more state

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filtered     []search.FilterResult // nil when no query
}

// NewGrid creates a new grid component
func NewGrid() Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		filterInput: ti,
		maxVisible:  1,
	}
}

// SetItems replaces the rows. With keepCursor the cursor stays on the
// same row index (appends); otherwise it returns to the top.
func (g *Grid) SetItems(items []domain.MediaItem, keepCursor bool) {
	g.items = items
	g.index = search.NewFilterIndex(items)
	if g.filterQuery != "" {
		g.filtered = g.index.Filter(g.filterQuery)
	}
	if !keepCursor {
		g.cursor = 0
		g.offset = 0
	}
	g.clampCursor()
}

// SetRevealed sets the predicate used to mark rows whose asset is loading
func (g *Grid) SetRevealed(fn func(id string) bool) {
	g.revealed = fn
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.recalcMaxVisible()
}

// SetBreadcrumb sets the breadcrumb text displayed above the rows
func (g *Grid) SetBreadcrumb(crumb string) {
	g.breadcrumb = crumb
}

// SetFooter sets the line rendered after the last row
func (g *Grid) SetFooter(footer string) {
	g.footer = footer
}

// recalcMaxVisible calculates maxVisible accounting for breadcrumb and filter bar
func (g *Grid) recalcMaxVisible() {
	interiorHeight := g.height - BorderHeight
	g.maxVisible = interiorHeight - ScrollIndicatorLines - BreadcrumbLines
	if g.filterActive {
		g.maxVisible--
	}
	if g.maxVisible < 1 {
		g.maxVisible = 1
	}
	g.ensureVisible()
}

// SetFocused sets the focus state
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// IsFocused returns the focus state
func (g Grid) IsFocused() bool {
	return g.focused
}

// Cursor returns the current cursor position in display order
func (g Grid) Cursor() int {
	return g.cursor
}

// Viewport returns the first displayed row and the number of row slots
func (g Grid) Viewport() (offset, rows int) {
	return g.offset, g.maxVisible
}

// AtEnd reports whether the last row, and the footer under it, is on
// screen. Always false while a filter narrows the list.
func (g Grid) AtEnd() bool {
	if g.filterQuery != "" {
		return false
	}
	return g.offset+g.maxVisible > g.itemCount()-1
}

// SetCursor sets the cursor position
func (g *Grid) SetCursor(pos int) {
	g.cursor = pos
	g.clampCursor()
}

// SelectIndex moves the cursor onto the row showing list index idx
func (g *Grid) SelectIndex(idx int) {
	for i := 0; i < g.itemCount(); i++ {
		if g.mapIndex(i) == idx {
			g.SetCursor(i)
			return
		}
	}
}

func (g *Grid) clampCursor() {
	max := g.itemCount() - 1
	if max < 0 {
		g.cursor = 0
		g.offset = 0
		return
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	if g.cursor > max {
		g.cursor = max
	}
	g.ensureVisible()
}

// itemCount returns the number of rows (accounting for filter)
func (g Grid) itemCount() int {
	if g.filterQuery != "" {
		return len(g.filtered)
	}
	return len(g.items)
}

// Len returns the number of items without filtering
func (g Grid) Len() int {
	return len(g.items)
}

// IsEmpty returns true if there are no rows
func (g Grid) IsEmpty() bool {
	return g.itemCount() == 0
}

// mapIndex maps a display position to the index in the gallery list
func (g Grid) mapIndex(i int) int {
	if g.filterQuery != "" && i < len(g.filtered) {
		return g.filtered[i].Index
	}
	return i
}

// SelectedIndex returns the list index under the cursor
func (g Grid) SelectedIndex() (int, bool) {
	if g.itemCount() == 0 {
		return 0, false
	}
	return g.mapIndex(g.cursor), true
}

// SelectedItem returns the item under the cursor
func (g Grid) SelectedItem() *domain.MediaItem {
	idx, ok := g.SelectedIndex()
	if !ok || idx >= len(g.items) {
		return nil
	}
	item := g.items[idx]
	return &item
}

// DisplayIDs returns item IDs in display order
func (g Grid) DisplayIDs() []string {
	count := g.itemCount()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, g.items[g.mapIndex(i)].ID)
	}
	return ids
}

// ensureVisible ensures the cursor is visible
func (g *Grid) ensureVisible() {
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+g.maxVisible {
		g.offset = g.cursor - g.maxVisible + 1
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

// ToggleFilter activates the filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused (typing mode)
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (g *Grid) ClearFilter() {
	g.clearFilter()
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filtered = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.recalcMaxVisible()
}

// applyFilter filters rows based on the current query
func (g *Grid) applyFilter() {
	g.filterQuery = strings.TrimSpace(g.filterInput.Value())
	g.filtered = nil
	if g.filterQuery != "" && g.index != nil {
		g.filtered = g.index.Filter(g.filterQuery)
	}
	g.cursor = 0
	g.offset = 0
}

// Init initializes the component
func (g Grid) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	// Handle filter input when active AND focused (typing mode)
	if g.filterActive && g.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, GridKeys.Escape):
				g.clearFilter()
				return g, nil
			case key.Matches(keyMsg, GridKeys.Enter):
				// Accept filter, blur input to allow navigation
				g.filterInput.Blur()
				return g, nil
			case keyMsg.String() == "backspace" && g.filterInput.Value() == "":
				g.clearFilter()
				return g, nil
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return g, cmd
	}

	if g.filterActive && isKey {
		switch {
		case key.Matches(keyMsg, GridKeys.Escape):
			g.clearFilter()
			return g, nil
		case key.Matches(keyMsg, GridKeys.Filter):
			g.filterInput.Focus()
			return g, nil
		}
	}

	count := g.itemCount()
	if count == 0 || !isKey {
		return g, nil
	}

	switch {
	case key.Matches(keyMsg, GridKeys.Down):
		if g.cursor < count-1 {
			g.cursor++
			g.ensureVisible()
		}
	case key.Matches(keyMsg, GridKeys.Up):
		if g.cursor > 0 {
			g.cursor--
			g.ensureVisible()
		}
	case key.Matches(keyMsg, GridKeys.Home):
		g.cursor = 0
		g.offset = 0
	case key.Matches(keyMsg, GridKeys.End):
		g.cursor = count - 1
		g.ensureVisible()
	case key.Matches(keyMsg, GridKeys.HalfDown):
		g.cursor += g.maxVisible / 2
		g.clampCursor()
	case key.Matches(keyMsg, GridKeys.HalfUp):
		g.cursor -= g.maxVisible / 2
		g.clampCursor()
	}

	return g, nil
}

// View renders the component
func (g Grid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame (border) size so total rendered size equals g.width x g.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(g.width - frameW).
		Height(g.height - frameH).
		Render(g.renderList())
}

func (g Grid) renderList() string {
	itemWidth := g.width - BorderWidth - HorizontalPadding - ItemWidthMargin

	breadcrumbLine := " "
	if g.breadcrumb != "" {
		breadcrumbLine = styles.AccentStyle.Render(styles.Truncate(g.breadcrumb, itemWidth))
	}

	count := g.itemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No photos")
		if g.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := breadcrumbLine + "\n" + " " + "\n" + emptyMsg + "\n" + g.footerLine(false)
		if g.filterActive {
			content += "\n" + g.renderFilterBar()
		}
		return content
	}

	end := g.offset + g.maxVisible
	if end > count {
		end = count
	}

	lines := make([]string, 0, end-g.offset)
	for i := g.offset; i < end; i++ {
		lines = append(lines, g.renderItem(g.items[g.mapIndex(i)], i == g.cursor, itemWidth))
	}

	header := " "
	if g.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}

	content := breadcrumbLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + g.footerLine(end < count)
	if g.filterActive {
		content += "\n" + g.renderFilterBar()
	}
	return content
}

func (g Grid) footerLine(more bool) string {
	if more {
		return styles.DimStyle.Render("↓ more")
	}
	if g.footer != "" && g.filterQuery == "" {
		return g.footer
	}
	return " "
}

// renderItem renders one photo row
func (g Grid) renderItem(item domain.MediaItem, selected bool, width int) string {
	heartChar := styles.UnlikedChar
	heartFg := styles.DimGray
	if item.LikedByViewer {
		heartChar = styles.LikedChar
		heartFg = styles.Rose
	}

	loadChar := styles.PendingChar
	loadFg := styles.DimGray
	if g.revealed != nil && g.revealed(item.ID) {
		loadChar = styles.LoadedChar
		loadFg = styles.Amber
	}

	counts := fmt.Sprintf(" %d♥ %d◉", item.LikeCount, item.ViewCount)
	category := ""
	if item.CategoryName != "" {
		category = " · " + item.CategoryName
	}
	titleWidth := width - 6 - len([]rune(counts)) - len([]rune(category))
	if titleWidth < 8 {
		titleWidth = 8
		category = ""
	}
	title := styles.Truncate(item.GetTitle(), titleWidth)

	dimGray := styles.DimGray
	parts := []styles.RowPart{
		{Text: loadChar, Foreground: &loadFg},
		{Text: " " + heartChar, Foreground: &heartFg},
		{Text: " " + title, Foreground: nil},
		{Text: category, Foreground: &dimGray},
		{Text: counts, Foreground: &dimGray},
	}
	if item.Featured {
		amber := styles.Amber
		parts = append(parts, styles.RowPart{Text: " ★", Foreground: &amber})
	}

	return styles.RenderListRow(parts, selected, width)
}

// renderFilterBar renders the filter input bar
func (g Grid) renderFilterBar() string {
	input := g.filterInput.View()
	countStr := ""
	if g.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.items)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, input, countStr)
}
