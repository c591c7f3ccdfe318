package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/folio/internal/domain"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleItems(n int) []domain.MediaItem {
	items := make([]domain.MediaItem, n)
	for i := range items {
		items[i] = domain.MediaItem{ID: string(rune('a' + i)), Title: "Photo " + string(rune('A'+i))}
	}
	return items
}

func TestGridAtEndFollowsViewport(t *testing.T) {
	g := NewGrid()
	g.SetFocused(true)
	g.SetSize(60, 8) // 3 rows
	g.SetItems(sampleItems(6), false)

	offset, rows := g.Viewport()
	require.Equal(t, 0, offset)
	require.Equal(t, 3, rows)
	require.False(t, g.AtEnd())

	g, _ = g.Update(keyRunes("G"))
	require.Equal(t, 5, g.Cursor())
	require.True(t, g.AtEnd())

	g, _ = g.Update(keyRunes("g"))
	require.Equal(t, 0, g.Cursor())
	require.False(t, g.AtEnd())
}

func TestGridSetItemsKeepsCursorOnAppend(t *testing.T) {
	g := NewGrid()
	g.SetFocused(true)
	g.SetSize(60, 20)
	g.SetItems(sampleItems(3), false)
	g.SetCursor(2)

	g.SetItems(sampleItems(6), true)
	require.Equal(t, 2, g.Cursor())

	g.SetItems(sampleItems(2), false)
	require.Equal(t, 0, g.Cursor())
}

func TestGridFilterMapsToListIndex(t *testing.T) {
	g := NewGrid()
	g.SetFocused(true)
	g.SetSize(60, 20)
	g.SetItems([]domain.MediaItem{
		{ID: "1", Title: "Harbor at Dawn"},
		{ID: "2", Title: "Fog Lines"},
		{ID: "3", Title: "Harbor Lights"},
	}, false)

	g.ToggleFilter()
	require.True(t, g.IsFilterTyping())
	g, _ = g.Update(keyRunes("fog"))

	require.Equal(t, []string{"2"}, g.DisplayIDs())
	idx, ok := g.SelectedIndex()
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, 3, g.Len(), "Len ignores the filter")

	g.SelectIndex(1)
	require.Equal(t, 0, g.Cursor())

	g, _ = g.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, g.IsFiltering())
	require.False(t, g.IsFilterTyping())

	g.ClearFilter()
	require.Len(t, g.DisplayIDs(), 3)
}

func TestGridSelectedItemOnEmpty(t *testing.T) {
	g := NewGrid()
	require.True(t, g.IsEmpty())
	require.Nil(t, g.SelectedItem())
	_, ok := g.SelectedIndex()
	require.False(t, ok)
}

func TestSortModalSelection(t *testing.T) {
	m := NewSortModal()
	m.Show(domain.SortByCreated, domain.SortDesc)
	require.True(t, m.IsVisible())

	// Choosing the active field flips its direction
	_, sel := m.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, sel)
	require.Equal(t, domain.SortByCreated, sel.Field)
	require.Equal(t, domain.SortAsc, sel.Direction)
	require.False(t, m.IsVisible())

	// A new field starts in its default direction
	m.Show(domain.SortByCreated, domain.SortDesc)
	for range 3 {
		m.HandleKey(keyRunes("j"))
	}
	_, sel = m.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, sel)
	require.Equal(t, domain.SortByTitle, sel.Field)
	require.Equal(t, domain.SortAsc, sel.Direction)

	m.Show(domain.SortByTitle, domain.SortAsc)
	handled, sel := m.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, handled)
	require.Nil(t, sel)
	require.False(t, m.IsVisible())
}

func TestSortLabel(t *testing.T) {
	require.Equal(t, "Most liked", SortLabel(domain.SortByLikes))
	require.Equal(t, "rating", SortLabel("rating"))
}

func TestInputModalSubmit(t *testing.T) {
	m := NewInputModal()
	m.Show("Browse series", "series-slug", nil)

	m, _, submitted := m.Update(keyRunes("  night-walks "))
	require.False(t, submitted)

	m, _, submitted = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, submitted)
	require.False(t, m.IsVisible())
	require.Equal(t, "night-walks", m.Value())
}

func TestInputModalPreviewsSuggestion(t *testing.T) {
	m := NewInputModal()
	m.Show("Jump to category", "name", func(q string) string {
		if q == "land" {
			return "Landscape"
		}
		return ""
	})

	m, _, _ = m.Update(keyRunes("land"))
	require.Equal(t, "Landscape", m.Preview())
	require.Contains(t, m.View(), "Landscape")

	m, _, _ = m.Update(keyRunes("x"))
	require.Empty(t, m.Preview())
	require.Contains(t, m.View(), "no match")
}

func TestSidebarTracksActiveCategory(t *testing.T) {
	s := NewSidebar()
	s.SetSize(30, 20)
	s.SetCategories([]domain.Category{
		{ID: "1", Name: "Street"},
		{ID: "2", Name: "Landscape"},
	})
	require.Len(t, s.Categories(), 2)
	require.Equal(t, "", s.SelectedCategoryID(), "All photos comes first")

	s.SelectCategory("2")
	require.Equal(t, "2", s.SelectedCategoryID())
}

func TestLightboxRendersItem(t *testing.T) {
	l := NewLightbox()
	l.SetSize(80, 20)
	l.SetItem(domain.MediaItem{ID: "a", Title: "Harbor at Dawn", LikeCount: 3}, 0, 2, true)

	view := l.View()
	require.Contains(t, view, "Harbor at Dawn")
	require.Contains(t, view, "1 / 2+")
}
