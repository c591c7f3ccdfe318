package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/tui/components"
	"github.com/mmcdole/folio/internal/tui/styles"
)

// RenderSpinner renders the current spinner frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var content string
	if m.State == StateLightbox {
		content = m.LightboxView.View()
	} else {
		grid := m.Grid
		grid.SetFooter(m.renderLoadMoreFooter())
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.Sidebar.View(), grid.View())
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(),
	)

	// Overlay sort modal if visible
	if m.SortModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.SortModal.View())
	}

	// Overlay input modal if visible
	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return view
}

// updateBreadcrumb describes the active query above the grid
func (m *Model) updateBreadcrumb() {
	params := m.Gallery.State().Params

	parts := []string{"All photos"}
	if params.CategoryID != "" {
		parts[0] = params.CategoryID
		for _, cat := range m.Sidebar.Categories() {
			if cat.ID == params.CategoryID {
				parts[0] = cat.Name
				break
			}
		}
	}
	if params.SeriesSlug != "" {
		title := params.SeriesSlug
		if m.Series != nil && m.Series.Title != "" {
			title = m.Series.Title
		}
		parts = append(parts, "Series: "+title)
	}

	crumb := strings.Join(parts, " > ")
	crumb += " · " + components.SortLabel(params.SortField) + " " + sortArrow(params.SortDir)
	if params.Featured != nil && *params.Featured {
		crumb += " · featured"
	}
	m.Grid.SetBreadcrumb(crumb)
}

func sortArrow(dir domain.SortDir) string {
	if dir == domain.SortAsc {
		return "↑"
	}
	return "↓"
}

// renderHeader renders the title bar with gallery counts
func (m Model) renderHeader() string {
	left := styles.AccentStyle.Bold(true).Render("folio")
	if m.Series != nil && m.Series.Description != "" && m.Gallery.State().Params.SeriesSlug != "" {
		left += "  " + styles.DimStyle.Render(styles.Truncate(m.Series.Description, m.Width/2))
	}

	st := m.Gallery.State()
	var right []string
	if st.Pagination.TotalCount > 0 {
		right = append(right, fmt.Sprintf("%d/%d photos", len(st.Items), st.Pagination.TotalCount))
	} else {
		right = append(right, fmt.Sprintf("%d photos", len(st.Items)))
	}
	if st.Pagination.TotalPages > 0 {
		right = append(right, fmt.Sprintf("page %d/%d", st.Pagination.Page, st.Pagination.TotalPages))
	}
	if m.Likes != nil {
		right = append(right, fmt.Sprintf("%s %d liked", styles.LikedChar, m.Likes.Len()))
	}
	rightStr := styles.DimStyle.Render(strings.Join(right, " · "))

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + rightStr
}

// renderLoadMoreFooter renders the end-of-list trigger row
func (m Model) renderLoadMoreFooter() string {
	st := m.Gallery.State()
	switch {
	case m.LoadMore != nil && m.LoadMore.Busy(), st.Loading && len(st.Items) > 0:
		return RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading more...")
	case st.Err != nil:
		return styles.ErrorStyle.Render("Couldn't load photos") + styles.DimStyle.Render(" · r to retry")
	case st.Pagination.HasMore:
		return styles.AccentStyle.Render("m") + styles.DimStyle.Render(" load more")
	case len(st.Items) > 0:
		return styles.DimStyle.Render("End of gallery")
	}
	return " "
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	st := m.Gallery.State()

	var left string
	if st.Loading && len(st.Items) == 0 {
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading photos...")
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	var center string
	if m.State == StateLightbox {
		center = styles.AccentStyle.Render("f") + styles.DimStyle.Render(" like  ") +
			styles.AccentStyle.Render("o") + styles.DimStyle.Render(" open")
	} else if m.Prefetch != nil && m.Prefetch.Pending() > 0 {
		center = styles.DimStyle.Render(fmt.Sprintf("fetching %d images", m.Prefetch.Pending()))
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := m.Width - leftWidth - rightWidth
		if gap < 0 {
			gap = 0
		}
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// helpSection is one titled column of the help screen
type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelp renders the help screen from the active key bindings
func (m Model) renderHelp() string {
	sections := []helpSection{
		{"Browsing", []key.Binding{Keys.Up, Keys.Down, Keys.Home, Keys.End, Keys.HalfDown, Keys.Enter, Keys.Tab}},
		{"Gallery", []key.Binding{Keys.Filter, Keys.Sort, Keys.Featured, Keys.Series, Keys.Category, Keys.LoadMore, Keys.Like}},
		{"Lightbox", []key.Binding{Keys.Left, Keys.Right, Keys.Like, Keys.OpenFull, Keys.Escape}},
		{"Other", []key.Binding{Keys.Retry, Keys.Refresh, Keys.Help, Keys.Quit}},
	}

	columns := make([]string, 0, len(sections))
	for _, sec := range sections {
		lines := []string{styles.ModalTitleStyle.Render(strings.ToUpper(sec.title))}
		for _, b := range sec.bindings {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Render(styles.Pad(h.Key, 9))+styles.HelpDescStyle.Render(h.Desc))
		}
		columns = append(columns, lipgloss.NewStyle().PaddingRight(3).Render(strings.Join(lines, "\n")))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, columns[0], columns[1]),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, columns[2], columns[3]),
		"",
		styles.DimStyle.Render("Press any key to return..."),
	)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}
