package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/folio/internal/catalog"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/gallery"
	"github.com/mmcdole/folio/internal/lightbox"
	"github.com/mmcdole/folio/internal/likes"
	"github.com/mmcdole/folio/internal/reveal"
	"github.com/mmcdole/folio/internal/search"
	"github.com/mmcdole/folio/internal/tui/components"
	"github.com/mmcdole/folio/internal/viewer"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateLightbox
	StateHelp
)

// Pane identifies the focused pane while browsing
type Pane int

const (
	PaneGallery Pane = iota
	PaneCategories
)

// Layout constants
const (
	SidebarPercent  = 24
	MinSidebarWidth = 20
	ChromeHeight    = 2 // header + footer
)

// InputPurpose is what the input modal's value will be used for
type InputPurpose int

const (
	InputSeries InputPurpose = iota
	InputCategory
)

// Services is everything the TUI drives
type Services struct {
	Gallery   *gallery.Coordinator
	LoadMore  *gallery.LoadMore
	Likes     *likes.Set
	Toggler   *likes.Toggler
	Navigator *lightbox.Navigator
	Catalog   *catalog.Service
	Tracker   *reveal.Tracker
	Prefetch  *reveal.Prefetcher
	Viewer    *viewer.Viewer
	Logger    *slog.Logger
}

// Model is the main application model
type Model struct {
	// State
	State ApplicationState
	Focus Pane
	Ready bool

	// Dimensions
	Width  int
	Height int

	// Services
	Gallery   *gallery.Coordinator
	LoadMore  *gallery.LoadMore
	Likes     *likes.Set
	Toggler   *likes.Toggler
	Navigator *lightbox.Navigator
	Catalog   *catalog.Service
	Tracker   *reveal.Tracker
	Prefetch  *reveal.Prefetcher
	Viewer    *viewer.Viewer
	logger    *slog.Logger

	// Components
	Grid         components.Grid
	Sidebar      components.Sidebar
	LightboxView components.Lightbox
	SortModal    components.SortModal
	InputModal   components.InputModal

	// Gallery context
	Series       *domain.Series
	InputPurpose InputPurpose

	// Status
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	listChanges  chan ListChangedMsg
	observations map[string]*reveal.Observation
	endReported  bool // a load-more visibility signal has been sent
	endVisible   bool // last visibility sent
}

// NewModel creates a new application model and subscribes it to the gallery
func NewModel(svc Services) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		State:        StateBrowsing,
		Focus:        PaneGallery,
		Gallery:      svc.Gallery,
		LoadMore:     svc.LoadMore,
		Likes:        svc.Likes,
		Toggler:      svc.Toggler,
		Navigator:    svc.Navigator,
		Catalog:      svc.Catalog,
		Tracker:      svc.Tracker,
		Prefetch:     svc.Prefetch,
		Viewer:       svc.Viewer,
		logger:       logger,
		Grid:         components.NewGrid(),
		Sidebar:      components.NewSidebar(),
		LightboxView: components.NewLightbox(),
		SortModal:    components.NewSortModal(),
		InputModal:   components.NewInputModal(),
		listChanges:  make(chan ListChangedMsg, 16),
		observations: make(map[string]*reveal.Observation),
	}
	m.Grid.SetFocused(true)

	observations := m.observations
	m.Grid.SetRevealed(func(id string) bool {
		obs, ok := observations[id]
		return ok && obs.ShouldLoad()
	})

	m.Gallery.Subscribe(NewChannelObserver(m.listChanges))
	if m.Tracker != nil && m.Prefetch != nil {
		coord, prefetch := m.Gallery, m.Prefetch
		m.Tracker.OnReveal(func(id string) {
			if item, ok := coord.Item(id); ok {
				prefetch.Prefetch(item.FullURL)
			}
		})
	}
	if m.LoadMore != nil {
		m.LoadMore.Mount()
	}

	m.updateBreadcrumb()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		BootstrapCmd(m.Catalog, m.Gallery),
		WaitForListChangeCmd(m.listChanges),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, m.syncViewport()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Sidebar.SetSpinnerFrame(m.SpinnerFrame)
		if m.State == StateLightbox {
			m.syncLightbox()
		}
		return m, TickCmd(100 * time.Millisecond)

	case BootstrapMsg:
		if msg.CategoriesErr != nil {
			m.setError("loading categories", msg.CategoriesErr)
			m.Sidebar.SetCategories(nil)
		} else {
			m.Sidebar.SetCategories(msg.Categories)
		}
		if msg.Page != nil {
			return m.Update(msg.Page)
		}
		return m, nil

	case CategoriesLoadedMsg:
		m.Sidebar.SetCategories(msg.Categories)
		m.Sidebar.SetActive(m.Gallery.State().Params.CategoryID)
		m.updateBreadcrumb()
		return m, nil

	case SeriesLoadedMsg:
		m.Series = msg.Series
		m.updateBreadcrumb()
		return m, nil

	case PageLoadedMsg:
		m.refreshItems(msg.Append)
		if m.Gallery.State().Err == nil {
			m.clearStatus()
		}
		return m, m.syncViewport()

	case PageFailedMsg:
		m.refreshItems(true)
		m.setError("loading photos", msg.Err)
		return m, m.syncViewport()

	case LoadMoreSettledMsg:
		m.refreshItems(true)
		if msg.Err != nil {
			m.setError("loading more photos", msg.Err)
		}
		return m, m.syncViewport()

	case ListChangedMsg:
		m.refreshItems(msg.Change == domain.ListAppended)
		return m, tea.Batch(WaitForListChangeCmd(m.listChanges), m.syncViewport())

	case LikeSettledMsg:
		m.refreshItems(true)
		return m, nil

	case ViewerOpenedMsg:
		m.StatusMsg = fmt.Sprintf("Opened %s", msg.Item.GetTitle())
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.setError(msg.Context, msg.Err)
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		// A failed gallery fetch stays on screen until it is retried
		if m.Gallery.State().Err == nil {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

// handleKeyMsg routes a key press to the modal, lightbox or browser
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.InputModal.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			if m.InputPurpose == InputCategory {
				return m.jumpToCategory(m.InputModal.Value())
			}
			return m.browseSeries(m.InputModal.Value())
		}
		return m, cmd
	}

	if m.SortModal.IsVisible() {
		if _, sel := m.SortModal.HandleKey(msg); sel != nil {
			dir := sel.Direction
			field := sel.Field
			return m, ApplyParamsCmd(m.Gallery, domain.ParamsPatch{SortField: &field, SortDir: &dir})
		}
		return m, nil
	}

	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil
	case StateLightbox:
		return m.handleLightboxKey(msg)
	}

	// Typing into the filter bar takes every key
	if m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		return m, tea.Batch(cmd, m.syncViewport())
	}

	if m.Focus == PaneCategories {
		return m.handleSidebarKey(msg)
	}

	return m.handleGalleryKey(msg)
}

func (m Model) handleGalleryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Tab):
		m.setFocus(PaneCategories)
		return m, nil

	case key.Matches(msg, Keys.Enter):
		idx, ok := m.Grid.SelectedIndex()
		if ok && m.Navigator.Open(idx) {
			m.State = StateLightbox
			m.syncLightbox()
			return m, m.syncViewport()
		}
		return m, nil

	case key.Matches(msg, Keys.Like):
		item := m.Grid.SelectedItem()
		if item == nil {
			return m, nil
		}
		state, remote := m.Toggler.ToggleLocal(item.ID)
		return m.afterToggle(state, remote)

	case key.Matches(msg, Keys.OpenFull):
		if item := m.Grid.SelectedItem(); item != nil && m.Viewer != nil {
			return m, OpenInViewerCmd(m.Prefetch, m.Viewer, *item)
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Grid.ToggleFilter()
		return m, m.syncViewport()

	case key.Matches(msg, Keys.Sort):
		params := m.Gallery.State().Params
		m.SortModal.Show(params.SortField, params.SortDir)
		return m, nil

	case key.Matches(msg, Keys.Featured):
		var patch domain.ParamsPatch
		if m.Gallery.State().Params.Featured == nil {
			featured := true
			patch.Featured = &featured
		} else {
			patch.ClearFeatured = true
		}
		return m, ApplyParamsCmd(m.Gallery, patch)

	case key.Matches(msg, Keys.Series):
		m.InputPurpose = InputSeries
		m.InputModal.Show("Browse series", "series-slug", nil)
		return m, nil

	case key.Matches(msg, Keys.Category):
		m.InputPurpose = InputCategory
		categories := m.Sidebar.Categories()
		m.InputModal.Show("Jump to category", "name", func(query string) string {
			if cat, ok := search.BestCategory(query, categories); ok {
				return cat.Name
			}
			return ""
		})
		return m, nil

	case key.Matches(msg, Keys.LoadMore):
		return m, LoadMoreCmd(m.LoadMore)

	case key.Matches(msg, Keys.Retry):
		m.StatusMsg = "Retrying..."
		m.StatusIsErr = false
		return m, RetryCmd(m.Gallery)

	case key.Matches(msg, Keys.Refresh):
		m.StatusMsg = "Refreshing..."
		m.StatusIsErr = false
		return m, tea.Batch(RefreshCatalogCmd(m.Catalog), FetchPageCmd(m.Gallery, 1))

	case key.Matches(msg, Keys.Escape):
		if m.Grid.IsFiltering() {
			m.Grid.ClearFilter()
			return m, m.syncViewport()
		}
		if m.Gallery.State().Params.SeriesSlug != "" {
			return m.browseSeries("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Grid, cmd = m.Grid.Update(msg)
	return m, tea.Batch(cmd, m.syncViewport())
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.Tab), key.Matches(msg, Keys.Escape):
		m.setFocus(PaneGallery)
		return m, nil
	case key.Matches(msg, Keys.Enter):
		return m.selectCategory(m.Sidebar.SelectedCategoryID())
	}

	var cmd tea.Cmd
	m.Sidebar, cmd = m.Sidebar.Update(msg)
	return m, cmd
}

func (m Model) handleLightboxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Right):
		m.Navigator.Next()
	case key.Matches(msg, Keys.Left):
		m.Navigator.Previous()
	case key.Matches(msg, Keys.Down):
		m.LightboxView.ScrollDown()
	case key.Matches(msg, Keys.Up):
		m.LightboxView.ScrollUp()
	case key.Matches(msg, Keys.Like):
		state, remote, err := m.Navigator.ToggleLikeLocal()
		if err != nil {
			m.closeLightbox()
			return m, m.syncViewport()
		}
		return m.afterToggle(state, remote)
	case key.Matches(msg, Keys.OpenFull):
		if item, ok := m.Navigator.Current(); ok && m.Viewer != nil {
			return m, OpenInViewerCmd(m.Prefetch, m.Viewer, item)
		}
	case key.Matches(msg, Keys.Escape), key.Matches(msg, Keys.Enter), key.Matches(msg, Keys.Quit):
		m.closeLightbox()
		return m, m.syncViewport()
	}

	m.syncLightbox()
	return m, nil
}

// afterToggle applies the optimistic state to the view and starts the
// network half of a like, if any
func (m Model) afterToggle(state likes.ItemLikes, remote likes.RemoteCall) (tea.Model, tea.Cmd) {
	m.refreshItems(true)
	if state.Coalesced {
		m.logger.Debug("like toggle absorbed by outstanding call", "id", state.ID)
	}
	return m, LikeRemoteCmd(state.ID, remote)
}

// selectCategory filters the gallery to categoryID ("" = all) and leaves
// any series scope
func (m Model) selectCategory(categoryID string) (tea.Model, tea.Cmd) {
	m.Sidebar.SetActive(categoryID)
	m.Sidebar.SelectCategory(categoryID)
	m.Series = nil
	m.Grid.ClearFilter()
	m.setFocus(PaneGallery)
	m.updateBreadcrumb()

	noSeries := ""
	return m, ApplyParamsCmd(m.Gallery, domain.ParamsPatch{CategoryID: &categoryID, SeriesSlug: &noSeries})
}

// jumpToCategory selects the category whose name best matches query
func (m Model) jumpToCategory(query string) (tea.Model, tea.Cmd) {
	if query == "" {
		return m.selectCategory("")
	}
	cat, ok := search.BestCategory(query, m.Sidebar.Categories())
	if !ok {
		m.StatusMsg = fmt.Sprintf("No category matches %q", query)
		m.StatusIsErr = true
		return m, ClearStatusCmd(3 * time.Second)
	}
	return m.selectCategory(cat.ID)
}

// browseSeries scopes the gallery to a series ("" returns to all photos)
func (m Model) browseSeries(slug string) (tea.Model, tea.Cmd) {
	m.Series = nil
	m.Grid.ClearFilter()
	m.updateBreadcrumb()

	patch := domain.ParamsPatch{SeriesSlug: &slug}
	cmds := []tea.Cmd{ApplyParamsCmd(m.Gallery, patch)}
	if slug != "" {
		cmds = append(cmds, LoadSeriesCmd(m.Catalog, slug))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(p Pane) {
	m.Focus = p
	m.Grid.SetFocused(p == PaneGallery)
	m.Sidebar.SetFocused(p == PaneCategories)
}

func (m *Model) closeLightbox() {
	if st := m.Navigator.State(); st.IsOpen {
		m.Grid.SelectIndex(st.Index)
	}
	m.Navigator.Close()
	m.LightboxView.Clear()
	m.State = StateBrowsing
}

// refreshItems pulls the coordinator's list into the grid. Without keep the
// list was replaced: cursor and reveal state start over.
func (m *Model) refreshItems(keep bool) {
	st := m.Gallery.State()
	m.Grid.SetItems(st.Items, keep)
	if !keep {
		m.resetObservations()
	}
	m.Sidebar.SetActive(st.Params.CategoryID)
	m.updateBreadcrumb()
	if m.State == StateLightbox {
		m.syncLightbox()
	}
}

func (m *Model) resetObservations() {
	if m.Tracker != nil {
		m.Tracker.Reset()
	}
	for id := range m.observations {
		delete(m.observations, id)
	}
}

// syncLightbox mirrors the navigator into the lightbox view; a navigator
// that closed itself returns the UI to browsing
func (m *Model) syncLightbox() {
	item, ok := m.Navigator.Current()
	if !ok {
		if m.State == StateLightbox {
			m.LightboxView.Clear()
			m.State = StateBrowsing
			m.StatusMsg = "Lightbox closed: the gallery changed"
			m.StatusIsErr = false
		}
		return
	}

	st := m.Navigator.State()
	pagination, _ := m.Gallery.Progress()
	m.LightboxView.SetItem(item, st.Index, m.Gallery.Len(), pagination.HasMore)
	if m.Toggler != nil {
		m.LightboxView.SetLikePending(m.Toggler.Pending(item.ID))
	}

	if m.Prefetch == nil {
		return
	}
	path, cached := m.Prefetch.Path(item.FullURL)
	if !cached {
		m.Prefetch.Prefetch(item.FullURL)
	}
	m.LightboxView.SetAsset(path)

	// Warm the neighbours so stepping is instant
	for _, i := range []int{st.Index - 1, st.Index + 1} {
		if next, ok := m.Gallery.At(i); ok {
			m.Prefetch.Prefetch(next.FullURL)
		}
	}
}

// syncViewport re-evaluates reveal observations against the grid's visible
// rows and reports the end-of-list trigger to LoadMore
func (m *Model) syncViewport() tea.Cmd {
	offset, rows := m.Grid.Viewport()

	if m.Tracker != nil {
		vp := reveal.Viewport{Top: offset, Height: rows}
		m.Tracker.Scroll(vp)

		shown := make(map[string]bool)
		for i, id := range m.Grid.DisplayIDs() {
			shown[id] = true
			bounds := reveal.Bounds{Top: i, Height: 1}
			if obs, ok := m.observations[id]; ok {
				obs.Move(bounds)
				continue
			}
			m.observations[id] = m.Tracker.Observe(id, bounds)
		}
		// Rows a filter hides are unmounted; they observe afresh when shown again
		for id, obs := range m.observations {
			if !shown[id] {
				obs.Release()
				delete(m.observations, id)
			}
		}
		m.Tracker.Scroll(vp)
	}

	if m.LoadMore == nil {
		return nil
	}
	visible := m.State == StateBrowsing && m.Grid.AtEnd()
	if m.endReported && !visible && !m.endVisible {
		return nil
	}
	m.endReported = true
	m.endVisible = visible
	return LoadMoreVisibleCmd(m.LoadMore, visible)
}

func (m *Model) setError(context string, err error) {
	if err == nil {
		return
	}
	text := err.Error()
	if context != "" {
		text = context + ": " + text
	}
	switch {
	case errors.Is(err, domain.ErrFetchFailed):
		text += " (r to retry)"
	case errors.Is(err, domain.ErrServerUnreachable):
		text += " (server unreachable)"
	}
	m.StatusMsg = text
	m.StatusIsErr = true
}

func (m *Model) clearStatus() {
	m.StatusMsg = ""
	m.StatusIsErr = false
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	sidebarWidth := max(m.Width*SidebarPercent/100, MinSidebarWidth)
	if sidebarWidth > m.Width/2 {
		sidebarWidth = m.Width / 2
	}

	m.Sidebar.SetSize(sidebarWidth, contentHeight)
	m.Grid.SetSize(m.Width-sidebarWidth, contentHeight)
	m.LightboxView.SetSize(m.Width, contentHeight)
}
