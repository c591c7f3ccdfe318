package tui

import "github.com/mmcdole/folio/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg signals that a gallery fetch settled successfully.
// Append is true for load-more pages.
type PageLoadedMsg struct {
	Result domain.PageResult
	Append bool
}

// PageFailedMsg signals that a gallery fetch failed. Stale responses are
// dropped before they reach the UI.
type PageFailedMsg struct {
	Err error
}

// LoadMoreSettledMsg signals the end of a load-more attempt.
// Fired is false when the guards refused the request.
type LoadMoreSettledMsg struct {
	Fired bool
	Err   error
}

// ListChangedMsg carries a list notification from the gallery coordinator
type ListChangedMsg struct {
	Change domain.ListChange
	Count  int
}

// LikeSettledMsg signals that the network half of a like finished
type LikeSettledMsg struct {
	ID  string
	Err error
}

// CategoriesLoadedMsg signals that categories have been loaded
type CategoriesLoadedMsg struct {
	Categories []domain.Category
}

// SeriesLoadedMsg signals that a series header has been loaded
type SeriesLoadedMsg struct {
	Series *domain.Series
}

// ViewerOpenedMsg signals that the external viewer was launched
type ViewerOpenedMsg struct {
	Item domain.MediaItem
	Path string
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
