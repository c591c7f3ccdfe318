package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/folio/internal/catalog"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/gallery"
	"github.com/mmcdole/folio/internal/likes"
	"github.com/mmcdole/folio/internal/reveal"
	"github.com/mmcdole/folio/internal/viewer"
)

// Command factories for async operations

const (
	fetchTimeout  = 60 * time.Second
	likeTimeout   = 30 * time.Second
	viewerTimeout = 2 * time.Minute
)

// pageMsg converts a coordinator result into a message. Stale responses
// produce no message.
func pageMsg(result domain.PageResult, err error, appended bool) tea.Msg {
	if errors.Is(err, domain.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		return PageFailedMsg{Err: err}
	}
	return PageLoadedMsg{Result: result, Append: appended}
}

// BootstrapMsg carries the results of the initial concurrent load
type BootstrapMsg struct {
	Categories    []domain.Category
	CategoriesErr error
	Page          tea.Msg
}

// BootstrapCmd loads categories and the first gallery page concurrently
func BootstrapCmd(cat *catalog.Service, coord *gallery.Coordinator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var msg BootstrapMsg
		var g errgroup.Group
		g.Go(func() error {
			msg.Categories, msg.CategoriesErr = cat.Categories(ctx)
			return nil
		})
		g.Go(func() error {
			result, err := coord.Fetch(ctx, 1)
			msg.Page = pageMsg(result, err, false)
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

// FetchPageCmd fetches page of the current query
func FetchPageCmd(coord *gallery.Coordinator, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := coord.Fetch(ctx, page)
		return pageMsg(result, err, page > 1)
	}
}

// ApplyParamsCmd patches the query and fetches the resulting page
func ApplyParamsCmd(coord *gallery.Coordinator, patch domain.ParamsPatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := coord.Apply(ctx, patch)
		return pageMsg(result, err, false)
	}
}

// RetryCmd re-issues the current query
func RetryCmd(coord *gallery.Coordinator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		result, err := coord.Retry(ctx)
		return pageMsg(result, err, result.Pagination.Page > 1)
	}
}

// LoadMoreVisibleCmd reports a visibility signal for the end-of-list trigger
func LoadMoreVisibleCmd(lm *gallery.LoadMore, visible bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		fired, err := lm.Visible(ctx, visible)
		if !fired {
			return nil
		}
		return loadMoreSettled(fired, err)
	}
}

// LoadMoreCmd explicitly requests the next page
func LoadMoreCmd(lm *gallery.LoadMore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		fired, err := lm.Trigger(ctx)
		return loadMoreSettled(fired, err)
	}
}

func loadMoreSettled(fired bool, err error) tea.Msg {
	if errors.Is(err, domain.ErrStaleResponse) {
		err = nil
	}
	return LoadMoreSettledMsg{Fired: fired, Err: err}
}

// LikeRemoteCmd runs the network half of a like toggle
func LikeRemoteCmd(id string, remote likes.RemoteCall) tea.Cmd {
	if remote == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), likeTimeout)
		defer cancel()

		return LikeSettledMsg{ID: id, Err: remote(ctx)}
	}
}

// LoadCategoriesCmd loads the category list
func LoadCategoriesCmd(cat *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		categories, err := cat.Categories(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading categories"}
		}
		return CategoriesLoadedMsg{Categories: categories}
	}
}

// RefreshCatalogCmd drops cached catalog data and reloads categories
func RefreshCatalogCmd(cat *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		if err := cat.Invalidate(); err != nil {
			return ErrMsg{Err: err, Context: "clearing catalog cache"}
		}
		return LoadCategoriesCmd(cat)()
	}
}

// LoadSeriesCmd loads a series header by slug
func LoadSeriesCmd(cat *catalog.Service, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		series, err := cat.Series(ctx, slug)
		if err != nil {
			return ErrMsg{Err: err, Context: fmt.Sprintf("loading series %q", slug)}
		}
		return SeriesLoadedMsg{Series: series}
	}
}

// OpenInViewerCmd caches the full asset and opens it in the external viewer.
// Falls back to the remote URL when the download fails.
func OpenInViewerCmd(p *reveal.Prefetcher, v *viewer.Viewer, item domain.MediaItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), viewerTimeout)
		defer cancel()

		target := item.FullURL
		if p != nil {
			if path, err := p.Wait(ctx, item.FullURL); err == nil {
				target = path
			}
		}
		if err := v.Open(target); err != nil {
			return ErrMsg{Err: err, Context: "opening viewer"}
		}
		return ViewerOpenedMsg{Item: item, Path: target}
	}
}

// WaitForListChangeCmd waits for the next coordinator notification
func WaitForListChangeCmd(ch <-chan ListChangedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
