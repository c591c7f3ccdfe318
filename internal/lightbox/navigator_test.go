package lightbox

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/gallery"
	"github.com/mmcdole/folio/internal/likes"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeList struct {
	mu    sync.Mutex
	items []domain.MediaItem
}

func newList(ids ...string) *fakeList {
	l := &fakeList{}
	for _, id := range ids {
		l.items = append(l.items, domain.MediaItem{ID: id})
	}
	return l
}

func (l *fakeList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *fakeList) At(i int) (domain.MediaItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return domain.MediaItem{}, false
	}
	return l.items[i], true
}

// replace swaps the list and notifies the navigator the way the
// coordinator does
func (l *fakeList) replace(n *Navigator, change domain.ListChange, ids ...string) {
	next := newList(ids...).items
	l.mu.Lock()
	l.items = next
	l.mu.Unlock()
	n.OnListChanged(change, next)
}

func TestOpenClampsStartIndex(t *testing.T) {
	n := NewNavigator(newList("a", "b", "c"), nil, quietLogger())

	require.True(t, n.Open(5))
	require.Equal(t, State{IsOpen: true, Index: 2}, n.State())

	item, ok := n.Current()
	require.True(t, ok)
	require.Equal(t, "c", item.ID)

	require.True(t, n.Open(-3))
	require.Equal(t, 0, n.State().Index)
}

func TestOpenOnEmptyListIsNoOp(t *testing.T) {
	n := NewNavigator(newList(), nil, quietLogger())
	require.False(t, n.Open(0))
	require.False(t, n.State().IsOpen)
}

func TestNextPreviousAtBoundaries(t *testing.T) {
	n := NewNavigator(newList("a", "b", "c"), nil, quietLogger())
	require.True(t, n.Open(2))

	require.False(t, n.Next())
	require.Equal(t, State{IsOpen: true, Index: 2}, n.State())

	require.True(t, n.Previous())
	require.True(t, n.Previous())
	require.False(t, n.Previous())
	require.Equal(t, State{IsOpen: true, Index: 0}, n.State())

	require.True(t, n.Next())
	item, _ := n.Current()
	require.Equal(t, "b", item.ID)
}

func TestNavigationWhileClosedIsNoOp(t *testing.T) {
	n := NewNavigator(newList("a"), nil, quietLogger())
	require.False(t, n.Next())
	require.False(t, n.Previous())
	_, ok := n.Current()
	require.False(t, ok)

	n.Close()
	require.Equal(t, State{}, n.State())
}

func TestReplacedListClosesLightbox(t *testing.T) {
	list := newList("A", "B", "C")
	n := NewNavigator(list, nil, quietLogger())
	require.True(t, n.Open(1))

	list.replace(n, domain.ListReplaced, "D", "E")
	require.False(t, n.State().IsOpen)
}

func TestReplacedListWithSameItemStaysOpen(t *testing.T) {
	list := newList("A", "B", "C")
	n := NewNavigator(list, nil, quietLogger())
	require.True(t, n.Open(1))

	list.replace(n, domain.ListReplaced, "X", "B")
	require.Equal(t, State{IsOpen: true, Index: 1}, n.State())
}

func TestShrunkListClosesLightbox(t *testing.T) {
	list := newList("A", "B", "C")
	n := NewNavigator(list, nil, quietLogger())
	require.True(t, n.Open(2))

	list.replace(n, domain.ListReplaced, "A")
	require.False(t, n.State().IsOpen)
}

func TestAppendKeepsLightboxOpen(t *testing.T) {
	list := newList("A", "B")
	n := NewNavigator(list, nil, quietLogger())
	require.True(t, n.Open(1))

	list.replace(n, domain.ListAppended, "A", "B", "C")
	require.Equal(t, State{IsOpen: true, Index: 1}, n.State())
	require.True(t, n.Next())
	item, _ := n.Current()
	require.Equal(t, "C", item.ID)
}

func TestCurrentDetectsUnnotifiedMismatch(t *testing.T) {
	list := newList("A", "B")
	n := NewNavigator(list, nil, quietLogger())
	require.True(t, n.Open(0))

	list.mu.Lock()
	list.items[0].ID = "Z"
	list.mu.Unlock()

	_, ok := n.Current()
	require.False(t, ok)
	require.False(t, n.State().IsOpen)
}

type nopClient struct{}

func (nopClient) FetchItems(context.Context, domain.QueryParams) (domain.PageResult, error) {
	return domain.PageResult{
		Items:      []domain.MediaItem{{ID: "A", LikeCount: 2}, {ID: "B"}, {ID: "C"}},
		Pagination: domain.Pagination{Page: 1, TotalPages: 1},
	}, nil
}
func (nopClient) LikeItem(context.Context, string) error                     { return nil }
func (nopClient) FetchCategories(context.Context) ([]domain.Category, error) { return nil, nil }
func (nopClient) FetchSeriesBySlug(context.Context, string) (*domain.Series, error) {
	return nil, domain.ErrNotFound
}

func TestToggleLikeDelegatesToToggler(t *testing.T) {
	set := likes.NewSet(nil, quietLogger())
	coord := gallery.NewCoordinator(nopClient{}, set, domain.QueryParams{}, quietLogger())
	toggler := likes.NewToggler(nopClient{}, coord, set, quietLogger())
	n := NewNavigator(coord, toggler, quietLogger())
	coord.Subscribe(n)

	_, err := n.ToggleLike(context.Background())
	require.ErrorIs(t, err, ErrClosed)

	_, err = coord.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, n.Open(0))

	state, err := n.ToggleLike(context.Background())
	require.NoError(t, err)
	require.True(t, state.Liked)
	require.Equal(t, 3, state.LikeCount)

	item, ok := n.Current()
	require.True(t, ok)
	require.True(t, item.LikedByViewer)
	require.True(t, set.Has("A"))

	_, err = coord.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, n.State().IsOpen, "same item at index after reload")
}
