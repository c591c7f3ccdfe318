package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient serves pages keyed by category. A category listed in block
// waits on its channel before answering.
type fakeClient struct {
	mu      sync.Mutex
	calls   []domain.QueryParams
	pages   map[string][][]domain.MediaItem
	block   map[string]chan struct{}
	started chan domain.QueryParams
	fail    int // number of upcoming calls that fail
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:   make(map[string][][]domain.MediaItem),
		block:   make(map[string]chan struct{}),
		started: make(chan domain.QueryParams, 16),
	}
}

func (f *fakeClient) FetchItems(ctx context.Context, p domain.QueryParams) (domain.PageResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	gate := f.block[p.CategoryID]
	failing := f.fail > 0
	if failing {
		f.fail--
	}
	pages := f.pages[p.CategoryID]
	f.mu.Unlock()

	f.started <- p
	if gate != nil {
		<-gate
	}
	if failing {
		return domain.PageResult{}, errors.New("connection reset")
	}

	var items []domain.MediaItem
	if p.Page-1 < len(pages) {
		items = pages[p.Page-1]
	}
	return domain.PageResult{
		Items: items,
		Pagination: domain.Pagination{
			Page:       p.Page,
			TotalPages: len(pages),
			HasMore:    p.Page < len(pages),
		},
	}, nil
}

func (f *fakeClient) LikeItem(context.Context, string) error                   { return nil }
func (f *fakeClient) FetchCategories(context.Context) ([]domain.Category, error) { return nil, nil }
func (f *fakeClient) FetchSeriesBySlug(context.Context, string) (*domain.Series, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type likeSet map[string]bool

func (s likeSet) Has(id string) bool { return s[id] }
func (s likeSet) Add(id string)      { s[id] = true }
func (s likeSet) Remove(id string)   { delete(s, id) }

func items(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MediaItem{ID: id, Title: "photo " + id}
	}
	return out
}

func ids(list []domain.MediaItem) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestCoordinatorSlowFirstFetchDoesNotClobberSecond(t *testing.T) {
	client := newFakeClient()
	client.pages["old"] = [][]domain.MediaItem{items("o1", "o2")}
	client.pages["new"] = [][]domain.MediaItem{items("n1")}
	client.block["old"] = make(chan struct{})

	c := NewCoordinator(client, nil, domain.QueryParams{CategoryID: "old"}, quietLogger())

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), 1)
		firstErr <- err
	}()
	<-client.started

	require.True(t, c.SetParams(domain.ParamsPatch{CategoryID: strPtr("new")}))
	_, err := c.Fetch(context.Background(), 0)
	require.NoError(t, err)
	<-client.started

	close(client.block["old"])
	require.ErrorIs(t, <-firstErr, domain.ErrStaleResponse)

	state := c.State()
	require.Equal(t, []string{"n1"}, ids(state.Items))
	require.Equal(t, "new", state.Params.CategoryID)
	require.False(t, state.Loading)
	require.NoError(t, state.Err)
}

func TestCoordinatorFailureThenRetry(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a", "b")}
	client.fail = 1

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())

	_, err := c.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrFetchFailed)

	state := c.State()
	require.Empty(t, state.Items)
	require.ErrorIs(t, state.Err, domain.ErrFetchFailed)
	require.False(t, state.Loading)

	_, err = c.Retry(context.Background())
	require.NoError(t, err)

	state = c.State()
	require.Equal(t, []string{"a", "b"}, ids(state.Items))
	require.NoError(t, state.Err)

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.calls, 2)
	require.Equal(t, client.calls[0], client.calls[1])
}

func TestCoordinatorFailureRetainsItems(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a"), items("b")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	client.fail = 1
	_, err = c.Fetch(context.Background(), 2)
	require.Error(t, err)

	state := c.State()
	require.Equal(t, []string{"a"}, ids(state.Items))
	require.Error(t, state.Err)
	require.Equal(t, 2, state.Params.Page)
}

func TestCoordinatorAppendsLaterPages(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a", "b"), items("b", "c")}

	var changes []domain.ListChange
	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	c.Subscribe(domain.ListObserverFunc(func(change domain.ListChange, _ []domain.MediaItem) {
		changes = append(changes, change)
	}))

	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), 2)
	require.NoError(t, err)

	state := c.State()
	require.Equal(t, []string{"a", "b", "c"}, ids(state.Items))
	require.False(t, state.Pagination.HasMore)
	require.Equal(t, []domain.ListChange{domain.ListReplaced, domain.ListAppended}, changes)
}

func TestCoordinatorNormalizesLaterPageOfNewFilter(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a"), items("b")}
	client.pages["travel"] = [][]domain.MediaItem{items("t1"), items("t2")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	c.SetParams(domain.ParamsPatch{CategoryID: strPtr("travel")})
	_, err = c.Fetch(context.Background(), 2)
	require.NoError(t, err)

	state := c.State()
	require.Equal(t, []string{"t1"}, ids(state.Items))
	require.Equal(t, 1, state.Params.Page)
}

func TestCoordinatorApplySameFilterReloadsFirstPage(t *testing.T) {
	client := newFakeClient()
	client.pages["a"] = [][]domain.MediaItem{items("1", "2"), items("3", "4"), items("5")}

	var changes []domain.ListChange
	c := NewCoordinator(client, nil, domain.QueryParams{CategoryID: "a"}, quietLogger())
	c.Subscribe(domain.ListObserverFunc(func(change domain.ListChange, _ []domain.MediaItem) {
		changes = append(changes, change)
	}))

	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), 2)
	require.NoError(t, err)

	result, err := c.Apply(context.Background(), domain.ParamsPatch{CategoryID: strPtr("a")})
	require.NoError(t, err)
	require.Equal(t, 1, result.Pagination.Page)

	state := c.State()
	require.Equal(t, []string{"1", "2"}, ids(state.Items))
	require.Equal(t, 1, state.Params.Page)
	require.True(t, state.Pagination.HasMore)
	require.Equal(t, domain.ListReplaced, changes[len(changes)-1])

	client.mu.Lock()
	last := client.calls[len(client.calls)-1]
	client.mu.Unlock()
	require.Equal(t, 1, last.Page)
}

func TestCoordinatorSetParamsResetsPage(t *testing.T) {
	c := NewCoordinator(newFakeClient(), nil, domain.QueryParams{}, quietLogger())

	page := 3
	require.False(t, c.SetParams(domain.ParamsPatch{Page: &page}))
	require.Equal(t, 3, c.State().Params.Page)

	dir := domain.SortAsc
	require.True(t, c.SetParams(domain.ParamsPatch{SortDir: &dir}))
	require.Equal(t, 1, c.State().Params.Page)
}

func TestCoordinatorDerivesLikedFromSet(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a", "b")}
	likes := likeSet{"b": true}

	c := NewCoordinator(client, likes, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	a, ok := c.Item("a")
	require.True(t, ok)
	require.False(t, a.LikedByViewer)
	b, _ := c.Item("b")
	require.True(t, b.LikedByViewer)
}

func TestCoordinatorMutateItemKeepsOrder(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a", "b", "c")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	require.True(t, c.MutateItem("b", func(item *domain.MediaItem) {
		item.LikeCount = 7
		item.ID = "hijacked"
	}))
	require.False(t, c.MutateItem("zzz", func(*domain.MediaItem) {}))

	state := c.State()
	require.Equal(t, []string{"a", "b", "c"}, ids(state.Items))
	require.Equal(t, 7, state.Items[1].LikeCount)

	at, ok := c.At(1)
	require.True(t, ok)
	require.Equal(t, "b", at.ID)
	_, ok = c.At(3)
	require.False(t, ok)
}

func TestLoadMoreDoubleTriggerFetchesOnce(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a"), items("b"), items("c")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)
	<-client.started

	gate := make(chan struct{})
	client.mu.Lock()
	client.block[""] = gate
	client.mu.Unlock()

	lm := NewLoadMore(c, quietLogger())
	lm.Mount()

	fired := make(chan bool, 1)
	go func() {
		ok, _ := lm.Trigger(context.Background())
		fired <- ok
	}()
	p := <-client.started
	require.Equal(t, 2, p.Page)

	again, err := lm.Trigger(context.Background())
	require.NoError(t, err)
	require.False(t, again)
	require.True(t, lm.Busy())

	close(gate)
	require.True(t, <-fired)
	require.Equal(t, 2, client.callCount())
	require.Equal(t, []string{"a", "b"}, ids(c.State().Items))
}

func TestLoadMoreSuppressesFirstSignalAfterMount(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a"), items("b")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	lm := NewLoadMore(c, quietLogger())
	lm.Mount()

	fired, err := lm.Visible(context.Background(), true)
	require.NoError(t, err)
	require.False(t, fired, "initial signal is suppressed")

	fired, _ = lm.Visible(context.Background(), true)
	require.False(t, fired, "no transition while still visible")

	fired, _ = lm.Visible(context.Background(), false)
	require.False(t, fired)

	fired, err = lm.Visible(context.Background(), true)
	require.NoError(t, err)
	require.True(t, fired)
	require.Equal(t, []string{"a", "b"}, ids(c.State().Items))

	fired, _ = lm.Visible(context.Background(), true)
	require.False(t, fired, "one fetch per transition")
}

func TestLoadMoreStopsWithoutMoreAndResumesAfterReset(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a")}
	client.pages["more"] = [][]domain.MediaItem{items("m1"), items("m2")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	lm := NewLoadMore(c, quietLogger())
	lm.Mount()
	lm.Visible(context.Background(), false)

	fired, _ := lm.Visible(context.Background(), true)
	require.False(t, fired, "no more pages")

	_, err = c.Apply(context.Background(), domain.ParamsPatch{CategoryID: strPtr("more")})
	require.NoError(t, err)

	fired, err = lm.Visible(context.Background(), true)
	require.NoError(t, err)
	require.True(t, fired, "armed transition retries once more pages exist")
	require.Equal(t, []string{"m1", "m2"}, ids(c.State().Items))
}

func TestLoadMoreIgnoresSignalsWhenUnmounted(t *testing.T) {
	client := newFakeClient()
	client.pages[""] = [][]domain.MediaItem{items("a"), items("b")}

	c := NewCoordinator(client, nil, domain.QueryParams{}, quietLogger())
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	lm := NewLoadMore(c, quietLogger())
	for _, v := range []bool{false, true, false, true} {
		fired, err := lm.Visible(context.Background(), v)
		require.NoError(t, err)
		require.False(t, fired)
	}
	require.Equal(t, 1, client.callCount())
	require.Equal(t, fmt.Sprint([]string{"a"}), fmt.Sprint(ids(c.State().Items)))
}
