package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/folio/internal/domain"
)

// GalleryState is a copy of the coordinator's observable state
type GalleryState struct {
	Items      []domain.MediaItem
	Loading    bool
	Err        error
	Pagination domain.Pagination
	Params     domain.QueryParams
}

// Coordinator owns the gallery item list and the query that produced it.
// Responses are applied in issuance order: a response whose sequence number
// is not the latest issued is discarded.
type Coordinator struct {
	client domain.GalleryClient
	likes  domain.LikeSet
	logger *slog.Logger

	mu         sync.Mutex
	params     domain.QueryParams
	shownKey   string // filter identity of the displayed list
	shown      bool   // a list has been displayed at least once
	items      []*domain.MediaItem
	index      map[string]int
	loading    bool
	err        error
	pagination domain.Pagination
	seq        uint64

	observers   map[int]domain.ListObserver
	nextObserve int
}

// NewCoordinator creates a coordinator with the initial query
func NewCoordinator(client domain.GalleryClient, likes domain.LikeSet, initial domain.QueryParams, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		client:    client,
		likes:     likes,
		logger:    logger,
		params:    initial.Normalize(),
		index:     make(map[string]int),
		observers: make(map[int]domain.ListObserver),
	}
}

// Subscribe registers an observer of list changes. The returned func removes it.
func (c *Coordinator) Subscribe(obs domain.ListObserver) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserve
	c.nextObserve++
	c.observers[id] = obs
	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// SetParams applies a partial update. Any change to the filter identity
// resets the page to 1; the next fetch then replaces the list.
func (c *Coordinator) SetParams(patch domain.ParamsPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := patch.Apply(c.params).Normalize()
	changed := next.FilterKey() != c.params.FilterKey()
	if changed {
		next.Page = 1
	}
	c.params = next
	return changed
}

// Apply is SetParams followed by a fetch of page 1, so the list is always
// replaced even when the patch leaves the filter identity unchanged
func (c *Coordinator) Apply(ctx context.Context, patch domain.ParamsPatch) (domain.PageResult, error) {
	c.SetParams(patch)
	return c.Fetch(ctx, 1)
}

// Retry re-issues the current params snapshot
func (c *Coordinator) Retry(ctx context.Context) (domain.PageResult, error) {
	return c.Fetch(ctx, 0)
}

// Fetch loads page (page <= 0 means the current page). Page 1 replaces the
// list; a later page of the displayed query appends to it. A later page of a
// query that is not the displayed one is normalized to page 1.
func (c *Coordinator) Fetch(ctx context.Context, page int) (domain.PageResult, error) {
	c.mu.Lock()
	snapshot := c.params
	if page > 0 {
		snapshot.Page = page
	}
	snapshot = snapshot.Normalize()
	if snapshot.Page > 1 && (!c.shown || snapshot.FilterKey() != c.shownKey) {
		c.logger.Debug("normalizing page for new filter", "requested", snapshot.Page)
		snapshot.Page = 1
	}
	c.params = snapshot
	c.seq++
	seq := c.seq
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	result, err := c.client.FetchItems(ctx, snapshot)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale gallery response", "seq", seq, "page", snapshot.Page)
		return domain.PageResult{}, domain.ErrStaleResponse
	}

	if err != nil {
		if !errors.Is(err, domain.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
		}
		c.err = err
		c.loading = false
		c.mu.Unlock()
		c.logger.Error("failed to fetch gallery page", "error", err, "page", snapshot.Page)
		return domain.PageResult{}, err
	}

	change := domain.ListReplaced
	if snapshot.Page > 1 {
		change = domain.ListAppended
		c.appendLocked(result.Items)
	} else {
		c.replaceLocked(result.Items)
	}
	c.shown = true
	c.shownKey = snapshot.FilterKey()
	c.pagination = result.Pagination
	c.loading = false

	items := c.copyItemsLocked()
	observers := c.observersLocked()
	c.mu.Unlock()

	c.logger.Debug("gallery page applied",
		"page", snapshot.Page, "change", change.String(), "count", len(items))

	for _, obs := range observers {
		obs.OnListChanged(change, items)
	}

	return result, nil
}

func (c *Coordinator) replaceLocked(fetched []domain.MediaItem) {
	c.items = make([]*domain.MediaItem, 0, len(fetched))
	c.index = make(map[string]int, len(fetched))
	c.appendLocked(fetched)
}

// appendLocked adds items in server order, skipping ids already present
func (c *Coordinator) appendLocked(fetched []domain.MediaItem) {
	for i := range fetched {
		item := fetched[i]
		if _, dup := c.index[item.ID]; dup {
			continue
		}
		if c.likes != nil {
			item.LikedByViewer = c.likes.Has(item.ID)
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, &item)
	}
}

func (c *Coordinator) copyItemsLocked() []domain.MediaItem {
	out := make([]domain.MediaItem, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

func (c *Coordinator) observersLocked() []domain.ListObserver {
	out := make([]domain.ListObserver, 0, len(c.observers))
	for i := 0; i < c.nextObserve; i++ {
		if obs, ok := c.observers[i]; ok {
			out = append(out, obs)
		}
	}
	return out
}

// State returns a copy of the current state
func (c *Coordinator) State() GalleryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GalleryState{
		Items:      c.copyItemsLocked(),
		Loading:    c.loading,
		Err:        c.err,
		Pagination: c.pagination,
		Params:     c.params,
	}
}

// Progress reports pagination and loading without copying the list
func (c *Coordinator) Progress() (domain.Pagination, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination, c.loading
}

// Len returns the number of items in the list
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// At returns a copy of the item at position i
func (c *Coordinator) At(i int) (domain.MediaItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.items) {
		return domain.MediaItem{}, false
	}
	return *c.items[i], true
}

// Item returns a copy of the item with the given id
func (c *Coordinator) Item(id string) (domain.MediaItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return domain.MediaItem{}, false
	}
	return *c.items[i], true
}

// MutateItem runs fn against the stored item. fn must not change the ID.
func (c *Coordinator) MutateItem(id string, fn func(item *domain.MediaItem)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	fn(c.items[i])
	c.items[i].ID = id
	return true
}
