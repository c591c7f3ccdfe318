package likes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/folio/internal/domain"
)

// ItemLikes is the per-item like state after a toggle
type ItemLikes struct {
	ID        string
	Liked     bool
	LikeCount int
	InList    bool // false when the item is not part of the current gallery list
	Coalesced bool // true when the toggle was absorbed by an outstanding like call
}

// RemoteCall is the network half of a like toggle. The error it returns is
// already logged; callers must not roll back local state on failure.
type RemoteCall func(ctx context.Context) error

// Toggler applies optimistic like/unlike to the gallery list and like set
type Toggler struct {
	client domain.GalleryClient
	items  domain.ItemMutator
	set    domain.LikeSet
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool // item id -> like call outstanding
}

// NewToggler creates a toggler. items may be nil when no list is shown.
func NewToggler(client domain.GalleryClient, items domain.ItemMutator, set domain.LikeSet, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggler{
		client:   client,
		items:    items,
		set:      set,
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

// Toggle flips the like state of id and, on a like, waits for the remote call.
// Remote failures are logged and swallowed.
func (t *Toggler) Toggle(ctx context.Context, id string) (ItemLikes, error) {
	state, remote, err := t.toggle(id)
	if err != nil {
		return state, err
	}
	if remote != nil {
		_ = remote(ctx)
	}
	return state, nil
}

// ToggleLocal applies only the optimistic half. The returned RemoteCall is
// nil when no network call is needed (unlike, or coalesced toggle).
func (t *Toggler) ToggleLocal(id string) (ItemLikes, RemoteCall) {
	state, remote, _ := t.toggle(id)
	return state, remote
}

// Pending reports whether a like call for id is outstanding
func (t *Toggler) Pending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight[id]
}

func (t *Toggler) toggle(id string) (ItemLikes, RemoteCall, error) {
	if id == "" {
		return ItemLikes{}, nil, fmt.Errorf("%w: empty item id", domain.ErrNotFound)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inFlight[id] {
		t.logger.Debug("like toggle coalesced", "id", id)
		state := t.current(id)
		state.Coalesced = true
		return state, nil, nil
	}

	liked := !t.set.Has(id)
	state := ItemLikes{ID: id, Liked: liked}

	if t.items != nil {
		state.InList = t.items.MutateItem(id, func(item *domain.MediaItem) {
			item.LikedByViewer = liked
			if liked {
				item.LikeCount++
			} else if item.LikeCount > 0 {
				item.LikeCount--
			}
			state.LikeCount = item.LikeCount
		})
	}

	if liked {
		t.set.Add(id)
	} else {
		t.set.Remove(id)
	}

	if !liked {
		return state, nil, nil
	}

	t.inFlight[id] = true
	return state, t.remote(id), nil
}

// current reports the state without changing it; caller holds mu
func (t *Toggler) current(id string) ItemLikes {
	state := ItemLikes{ID: id, Liked: t.set.Has(id)}
	if t.items != nil {
		state.InList = t.items.MutateItem(id, func(item *domain.MediaItem) {
			state.LikeCount = item.LikeCount
		})
	}
	return state
}

func (t *Toggler) remote(id string) RemoteCall {
	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			err = t.client.LikeItem(ctx, id)

			t.mu.Lock()
			delete(t.inFlight, id)
			t.mu.Unlock()

			if err != nil {
				err = fmt.Errorf("%w: %v", domain.ErrMutationFailed, err)
				level := slog.LevelWarn
				if errors.Is(ctx.Err(), context.Canceled) {
					level = slog.LevelDebug
				}
				t.logger.Log(ctx, level, "failed to like item", "id", id, "error", err)
			}
		})
		return err
	}
}
