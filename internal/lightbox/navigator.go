package lightbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/likes"
)

// ErrClosed is returned by operations that need an open lightbox
var ErrClosed = errors.New("lightbox is closed")

// State is the lightbox view state. Index points into the current list.
type State struct {
	IsOpen bool
	Index  int
}

// List is the item list the lightbox navigates
type List interface {
	Len() int
	At(i int) (domain.MediaItem, bool)
}

// Liker is the like affordance shown while open
type Liker interface {
	Toggle(ctx context.Context, id string) (likes.ItemLikes, error)
	ToggleLocal(id string) (likes.ItemLikes, likes.RemoteCall)
}

// Navigator tracks which item of the list is shown full-screen.
// Subscribe it to the list owner so it can close when the item under its
// index changes.
type Navigator struct {
	list   List
	liker  Liker
	logger *slog.Logger

	mu     sync.Mutex
	open   bool
	index  int
	itemID string // id displayed at index
}

// NewNavigator creates a closed navigator over list
func NewNavigator(list List, liker Liker, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{list: list, liker: liker, logger: logger}
}

// Open shows the item at start, clamped into the list. Opening on an empty
// list is a no-op and returns false.
func (n *Navigator) Open(start int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	length := n.list.Len()
	if length == 0 {
		return false
	}
	if start < 0 {
		start = 0
	}
	if start > length-1 {
		start = length - 1
	}
	item, ok := n.list.At(start)
	if !ok {
		return false
	}
	n.open = true
	n.index = start
	n.itemID = item.ID
	return true
}

// Next moves forward; a no-op at the last index
func (n *Navigator) Next() bool {
	return n.step(1)
}

// Previous moves back; a no-op at index 0
func (n *Navigator) Previous() bool {
	return n.step(-1)
}

func (n *Navigator) step(delta int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.open {
		return false
	}
	item, ok := n.list.At(n.index + delta)
	if !ok {
		return false
	}
	n.index += delta
	n.itemID = item.ID
	return true
}

// Close closes the lightbox from any state
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closeLocked()
}

func (n *Navigator) closeLocked() {
	n.open = false
	n.index = 0
	n.itemID = ""
}

// State returns the current view state
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return State{IsOpen: n.open, Index: n.index}
}

// Current returns the displayed item. A mismatch between the index and the
// displayed id closes the lightbox.
func (n *Navigator) Current() (domain.MediaItem, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.open {
		return domain.MediaItem{}, false
	}
	item, ok := n.list.At(n.index)
	if !ok || item.ID != n.itemID {
		n.inconsistentLocked()
		return domain.MediaItem{}, false
	}
	return item, true
}

// OnListChanged implements domain.ListObserver
func (n *Navigator) OnListChanged(change domain.ListChange, items []domain.MediaItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.open {
		return
	}
	if n.index >= len(items) || items[n.index].ID != n.itemID {
		n.inconsistentLocked("change", change.String())
	}
}

func (n *Navigator) inconsistentLocked(attrs ...any) {
	attrs = append(attrs, "index", n.index, "id", n.itemID, "error", domain.ErrStateInconsistency)
	n.logger.Debug("closing lightbox", attrs...)
	n.closeLocked()
}

// ToggleLike toggles the like of the displayed item and waits for the
// remote call.
func (n *Navigator) ToggleLike(ctx context.Context) (likes.ItemLikes, error) {
	item, ok := n.Current()
	if !ok {
		return likes.ItemLikes{}, ErrClosed
	}
	return n.liker.Toggle(ctx, item.ID)
}

// ToggleLikeLocal applies the optimistic half of a like toggle on the
// displayed item and returns the network half, if any.
func (n *Navigator) ToggleLikeLocal() (likes.ItemLikes, likes.RemoteCall, error) {
	item, ok := n.Current()
	if !ok {
		return likes.ItemLikes{}, nil, fmt.Errorf("toggle like: %w", ErrClosed)
	}
	state, remote := n.liker.ToggleLocal(item.ID)
	return state, remote, nil
}
