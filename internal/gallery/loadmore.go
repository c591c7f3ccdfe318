package gallery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/folio/internal/domain"
)

// Pager is the part of the coordinator LoadMore drives
type Pager interface {
	Progress() (domain.Pagination, bool)
	Fetch(ctx context.Context, page int) (domain.PageResult, error)
}

// LoadMore fetches the next page when the end-of-list trigger becomes
// visible. The first visibility signal after Mount only records the
// initial state; afterwards a fetch fires on a not-visible to visible
// transition. A transition that finds the pager busy or exhausted stays
// armed, so a later visible signal retries once the guard clears.
type LoadMore struct {
	pager  Pager
	logger *slog.Logger

	mu       sync.Mutex
	mounted  bool
	primed   bool // first signal after mount has been seen
	visible  bool
	armed    bool
	inFlight bool
}

// NewLoadMore creates an unmounted controller
func NewLoadMore(pager Pager, logger *slog.Logger) *LoadMore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadMore{pager: pager, logger: logger}
}

// Mount starts a trigger lifetime
func (l *LoadMore) Mount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = true
	l.primed = false
	l.visible = false
	l.armed = false
}

// Unmount ends the trigger lifetime; later signals are ignored
func (l *LoadMore) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = false
	l.armed = false
}

// Visible reports a visibility signal for the trigger. It returns true when
// a fetch was issued.
func (l *LoadMore) Visible(ctx context.Context, visible bool) (bool, error) {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return false, nil
	}
	if !l.primed {
		l.primed = true
		l.visible = visible
		l.mu.Unlock()
		l.logger.Debug("suppressing initial load-more signal", "visible", visible)
		return false, nil
	}
	if !visible {
		l.visible = false
		l.armed = false
		l.mu.Unlock()
		return false, nil
	}
	if !l.visible {
		l.armed = true
	}
	l.visible = true
	if !l.armed {
		l.mu.Unlock()
		return false, nil
	}
	return l.fireLocked(ctx)
}

// Trigger is an explicit load-more request with the same guards
func (l *LoadMore) Trigger(ctx context.Context) (bool, error) {
	l.mu.Lock()
	return l.fireLocked(ctx)
}

// Busy reports whether a load-more fetch is outstanding
func (l *LoadMore) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// fireLocked is entered with mu held and releases it
func (l *LoadMore) fireLocked(ctx context.Context) (bool, error) {
	if l.inFlight {
		l.mu.Unlock()
		return false, nil
	}
	pagination, loading := l.pager.Progress()
	if loading || !pagination.HasMore {
		l.mu.Unlock()
		return false, nil
	}
	l.inFlight = true
	l.armed = false
	l.mu.Unlock()

	next := pagination.Page + 1
	l.logger.Debug("loading more", "page", next)
	_, err := l.pager.Fetch(ctx, next)

	l.mu.Lock()
	l.inFlight = false
	l.mu.Unlock()

	return true, err
}
