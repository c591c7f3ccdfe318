package reveal

import (
	"log/slog"
	"sync"
)

// Bounds is the extent of a rendered item along the scroll axis
type Bounds struct {
	Top    int
	Height int
}

// Viewport is the visible window along the scroll axis
type Viewport struct {
	Top    int
	Height int
}

func (b Bounds) intersects(v Viewport, margin int) bool {
	if b.Height <= 0 {
		b.Height = 1
	}
	top := v.Top - margin
	bottom := v.Top + v.Height + margin
	return b.Top < bottom && b.Top+b.Height > top
}

// Tracker decides when each rendered item comes near enough to the viewport
// to start loading its full asset. The decision is sticky per observation.
type Tracker struct {
	margin   int
	onReveal func(key string)
	logger   *slog.Logger

	mu       sync.Mutex
	nextID   uint64
	active   map[uint64]*Observation
	viewport Viewport
	scrolled bool // viewport known
}

// Observation is one rendered item instance registered with a Tracker
type Observation struct {
	tracker *Tracker
	id      uint64
	key     string

	bounds   Bounds
	resolved bool
	released bool
}

// NewTracker creates a tracker that reveals items within margin of the viewport
func NewTracker(margin int, logger *slog.Logger) *Tracker {
	if margin < 0 {
		margin = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		margin: margin,
		logger: logger,
		active: make(map[uint64]*Observation),
	}
}

// OnReveal sets a callback run (outside the lock) each time an observation resolves
func (t *Tracker) OnReveal(fn func(key string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReveal = fn
}

// Observe registers an item. If the viewport is already known the item is
// evaluated immediately.
func (t *Tracker) Observe(key string, bounds Bounds) *Observation {
	t.mu.Lock()
	t.nextID++
	obs := &Observation{tracker: t, id: t.nextID, key: key, bounds: bounds}
	t.active[obs.id] = obs

	var revealed []string
	if t.scrolled && bounds.intersects(t.viewport, t.margin) {
		t.resolveLocked(obs)
		revealed = append(revealed, key)
	}
	cb := t.onReveal
	t.mu.Unlock()

	t.notify(cb, revealed)
	return obs
}

// Scroll re-evaluates every active observation against v
func (t *Tracker) Scroll(v Viewport) {
	t.mu.Lock()
	t.viewport = v
	t.scrolled = true

	var revealed []string
	for _, obs := range t.active {
		if obs.bounds.intersects(v, t.margin) {
			t.resolveLocked(obs)
			revealed = append(revealed, obs.key)
		}
	}
	cb := t.onReveal
	t.mu.Unlock()

	t.notify(cb, revealed)
}

// Active returns the number of live observations
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Reset releases every observation, e.g. when the list is replaced
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, obs := range t.active {
		obs.released = true
		delete(t.active, id)
	}
}

// resolveLocked marks obs resolved and drops it from the active set
func (t *Tracker) resolveLocked(obs *Observation) {
	obs.resolved = true
	obs.released = true
	delete(t.active, obs.id)
}

func (t *Tracker) notify(cb func(string), keys []string) {
	if len(keys) == 0 {
		return
	}
	t.logger.Debug("items revealed", "count", len(keys))
	if cb == nil {
		return
	}
	for _, key := range keys {
		cb(key)
	}
}

// Key returns the key the observation was registered with
func (o *Observation) Key() string { return o.key }

// ShouldLoad reports whether the full asset should be loaded. Once true it
// stays true.
func (o *Observation) ShouldLoad() bool {
	o.tracker.mu.Lock()
	defer o.tracker.mu.Unlock()
	return o.resolved
}

// Move updates the item's bounds after a relayout
func (o *Observation) Move(b Bounds) {
	o.tracker.mu.Lock()
	defer o.tracker.mu.Unlock()
	o.bounds = b
}

// Release detaches the observation. Safe to call more than once.
func (o *Observation) Release() {
	o.tracker.mu.Lock()
	defer o.tracker.mu.Unlock()
	if o.released {
		return
	}
	o.released = true
	delete(o.tracker.active, o.id)
}
