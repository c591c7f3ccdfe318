package domain

// ListChange describes how the current item list changed
type ListChange int

const (
	// ListReplaced means the whole list was swapped (filter change, page 1 reload)
	ListReplaced ListChange = iota
	// ListAppended means items were added after the existing ones
	ListAppended
)

// String returns a human-readable representation of the change
func (c ListChange) String() string {
	switch c {
	case ListReplaced:
		return "replaced"
	case ListAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// ListObserver receives the new list after every change.
// Called outside the owner's lock; items is a copy.
type ListObserver interface {
	OnListChanged(change ListChange, items []MediaItem)
}

// ListObserverFunc adapts a function to ListObserver
type ListObserverFunc func(change ListChange, items []MediaItem)

// OnListChanged calls f
func (f ListObserverFunc) OnListChanged(change ListChange, items []MediaItem) { f(change, items) }

// NoOpObserver discards list changes (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnListChanged(ListChange, []MediaItem) {}
