package tui

import "github.com/mmcdole/folio/internal/domain"

// ChannelObserver adapts domain.ListObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- ListChangedMsg
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- ListChangedMsg) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnListChanged sends the change to the channel (non-blocking if full).
func (o *ChannelObserver) OnListChanged(change domain.ListChange, items []domain.MediaItem) {
	select {
	case o.ch <- ListChangedMsg{Change: change, Count: len(items)}:
	default: // Non-blocking if channel full
	}
}
