package likes

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/store"
)

// StorageKey is the fixed prefs key holding the liked id list
const StorageKey = "liked_images"

// Set is the durable set of item IDs liked from this profile.
// It satisfies domain.LikeSet. Storage problems never surface to callers:
// reads degrade to an empty set and writes are best-effort.
type Set struct {
	store  domain.Store
	logger *slog.Logger

	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewSet hydrates the set from s. A nil store gives a session-only set.
func NewSet(s domain.Store, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	set := &Set{
		store:  s,
		logger: logger,
		ids:    make(map[string]struct{}),
	}
	set.hydrate()
	return set
}

func (s *Set) hydrate() {
	if s.store == nil {
		return
	}

	data, ok, err := s.store.Get(store.BucketPrefs, StorageKey)
	if err != nil {
		s.logger.Warn("failed to read like set",
			"error", fmt.Errorf("%w: %v", domain.ErrStorageFailed, err))
		return
	}
	if !ok || len(data) == 0 {
		return
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("discarding corrupt like set",
			"error", fmt.Errorf("%w: %v", domain.ErrStorageFailed, err),
			"bytes", len(data))
		return
	}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	s.logger.Debug("like set hydrated", "count", len(s.ids))
}

// Has reports whether id has been liked
func (s *Set) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Add records id as liked and persists the set
func (s *Set) Add(id string) {
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[id] = struct{}{}
	s.persistLocked()
	s.mu.Unlock()
}

// Remove forgets id and persists the set
func (s *Set) Remove(id string) {
	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, id)
	s.persistLocked()
	s.mu.Unlock()
}

// IDs returns the liked ids in sorted order
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of liked ids
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Set) sortedLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// persistLocked writes the set while holding mu so writes land in order
func (s *Set) persistLocked() {
	if s.store == nil {
		return
	}
	ids := s.sortedLocked()
	data, err := json.Marshal(ids)
	if err != nil {
		s.logger.Error("failed to encode like set", "error", err)
		return
	}
	if err := s.store.Put(store.BucketPrefs, StorageKey, data); err != nil {
		s.logger.Warn("failed to persist like set",
			"error", fmt.Errorf("%w: %v", domain.ErrStorageFailed, err),
			"count", len(ids))
	}
}
