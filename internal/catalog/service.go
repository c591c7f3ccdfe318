package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/store"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long cached categories and series are served without refetching
const DefaultTTL = 15 * time.Minute

const (
	categoriesKey = "categories"
	seriesPrefix  = "series:"
)

type prefixDeleter interface {
	DeletePrefix(bucket, prefix string) error
}

type cachedEntry[T any] struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Value     T         `json:"value"`
}

// Service serves categories and series, caching them in the store.
// Concurrent requests for the same resource share one network call.
type Service struct {
	client domain.GalleryClient
	store  domain.Store
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group
}

// NewService creates a catalog service. A nil store disables caching.
func NewService(client domain.GalleryClient, s domain.Store, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		client: client,
		store:  s,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Categories returns all categories
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return cachedFetch(s, categoriesKey, func() ([]domain.Category, error) {
		return s.client.FetchCategories(ctx)
	})
}

// Series returns the series with the given slug
func (s *Service) Series(ctx context.Context, slug string) (*domain.Series, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: empty series slug", domain.ErrNotFound)
	}
	return cachedFetch(s, seriesPrefix+slug, func() (*domain.Series, error) {
		return s.client.FetchSeriesBySlug(ctx, slug)
	})
}

// Invalidate drops every cached catalog entry
func (s *Service) Invalidate() error {
	if s.store == nil {
		return nil
	}
	if d, ok := s.store.(prefixDeleter); ok {
		return d.DeletePrefix(store.BucketCatalog, "")
	}
	return s.store.Delete(store.BucketCatalog, categoriesKey)
}

// cachedFetch serves key from the store while fresh, otherwise fetches once
// for all concurrent callers. A failed fetch falls back to a stale entry.
func cachedFetch[T any](s *Service, key string, fetch func() (T, error)) (T, error) {
	stale, hasStale := load[T](s, key)
	if hasStale && s.now().Sub(stale.FetchedAt) < s.ttl {
		return stale.Value, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		value, err := fetch()
		if err != nil {
			return value, err
		}
		save(s, key, cachedEntry[T]{FetchedAt: s.now(), Value: value})
		return value, nil
	})
	if shared {
		s.logger.Debug("catalog fetch shared", "key", key)
	}

	if err != nil {
		if hasStale {
			s.logger.Warn("serving stale catalog entry", "key", key, "error", err)
			return stale.Value, nil
		}
		s.logger.Error("failed to fetch catalog entry", "key", key, "error", err)
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func load[T any](s *Service, key string) (cachedEntry[T], bool) {
	var entry cachedEntry[T]
	if s.store == nil {
		return entry, false
	}
	data, ok, err := s.store.Get(store.BucketCatalog, key)
	if err != nil {
		s.logger.Warn("failed to read catalog cache", "key", key, "error", err)
		return entry, false
	}
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("discarding corrupt catalog cache", "key", key, "error", err)
		return entry, false
	}
	return entry, true
}

func save[T any](s *Service, key string, entry cachedEntry[T]) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("failed to encode catalog cache", "key", key, "error", err)
		return
	}
	if err := s.store.Put(store.BucketCatalog, key, data); err != nil {
		s.logger.Warn("failed to write catalog cache", "key", key, "error", err)
	}
}
