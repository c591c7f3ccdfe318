package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/store"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClient struct {
	categoryCalls atomic.Int32
	seriesCalls   atomic.Int32
	gate          chan struct{}
	err           error
}

func (f *fakeClient) FetchItems(context.Context, domain.QueryParams) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}

func (f *fakeClient) LikeItem(context.Context, string) error { return nil }

func (f *fakeClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	f.categoryCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Category{{ID: "1", Name: "Street"}, {ID: "2", Name: "Portraits"}}, nil
}

func (f *fakeClient) FetchSeriesBySlug(ctx context.Context, slug string) (*domain.Series, error) {
	f.seriesCalls.Add(1)
	if slug == "missing" {
		return nil, domain.ErrNotFound
	}
	return &domain.Series{Slug: slug, Title: "Series " + slug, Items: []domain.MediaItem{{ID: "a"}}}, nil
}

func newMemoryStore(t *testing.T) *store.BoltStore {
	s, err := store.Open("", "")
	require.NoError(t, err)
	return s
}

func TestCategoriesAreCached(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newMemoryStore(t), time.Minute, quietLogger())

	first, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), client.categoryCalls.Load())
}

func TestExpiredEntryIsRefetched(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newMemoryStore(t), time.Minute, quietLogger())

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Categories(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), client.categoryCalls.Load())
}

func TestStaleEntryServedOnFailure(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newMemoryStore(t), time.Minute, quietLogger())

	now := time.Now()
	svc.now = func() time.Time { return now }
	_, err := svc.Categories(context.Background())
	require.NoError(t, err)

	now = now.Add(time.Hour)
	client.err = errors.New("offline")
	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
}

func TestFailureWithoutCacheReturnsError(t *testing.T) {
	client := &fakeClient{err: domain.ErrServerUnreachable}
	svc := NewService(client, nil, time.Minute, quietLogger())

	_, err := svc.Categories(context.Background())
	require.ErrorIs(t, err, domain.ErrServerUnreachable)
}

func TestConcurrentFetchesShareOneCall(t *testing.T) {
	client := &fakeClient{gate: make(chan struct{})}
	svc := NewService(client, nil, time.Minute, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cats, err := svc.Categories(context.Background())
			require.NoError(t, err)
			require.Len(t, cats, 2)
		}()
	}

	require.Eventually(t, func() bool { return client.categoryCalls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(client.gate)
	wg.Wait()

	require.LessOrEqual(t, client.categoryCalls.Load(), int32(5))
	require.GreaterOrEqual(t, client.categoryCalls.Load(), int32(1))
}

func TestSeriesCachingAndInvalidate(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newMemoryStore(t), time.Minute, quietLogger())

	series, err := svc.Series(context.Background(), "iceland")
	require.NoError(t, err)
	require.Equal(t, "Series iceland", series.Title)

	_, err = svc.Series(context.Background(), "iceland")
	require.NoError(t, err)
	require.Equal(t, int32(1), client.seriesCalls.Load())

	require.NoError(t, svc.Invalidate())
	_, err = svc.Series(context.Background(), "iceland")
	require.NoError(t, err)
	require.Equal(t, int32(2), client.seriesCalls.Load())

	_, err = svc.Series(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Series(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
