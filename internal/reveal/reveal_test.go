package reveal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTrackerRevealsWithinMargin(t *testing.T) {
	tr := NewTracker(2, quietLogger())

	near := tr.Observe("near", Bounds{Top: 11, Height: 1})
	far := tr.Observe("far", Bounds{Top: 40, Height: 1})
	require.False(t, near.ShouldLoad(), "nothing is revealed before the viewport is known")
	require.Equal(t, 2, tr.Active())

	tr.Scroll(Viewport{Top: 0, Height: 10})
	require.True(t, near.ShouldLoad())
	require.False(t, far.ShouldLoad())
	require.Equal(t, 1, tr.Active(), "resolved observations are released")
}

func TestTrackerRevealIsSticky(t *testing.T) {
	tr := NewTracker(0, quietLogger())
	obs := tr.Observe("a", Bounds{Top: 5, Height: 2})

	tr.Scroll(Viewport{Top: 0, Height: 10})
	require.True(t, obs.ShouldLoad())

	tr.Scroll(Viewport{Top: 100, Height: 10})
	tr.Scroll(Viewport{Top: 0, Height: 10})
	require.True(t, obs.ShouldLoad())
}

func TestTrackerItemsResolveIndependently(t *testing.T) {
	var mu sync.Mutex
	var revealed []string

	tr := NewTracker(0, quietLogger())
	tr.OnReveal(func(key string) {
		mu.Lock()
		revealed = append(revealed, key)
		mu.Unlock()
	})

	a := tr.Observe("a", Bounds{Top: 0, Height: 5})
	b := tr.Observe("b", Bounds{Top: 20, Height: 5})

	tr.Scroll(Viewport{Top: 18, Height: 5})
	require.False(t, a.ShouldLoad())
	require.True(t, b.ShouldLoad())

	tr.Scroll(Viewport{Top: 0, Height: 5})
	require.True(t, a.ShouldLoad())

	tr.Scroll(Viewport{Top: 0, Height: 50})

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"b", "a"}, revealed)
}

func TestTrackerObserveAfterScrollEvaluatesImmediately(t *testing.T) {
	tr := NewTracker(0, quietLogger())
	tr.Scroll(Viewport{Top: 0, Height: 10})

	obs := tr.Observe("a", Bounds{Top: 3, Height: 1})
	require.True(t, obs.ShouldLoad())
	require.Equal(t, 0, tr.Active())
}

func TestObservationReleaseIsIdempotent(t *testing.T) {
	tr := NewTracker(0, quietLogger())
	obs := tr.Observe("a", Bounds{Top: 50, Height: 1})
	other := tr.Observe("b", Bounds{Top: 60, Height: 1})
	require.Equal(t, 2, tr.Active())

	obs.Release()
	obs.Release()
	require.Equal(t, 1, tr.Active())

	tr.Scroll(Viewport{Top: 45, Height: 10})
	require.False(t, obs.ShouldLoad(), "released observations are not evaluated")

	tr.Reset()
	require.Equal(t, 0, tr.Active())
	other.Release()
}

func TestObservationMove(t *testing.T) {
	tr := NewTracker(0, quietLogger())
	obs := tr.Observe("a", Bounds{Top: 50, Height: 1})
	obs.Move(Bounds{Top: 2, Height: 1})

	tr.Scroll(Viewport{Top: 0, Height: 5})
	require.True(t, obs.ShouldLoad())
	require.Equal(t, "a", obs.Key())
}

func TestPrefetcherCoalescesAndCaches(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	p, err := NewPrefetcher(t.TempDir(), 2, srv.Client(), quietLogger())
	require.NoError(t, err)
	defer p.Close()

	assetURL := srv.URL + "/full/a.JPG"
	require.True(t, p.Prefetch(assetURL))
	require.False(t, p.Prefetch(assetURL), "queued requests are coalesced")
	require.Equal(t, 1, p.Pending())

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cached, err := p.Wait(ctx, assetURL)
	require.NoError(t, err)
	require.FileExists(t, cached)
	require.Equal(t, ".jpg", cached[len(cached)-4:])

	data, err := os.ReadFile(cached)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))

	require.False(t, p.Prefetch(assetURL), "cached assets are not fetched again")
	require.Equal(t, int32(1), hits.Load())
}

func TestPrefetcherReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewPrefetcher("", 1, srv.Client(), quietLogger())
	require.NoError(t, err)
	defer os.RemoveAll(p.Dir())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = p.Wait(ctx, srv.URL+"/missing.png")
	require.ErrorContains(t, err, "unexpected status code: 404")

	_, ok := p.Path(srv.URL + "/missing.png")
	require.False(t, ok)
}

func TestPrefetcherRejectsAfterClose(t *testing.T) {
	p, err := NewPrefetcher(t.TempDir(), 1, nil, quietLogger())
	require.NoError(t, err)
	p.Close()

	require.False(t, p.Prefetch("http://example.invalid/a.jpg"))
	require.False(t, p.Prefetch(""))
}

func TestPrefetcherCloseAbortsQueuedDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(300 * time.Millisecond):
			_, _ = w.Write([]byte("jpeg-bytes"))
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	p, err := NewPrefetcher(t.TempDir(), 1, srv.Client(), quietLogger())
	require.NoError(t, err)

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = srv.URL + "/full/" + string(rune('a'+i)) + ".jpg"
		require.True(t, p.Prefetch(urls[i]))
	}
	require.Equal(t, 8, p.Pending())

	waitErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := p.Wait(ctx, urls[7])
		waitErr <- err
	}()

	start := time.Now()
	p.Close()
	require.Less(t, time.Since(start), time.Second, "Close does not drain the queue")
	require.Zero(t, p.Pending())

	select {
	case err := <-waitErr:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait still blocked after Close")
	}

	require.Less(t, hits.Load(), int32(8))
	require.False(t, p.Prefetch(urls[0]))
}

func TestPrefetcherConcurrentPrefetchAndClose(t *testing.T) {
	p, err := NewPrefetcher(t.TempDir(), 2, nil, quietLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Prefetch("http://127.0.0.1:1/" + string(rune('a'+i)) + ".jpg")
		}(i)
	}
	p.Close()
	wg.Wait()

	require.Zero(t, p.Pending(), "no entry outlives Close")
}
