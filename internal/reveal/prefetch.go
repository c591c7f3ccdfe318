package reveal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
)

var errPrefetcherClosed = errors.New("prefetcher closed")

// Prefetcher downloads full-resolution assets into a disk cache on a bounded
// worker pool. Requests for a URL that is cached or already queued are
// coalesced.
type Prefetcher struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	pool   pond.Pool

	mu      sync.Mutex
	pending map[string]chan struct{}
	failed  map[string]error
	closed  bool
}

// NewPrefetcher creates a prefetcher writing into dir. An empty dir uses a
// fresh temporary directory.
func NewPrefetcher(dir string, workers int, httpClient *http.Client, logger *slog.Logger) (*Prefetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if workers < 1 {
		workers = 1
	}

	if dir == "" {
		tmp, err := os.MkdirTemp("", "folio-cache-")
		if err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Prefetcher{
		dir:        dir,
		httpClient: httpClient,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		pool:       pond.NewPool(workers, pond.WithContext(ctx)),
		pending:    make(map[string]chan struct{}),
		failed:     make(map[string]error),
	}, nil
}

// Dir returns the cache directory
func (p *Prefetcher) Dir() string { return p.dir }

// Prefetch queues a download of assetURL. It returns false when the asset
// is already cached or queued.
func (p *Prefetcher) Prefetch(assetURL string) bool {
	if assetURL == "" {
		return false
	}
	if _, ok := p.Path(assetURL); ok {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	if _, ok := p.pending[assetURL]; ok {
		return false
	}
	done := make(chan struct{})
	p.pending[assetURL] = done
	delete(p.failed, assetURL)

	// Submitting under mu keeps Close from stopping the pool in between
	p.pool.Submit(func() {
		err := p.download(assetURL)

		p.mu.Lock()
		if p.pending[assetURL] == done {
			delete(p.pending, assetURL)
			if err != nil {
				p.failed[assetURL] = err
			}
			close(done)
		}
		p.mu.Unlock()

		if err != nil && p.ctx.Err() == nil {
			p.logger.Warn("failed to prefetch asset", "url", assetURL, "error", err)
		}
	})
	return true
}

// Wait blocks until assetURL is cached, queueing it if needed
func (p *Prefetcher) Wait(ctx context.Context, assetURL string) (string, error) {
	if cached, ok := p.Path(assetURL); ok {
		return cached, nil
	}
	p.Prefetch(assetURL)

	p.mu.Lock()
	done, ok := p.pending[assetURL]
	p.mu.Unlock()
	if ok {
		select {
		case <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if cached, ok := p.Path(assetURL); ok {
		return cached, nil
	}
	p.mu.Lock()
	err := p.failed[assetURL]
	p.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("asset not cached: %s", assetURL)
	}
	return "", err
}

// Path returns the cached file for assetURL, if present
func (p *Prefetcher) Path(assetURL string) (string, bool) {
	target := p.cachePath(assetURL)
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		return target, true
	}
	return "", false
}

// Pending returns the number of queued or running downloads
func (p *Prefetcher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close stops accepting work, aborts running downloads and drops queued
// ones. Callers blocked in Wait are released with errPrefetcherClosed.
func (p *Prefetcher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancel()
	for assetURL, done := range p.pending {
		delete(p.pending, assetURL)
		p.failed[assetURL] = errPrefetcherClosed
		close(done)
	}
	p.mu.Unlock()

	_ = p.pool.Stop().Wait()
}

func (p *Prefetcher) cachePath(assetURL string) string {
	sum := sha256.Sum256([]byte(assetURL))
	name := hex.EncodeToString(sum[:12])

	ext := ".jpg"
	if u, err := url.Parse(assetURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return filepath.Join(p.dir, name+ext)
}

func (p *Prefetcher) download(assetURL string) error {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "folio/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	target := p.cachePath(assetURL)
	tmp, err := os.CreateTemp(p.dir, ".partial-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	p.logger.Debug("asset cached", "url", assetURL, "path", target)
	return nil
}
