// Package sdk loads external playback SDKs and memoizes them for the process
// lifetime, mirroring browser script-tag semantics: a successful load is
// never torn down or repeated, a failed load is retried on the next request.
// The registry is an injected service so tests can substitute the fetcher.
package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SDK is one successfully loaded external script.
type SDK struct {
	Name     string
	URL      string
	Source   []byte
	LoadedAt time.Time
}

// Fetcher retrieves the SDK payload.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

type Registry struct {
	fetch Fetcher
	group singleflight.Group

	mu     sync.Mutex
	loaded map[string]*SDK
}

type Option func(*Registry)

func WithFetcher(f Fetcher) Option {
	return func(r *Registry) { r.fetch = f }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.fetch = HTTPFetcher(c) }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		fetch:  HTTPFetcher(nil),
		loaded: make(map[string]*SDK),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load returns the SDK named name, fetching it from url on first use.
// Concurrent first loads of the same SDK are collapsed into one fetch.
func (r *Registry) Load(ctx context.Context, name, url string) (*SDK, error) {
	r.mu.Lock()
	if s, ok := r.loaded[name]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(name, func() (any, error) {
		// Re-check: an earlier flight may have populated the cache.
		r.mu.Lock()
		if s, ok := r.loaded[name]; ok {
			r.mu.Unlock()
			return s, nil
		}
		r.mu.Unlock()

		src, err := r.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("loading %s sdk: %w", name, err)
		}
		s := &SDK{Name: name, URL: url, Source: src, LoadedAt: time.Now().UTC()}
		r.mu.Lock()
		r.loaded[name] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SDK), nil
}

// Loaded reports whether the named SDK has been fetched.
func (r *Registry) Loaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loaded[name]
	return ok
}

// HTTPFetcher returns a Fetcher backed by the given client, or the default
// client when nil.
func HTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	}
}
