package sdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLoadMemoizes(t *testing.T) {
	var fetches int32
	r := NewRegistry(WithFetcher(func(ctx context.Context, url string) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		return []byte("sdk-source"), nil
	}))

	for i := 0; i < 3; i++ {
		s, err := r.Load(context.Background(), "youtube", "https://example.com/iframe_api")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if string(s.Source) != "sdk-source" {
			t.Fatalf("unexpected source %q", s.Source)
		}
	}

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}
	if !r.Loaded("youtube") {
		t.Fatal("expected youtube marked loaded")
	}
}

func TestFailedLoadIsRetried(t *testing.T) {
	var fetches int32
	fail := errors.New("network down")
	r := NewRegistry(WithFetcher(func(ctx context.Context, url string) ([]byte, error) {
		if atomic.AddInt32(&fetches, 1) == 1 {
			return nil, fail
		}
		return []byte("ok"), nil
	}))

	if _, err := r.Load(context.Background(), "vimeo", "u"); !errors.Is(err, fail) {
		t.Fatalf("expected first load to fail, got %v", err)
	}
	if r.Loaded("vimeo") {
		t.Fatal("failed load must not be cached")
	}

	if _, err := r.Load(context.Background(), "vimeo", "u"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Fatalf("expected 2 fetches, got %d", n)
	}
}

func TestConcurrentFirstLoadsCollapse(t *testing.T) {
	var fetches int32
	release := make(chan struct{})
	r := NewRegistry(WithFetcher(func(ctx context.Context, url string) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return []byte("ok"), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Load(context.Background(), "dash", "u"); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected collapsed single fetch, got %d", n)
	}
}
