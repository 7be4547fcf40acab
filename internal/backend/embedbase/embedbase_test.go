package embedbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"playerd/internal/element"
)

func TestLookup(t *testing.T) {
	var gotURL, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Big Buck Bunny","width":1280,"height":720,"duration":596.5}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/oembed", srv.Client())
	meta, err := c.Lookup(context.Background(), "https://vimeo.com/123456")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotURL != "https://vimeo.com/123456" || gotFormat != "json" {
		t.Fatalf("query url=%q format=%q", gotURL, gotFormat)
	}
	if meta.Title != "Big Buck Bunny" || meta.Width != 1280 || meta.Duration != 596.5 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestLookupRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, srv.Client())
	if _, err := c.Lookup(context.Background(), "https://vimeo.com/0"); err == nil {
		t.Fatal("Lookup succeeded for rejected embed")
	}
}

func TestBindCoarseBuffer(t *testing.T) {
	el := element.New()
	t.Cleanup(el.Destroy)
	el.Load("https://www.youtube.com/watch?v=abc")
	el.SetDuration(100)
	el.AdvanceTo(element.HaveEnoughData)

	detach := BindCoarseBuffer(el, 10)

	el.Seek(50)
	if buf := el.Buffered(); buf.End() != 60 {
		t.Fatalf("buffered end = %v, want 60", buf.End())
	}

	// Lookahead clamps to the duration near the end.
	el.Seek(95)
	if buf := el.Buffered(); buf.End() != 100 {
		t.Fatalf("buffered end = %v, want 100", buf.End())
	}

	detach()
	el.Seek(10)
	if buf := el.Buffered(); buf.End() != 100 {
		t.Fatalf("buffered end changed after detach: %v", buf.End())
	}
}
