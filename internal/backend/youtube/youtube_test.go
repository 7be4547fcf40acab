package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"playerd/internal/backend"
	"playerd/internal/element"
	"playerd/internal/events"
	"playerd/internal/model"
	"playerd/internal/sdk"
)

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://vimeo.com/123456", ""},
		{"https://example.com/clip.mp4", ""},
	}
	for _, c := range cases {
		if got := VideoID(c.url); got != c.want {
			t.Errorf("VideoID(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestLoaderCanPlay(t *testing.T) {
	l := NewLoader()
	if !l.CanPlay(model.NewSource("https://youtu.be/dQw4w9WgXcQ")) {
		t.Fatal("short link rejected")
	}
	if !l.CanPlay(model.Source{Src: "x", Provider: model.ProviderTypeYouTube}) {
		t.Fatal("provider hint rejected")
	}
	if l.CanPlay(model.NewSource("https://cdn.example.com/clip.mp4")) {
		t.Fatal("progressive url accepted")
	}
}

func testLoader(srv *httptest.Server) *Loader {
	return &Loader{
		SDKURL:    srv.URL + "/iframe_api",
		OEmbedURL: srv.URL + "/oembed",
	}
}

func serveEmbed(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	var sdkHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/iframe_api", func(w http.ResponseWriter, r *http.Request) {
		sdkHits++
		w.Write([]byte("var YT = {};"))
	})
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Some Video","width":1280,"height":720}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &sdkHits
}

func TestSetupLoadsSDK(t *testing.T) {
	srv, sdkHits := serveEmbed(t)
	reg := sdk.NewRegistry(sdk.WithHTTPClient(srv.Client()))
	l := testLoader(srv)

	b := l.New(backend.Options{SDK: reg, HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b.Destroy)

	if err := b.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !b.Ready() {
		t.Fatal("backend not ready after setup")
	}
	if *sdkHits != 1 {
		t.Fatalf("sdk fetched %d times, want 1", *sdkHits)
	}
	if !reg.Loaded("youtube") {
		t.Fatal("registry does not report the sdk loaded")
	}

	// A second backend reuses the cached SDK.
	b2 := l.New(backend.Options{SDK: reg, HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b2.Destroy)
	if err := b2.Setup(context.Background()); err != nil {
		t.Fatalf("second Setup: %v", err)
	}
	if *sdkHits != 1 {
		t.Fatalf("sdk fetched %d times after reuse, want 1", *sdkHits)
	}
}

func TestSetupFailsWhenSDKUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	reg := sdk.NewRegistry(sdk.WithHTTPClient(srv.Client()))
	b := testLoader(srv).New(backend.Options{SDK: reg, HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b.Destroy)

	if err := b.Setup(context.Background()); err == nil {
		t.Fatal("Setup succeeded with unreachable sdk")
	}
	if b.Ready() {
		t.Fatal("backend ready despite setup failure")
	}
}

func TestLoadResolvesMetadata(t *testing.T) {
	srv, _ := serveEmbed(t)
	b := testLoader(srv).New(backend.Options{HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b.Destroy)

	src := model.NewSource("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	src.Duration = 212
	if err := b.Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w, h := b.Dimensions(); w != 1280 || h != 720 {
		t.Fatalf("dimensions = %dx%d, want 1280x720", w, h)
	}
	if got := b.Duration(); got != 212 {
		t.Fatalf("Duration = %v, want 212 from the source hint", got)
	}
	if b.Element().ReadyState() != element.HaveEnoughData {
		t.Fatalf("ReadyState = %v, want HaveEnoughData", b.Element().ReadyState())
	}

	// Coarse buffering tracks the playhead with a lookahead window.
	b.Seek(100)
	if buf := b.Buffered(); buf.End() != 100+bufferLookahead {
		t.Fatalf("buffered end = %v, want %v", buf.End(), 100+bufferLookahead)
	}
}

func TestLoadRejectedEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	b := testLoader(srv).New(backend.Options{HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b.Destroy)

	var errCode int
	b.Events().On(events.Error, func(args ...any) { errCode = args[0].(int) })

	if err := b.Load(context.Background(), model.NewSource("https://youtu.be/dQw4w9WgXcQ")); err == nil {
		t.Fatal("Load succeeded for rejected embed")
	}
	if errCode != 2 {
		t.Fatalf("error code = %d, want 2", errCode)
	}
}

func TestVolumeUnsupported(t *testing.T) {
	srv, _ := serveEmbed(t)
	b := testLoader(srv).New(backend.Options{HTTPClient: srv.Client()}).(*Backend)
	t.Cleanup(b.Destroy)

	if got := b.CanSetVolume(); got != model.Unsupported {
		t.Fatalf("CanSetVolume = %v, want unsupported", got)
	}
}

func TestPreconnectHints(t *testing.T) {
	l := NewLoader()
	hints := l.PreconnectHints(model.NewSource("https://youtu.be/dQw4w9WgXcQ"))
	want := map[string]bool{
		"https://www.youtube.com": false,
		"https://vimeo.com":       false,
		"https://i.ytimg.com":     false,
	}
	for _, h := range hints {
		if _, ok := want[h]; ok {
			want[h] = true
		}
	}
	if !want["https://www.youtube.com"] || !want["https://i.ytimg.com"] {
		t.Fatalf("hints missing expected origins: %v", hints)
	}
	if want["https://vimeo.com"] {
		t.Fatalf("hints include foreign origin: %v", hints)
	}
}
