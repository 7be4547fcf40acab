package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"playerd/internal/backend"
	"playerd/internal/backend/dash"
	"playerd/internal/backend/hls"
	"playerd/internal/backend/native"
	"playerd/internal/backend/vimeo"
	"playerd/internal/backend/youtube"
	"playerd/internal/config"
	"playerd/internal/metrics"
	"playerd/internal/player"
	"playerd/internal/sdk"
	"playerd/internal/server"
	"playerd/internal/store"
)

func main() {
	cfg, err := config.Load(envOr("CONFIG_PATH", "./playerd.toml"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal(err)
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer s.Close()

	registry := sdk.NewRegistry()
	met := metrics.New()

	p := player.New(
		player.WithLoaders(loaders(cfg)),
		player.WithBackendOptions(backend.Options{SDK: registry}),
		player.WithSettingsStore(s),
		player.WithMetrics(met),
		player.WithIdleTimeout(cfg.IdleTimeout.Std()),
	)
	defer p.Destroy()

	var opts []server.Option
	opts = append(opts, server.WithMetrics(met))
	opts = append(opts, server.WithSourceTimeout(cfg.SourceTimeout.Std()))
	if cfg.CORSOrigin != "" {
		opts = append(opts, server.WithCORSOrigin(cfg.CORSOrigin))
	}
	if cfg.APIToken != "" {
		opts = append(opts, server.WithToken(cfg.APIToken))
	}
	srv := server.NewServer(p, opts...)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("playerd listening on %s", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// loaders builds the resolution order, honoring configured SDK endpoints.
func loaders(cfg config.Config) []backend.Loader {
	yt := youtube.NewLoader()
	if cfg.SDK.YouTubeURL != "" {
		yt.SDKURL = cfg.SDK.YouTubeURL
	}
	vm := vimeo.NewLoader()
	if cfg.SDK.VimeoURL != "" {
		vm.SDKURL = cfg.SDK.VimeoURL
	}
	return []backend.Loader{
		yt,
		vm,
		hls.NewLoader(),
		dash.NewLoader(),
		native.NewLoader(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
