// Package hls implements the adaptive-streaming backend for HTTP Live
// Streaming sources. It attaches to an m3u8 manifest, enumerates quality
// variants and alternate renditions, and recovers from transient network
// failures internally; only terminal errors surface on the event bus.
package hls

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"playerd/internal/backend"
	"playerd/internal/element"
	"playerd/internal/events"
	"playerd/internal/model"
)

const (
	maxManifestAttempts = 3
	retryBaseDelay      = 250 * time.Millisecond
	maxPlaylistBytes    = 4 << 20
)

func canPlay(src model.Source) bool {
	if src.Provider == model.ProviderTypeHLS {
		return true
	}
	if src.Type == "application/x-mpegurl" || src.Type == "application/vnd.apple.mpegurl" {
		return true
	}
	ext := src.Ext()
	return ext == "m3u8" || ext == "m3u"
}

type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

func (*Loader) Name() string { return "hls" }

func (*Loader) CanPlay(src model.Source) bool { return canPlay(src) }

func (*Loader) MediaType(model.Source) model.MediaType { return model.MediaTypeVideo }

func (*Loader) New(opts backend.Options) backend.Provider {
	return &Backend{Base: backend.NewBase("hls", model.ProviderTypeHLS, opts)}
}

type Backend struct {
	*backend.Base

	mu         sync.Mutex
	variants   []Variant
	qualities  []model.VideoQuality
	audio      []model.AudioTrack
	text       []model.TextTrack
	currentURL *url.URL
}

func (b *Backend) CanPlay(src model.Source) bool { return canPlay(src) }

// Load attaches the engine to the manifest URL: fetch and classify the
// playlist, enumerate tracks from a master manifest, then derive duration
// and stream type from the selected media playlist.
func (b *Backend) Load(ctx context.Context, src model.Source) error {
	if b.Destroyed() {
		return nil
	}
	gen := b.NextGen()
	el := b.Element()
	el.Load(src.Src)

	base, err := url.Parse(src.Src)
	if err != nil {
		el.Fail(4, fmt.Sprintf("invalid manifest url: %v", err))
		return fmt.Errorf("parsing manifest url: %w", err)
	}

	data, err := b.fetchWithRecovery(ctx, src.Src)
	if err != nil {
		if b.Superseded(gen) {
			return nil
		}
		el.Fail(2, err.Error())
		return fmt.Errorf("fetching manifest: %w", err)
	}
	if b.Superseded(gen) {
		return nil
	}

	mediaURL := src.Src
	if IsMaster(data) {
		master, perr := ParseMaster(data, base)
		if perr != nil {
			el.Fail(4, perr.Error())
			return fmt.Errorf("parsing master playlist: %w", perr)
		}
		b.enumerate(master)
		if v, ok := b.selectedVariant(); ok {
			mediaURL = v.URI
		}
		data, err = b.fetchWithRecovery(ctx, mediaURL)
		if err != nil {
			if b.Superseded(gen) {
				return nil
			}
			el.Fail(2, err.Error())
			return fmt.Errorf("fetching media playlist: %w", err)
		}
	} else {
		b.clearTracks()
	}
	if b.Superseded(gen) {
		return nil
	}

	mu, _ := url.Parse(mediaURL)
	playlist, perr := ParseMedia(data, mu)
	if perr != nil {
		el.Fail(4, perr.Error())
		return fmt.Errorf("parsing media playlist: %w", perr)
	}

	b.mu.Lock()
	b.currentURL = base
	b.mu.Unlock()

	b.applyPlaylist(playlist)
	el.AdvanceTo(element.HaveEnoughData)
	return nil
}

func (b *Backend) applyPlaylist(p MediaPlaylist) {
	el := b.Element()
	switch {
	case p.Ended:
		b.SetStreamType(model.StreamTypeOnDemand)
		d := p.Duration()
		el.SetDuration(d)
		el.SetBuffered(model.Ranges{{Start: 0, End: d}})
	case p.LowLatency:
		b.SetStreamType(model.StreamTypeLLLive)
		b.applyLiveWindow(p)
	default:
		b.SetStreamType(model.StreamTypeLive)
		b.applyLiveWindow(p)
	}
}

// applyLiveWindow exposes the sliding window of a live playlist as the
// seekable range.
func (b *Backend) applyLiveWindow(p MediaPlaylist) {
	window := p.Duration()
	el := b.Element()
	el.SetSeekable(model.Ranges{{Start: 0, End: window}})
	el.SetBuffered(model.Ranges{{Start: 0, End: window}})
}

// enumerate replaces every track list wholesale from the master manifest;
// stale objects are discarded, not diffed.
func (b *Backend) enumerate(m Master) {
	qualities := make([]model.VideoQuality, len(m.Variants))
	for i, v := range m.Variants {
		qualities[i] = model.VideoQuality{
			ID:       fmt.Sprintf("q%d", i),
			Width:    v.Width,
			Height:   v.Height,
			Bitrate:  v.Bandwidth,
			Codec:    v.Codecs,
			Selected: i == 0,
		}
	}

	var audio []model.AudioTrack
	var text []model.TextTrack
	defaultAudio := ""
	for i, r := range m.Renditions {
		switch strings.ToUpper(r.Type) {
		case "AUDIO":
			id := fmt.Sprintf("a%d", i)
			if r.Default && defaultAudio == "" {
				defaultAudio = id
			}
			audio = append(audio, model.AudioTrack{
				ID:       id,
				Label:    r.Name,
				Language: r.Language,
			})
		case "SUBTITLES", "CLOSED-CAPTIONS":
			mode := model.TextTrackDisabled
			text = append(text, model.TextTrack{
				ID:       fmt.Sprintf("t%d", i),
				Label:    r.Name,
				Language: r.Language,
				Kind:     "subtitles",
				Mode:     mode,
			})
		}
	}
	// Exactly one audio track starts selected: the first DEFAULT=YES
	// rendition, or the first rendition when none is flagged.
	if len(audio) > 0 {
		if defaultAudio == "" {
			defaultAudio = audio[0].ID
		}
		audio = model.SelectAudioTrack(audio, defaultAudio)
	}

	b.mu.Lock()
	b.variants = m.Variants
	b.qualities = qualities
	b.audio = audio
	b.text = text
	b.mu.Unlock()

	if w, h, ok := b.selectedResolution(); ok {
		b.Element().SetDimensions(w, h)
	}

	b.Events().Emit(events.QualitiesChange, qualities)
	b.Events().Emit(events.AudioTracksChange, audio)
	b.Events().Emit(events.TextTracksChange, text)
}

func (b *Backend) clearTracks() {
	b.mu.Lock()
	b.variants = nil
	b.qualities = nil
	b.audio = nil
	b.text = nil
	b.mu.Unlock()
}

func (b *Backend) selectedVariant() (Variant, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, q := range b.qualities {
		if q.Selected && i < len(b.variants) {
			return b.variants[i], true
		}
	}
	return Variant{}, false
}

func (b *Backend) selectedResolution() (int, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.qualities {
		if q.Selected {
			return q.Width, q.Height, true
		}
	}
	return 0, 0, false
}

func (b *Backend) Qualities() []model.VideoQuality {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.qualities
}

// SelectQuality re-points the engine at the chosen variant playlist.
func (b *Backend) SelectQuality(ctx context.Context, id string) error {
	if b.Destroyed() {
		return nil
	}
	b.mu.Lock()
	var target *Variant
	for i, q := range b.qualities {
		if q.ID == id && i < len(b.variants) {
			target = &b.variants[i]
			break
		}
	}
	if target == nil {
		b.mu.Unlock()
		return fmt.Errorf("unknown quality %q", id)
	}
	b.qualities = model.SelectQuality(b.qualities, id)
	qualities := b.qualities
	uri := target.URI
	width, height := target.Width, target.Height
	b.mu.Unlock()

	data, err := b.fetchWithRecovery(ctx, uri)
	if err != nil {
		return fmt.Errorf("fetching variant playlist: %w", err)
	}
	mu, _ := url.Parse(uri)
	playlist, err := ParseMedia(data, mu)
	if err != nil {
		return fmt.Errorf("parsing variant playlist: %w", err)
	}
	b.applyPlaylist(playlist)
	b.Element().SetDimensions(width, height)

	b.Events().Emit(events.QualityChange, id)
	b.Events().Emit(events.QualitiesChange, qualities)
	return nil
}

func (b *Backend) AudioTracks() []model.AudioTrack {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.audio
}

func (b *Backend) SelectAudioTrack(ctx context.Context, id string) error {
	if b.Destroyed() {
		return nil
	}
	b.mu.Lock()
	b.audio = model.SelectAudioTrack(b.audio, id)
	audio := b.audio
	b.mu.Unlock()

	b.Events().Emit(events.AudioTrackChange, id)
	b.Events().Emit(events.AudioTracksChange, audio)
	return nil
}

func (b *Backend) TextTracks() []model.TextTrack {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Backend) SetTextTrackMode(id string, mode model.TextTrackMode) error {
	if b.Destroyed() {
		return nil
	}
	b.mu.Lock()
	b.text = model.SetTextTrackMode(b.text, id, mode)
	text := b.text
	b.mu.Unlock()

	b.Events().Emit(events.TextTrackChange, id, mode)
	b.Events().Emit(events.TextTracksChange, text)
	return nil
}

// fetchWithRecovery is the engine's internal recovery: transient fetch
// failures are retried with backoff and never surface; only exhaustion does.
func (b *Backend) fetchWithRecovery(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxManifestAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}
		data, err := b.fetch(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("manifest unavailable after %d attempts: %w", maxManifestAttempts, lastErr)
}

func (b *Backend) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.Opts().Client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
