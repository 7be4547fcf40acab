// Package dash implements the adaptive-streaming backend for MPEG-DASH
// sources. It parses the MPD manifest for duration, stream classification,
// and quality/audio-track enumeration, with the same internal recovery
// policy as the HLS engine.
package dash

import (
	"context"
	"fmt"
	"io"
	"net/http"
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
	maxManifestBytes    = 8 << 20
)

func canPlay(src model.Source) bool {
	if src.Provider == model.ProviderTypeDASH {
		return true
	}
	return src.Type == "application/dash+xml" || src.Ext() == "mpd"
}

type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

func (*Loader) Name() string { return "dash" }

func (*Loader) CanPlay(src model.Source) bool { return canPlay(src) }

func (*Loader) MediaType(model.Source) model.MediaType { return model.MediaTypeVideo }

func (*Loader) New(opts backend.Options) backend.Provider {
	return &Backend{Base: backend.NewBase("dash", model.ProviderTypeDASH, opts)}
}

type Backend struct {
	*backend.Base

	mu        sync.Mutex
	qualities []model.VideoQuality
	audio     []model.AudioTrack
}

func (b *Backend) CanPlay(src model.Source) bool { return canPlay(src) }

func (b *Backend) Load(ctx context.Context, src model.Source) error {
	if b.Destroyed() {
		return nil
	}
	gen := b.NextGen()
	el := b.Element()
	el.Load(src.Src)

	data, err := b.fetchWithRecovery(ctx, src.Src)
	if err != nil {
		if b.Superseded(gen) {
			return nil
		}
		el.Fail(2, err.Error())
		return fmt.Errorf("fetching mpd: %w", err)
	}
	if b.Superseded(gen) {
		return nil
	}

	mpd, perr := ParseMPD(data)
	if perr != nil {
		el.Fail(4, perr.Error())
		return fmt.Errorf("parsing mpd: %w", perr)
	}

	b.enumerate(mpd)

	if mpd.Dynamic() {
		b.SetStreamType(model.StreamTypeLive)
	} else {
		b.SetStreamType(model.StreamTypeOnDemand)
		d := mpd.Duration()
		el.SetDuration(d)
		el.SetBuffered(model.Ranges{{Start: 0, End: d}})
	}
	el.AdvanceTo(element.HaveEnoughData)
	return nil
}

// enumerate rebuilds the track lists wholesale from the manifest.
func (b *Backend) enumerate(m MPD) {
	var qualities []model.VideoQuality
	var audio []model.AudioTrack

	for _, period := range m.Periods {
		for _, set := range period.AdaptationSets {
			switch {
			case set.IsVideo():
				for _, rep := range set.Representations {
					qualities = append(qualities, model.VideoQuality{
						ID:       fmt.Sprintf("q%d", len(qualities)),
						Width:    rep.Width,
						Height:   rep.Height,
						Bitrate:  rep.Bandwidth,
						Codec:    rep.Codecs,
						Selected: len(qualities) == 0,
					})
				}
			case set.IsAudio():
				label := set.Label
				if label == "" {
					label = set.Lang
				}
				audio = append(audio, model.AudioTrack{
					ID:       fmt.Sprintf("a%d", len(audio)),
					Label:    label,
					Language: set.Lang,
					Selected: len(audio) == 0,
				})
			}
		}
	}

	b.mu.Lock()
	b.qualities = qualities
	b.audio = audio
	b.mu.Unlock()

	if q, ok := model.SelectedQuality(qualities); ok {
		b.Element().SetDimensions(q.Width, q.Height)
	}

	b.Events().Emit(events.QualitiesChange, qualities)
	b.Events().Emit(events.AudioTracksChange, audio)
}

func (b *Backend) Qualities() []model.VideoQuality {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.qualities
}

func (b *Backend) SelectQuality(ctx context.Context, id string) error {
	if b.Destroyed() {
		return nil
	}
	b.mu.Lock()
	found := false
	for _, q := range b.qualities {
		if q.ID == id {
			found = true
			break
		}
	}
	if !found {
		b.mu.Unlock()
		return fmt.Errorf("unknown quality %q", id)
	}
	b.qualities = model.SelectQuality(b.qualities, id)
	qualities := b.qualities
	b.mu.Unlock()

	if q, ok := model.SelectedQuality(qualities); ok {
		b.Element().SetDimensions(q.Width, q.Height)
	}
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

func (b *Backend) fetchWithRecovery(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxManifestAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}
		data, err := b.fetch(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("manifest unavailable after %d attempts: %w", maxManifestAttempts, lastErr)
}

func (b *Backend) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.Opts().Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
}
