// Package native implements progressive file playback: the generic fallback
// backend for direct media URLs.
package native

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"playerd/internal/backend"
	"playerd/internal/element"
	"playerd/internal/model"
)

var videoExts = map[string]struct{}{
	"mp4": {}, "m4v": {}, "webm": {}, "mov": {}, "ogv": {}, "avi": {}, "mkv": {},
}

var audioExts = map[string]struct{}{
	"mp3": {}, "m4a": {}, "m4b": {}, "aac": {}, "wav": {}, "flac": {},
	"ogg": {}, "oga": {}, "opus": {},
}

func canPlay(src model.Source) bool {
	if src.Provider == model.ProviderTypeHTML5 {
		return true
	}
	if strings.HasPrefix(src.Type, "video/") || strings.HasPrefix(src.Type, "audio/") {
		return true
	}
	ext := src.Ext()
	if _, ok := videoExts[ext]; ok {
		return true
	}
	_, ok := audioExts[ext]
	return ok
}

type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

func (*Loader) Name() string { return "native" }

func (*Loader) CanPlay(src model.Source) bool { return canPlay(src) }

func (*Loader) MediaType(src model.Source) model.MediaType {
	if strings.HasPrefix(src.Type, "audio/") {
		return model.MediaTypeAudio
	}
	if strings.HasPrefix(src.Type, "video/") {
		return model.MediaTypeVideo
	}
	if _, ok := audioExts[src.Ext()]; ok {
		return model.MediaTypeAudio
	}
	return model.MediaTypeVideo
}

func (*Loader) New(opts backend.Options) backend.Provider {
	return &Backend{Base: backend.NewBase("native", model.ProviderTypeHTML5, opts)}
}

type Backend struct {
	*backend.Base
}

func (b *Backend) CanPlay(src model.Source) bool { return canPlay(src) }

// Load begins progressive playback. Remote sources are probed with a HEAD
// request so an unreachable URL fails the load instead of silently reaching
// a ready state.
func (b *Backend) Load(ctx context.Context, src model.Source) error {
	if b.Destroyed() {
		return nil
	}
	gen := b.NextGen()
	el := b.Element()
	el.Load(src.Src)

	if strings.HasPrefix(src.Src, "http://") || strings.HasPrefix(src.Src, "https://") {
		if err := b.probe(ctx, src.Src); err != nil {
			if b.Superseded(gen) {
				return nil
			}
			el.Fail(2, err.Error())
			return fmt.Errorf("probing %q: %w", src.Src, err)
		}
	}
	if b.Superseded(gen) {
		return nil
	}

	b.SetStreamType(model.StreamTypeOnDemand)
	if src.Duration > 0 {
		el.SetDuration(src.Duration)
		// Progressive media is fully cacheable once fetched.
		el.SetBuffered(model.Ranges{{Start: 0, End: src.Duration}})
	}
	el.AdvanceTo(element.HaveEnoughData)
	return nil
}

func (b *Backend) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.Opts().Client().Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
