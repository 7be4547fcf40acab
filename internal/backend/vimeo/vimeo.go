// Package vimeo implements embed playback for Vimeo video URLs.
package vimeo

import (
	"context"
	"fmt"
	"regexp"

	"playerd/internal/backend"
	"playerd/internal/backend/embedbase"
	"playerd/internal/element"
	"playerd/internal/model"
)

const (
	DefaultSDKURL    = "https://player.vimeo.com/api/player.js"
	DefaultOEmbedURL = "https://vimeo.com/api/oembed.json"

	bufferLookahead = 15.0
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|//|\.)player\.vimeo\.com/video/(\d+)`),
	regexp.MustCompile(`(?:^|//|www\.)vimeo\.com/(\d+)`),
}

// VideoID extracts the numeric video identifier from a Vimeo URL, or "".
func VideoID(raw string) string {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

func canPlay(src model.Source) bool {
	if src.Provider == model.ProviderTypeVimeo {
		return true
	}
	return VideoID(src.Src) != ""
}

type Loader struct {
	SDKURL    string
	OEmbedURL string
}

func NewLoader() *Loader {
	return &Loader{SDKURL: DefaultSDKURL, OEmbedURL: DefaultOEmbedURL}
}

func (*Loader) Name() string { return "vimeo" }

func (*Loader) CanPlay(src model.Source) bool { return canPlay(src) }

func (*Loader) MediaType(src model.Source) model.MediaType { return model.MediaTypeVideo }

func (l *Loader) New(opts backend.Options) backend.Provider {
	return &Backend{
		Base:   backend.NewBase("vimeo", model.ProviderTypeVimeo, opts),
		sdkURL: l.SDKURL,
		oembed: embedbase.NewClient(l.OEmbedURL, opts.HTTPClient),
	}
}

func (l *Loader) PreconnectHints(src model.Source) []string {
	var hints []string
	for _, raw := range []string{l.SDKURL, l.OEmbedURL, "https://i.vimeocdn.com"} {
		if o := backend.Origin(raw); o != "" {
			hints = append(hints, o)
		}
	}
	return hints
}

type Backend struct {
	*backend.Base
	sdkURL string
	oembed *embedbase.Client

	unbindBuffer func()
}

func (b *Backend) CanPlay(src model.Source) bool { return canPlay(src) }

func (b *Backend) Setup(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if reg := b.Opts().SDK; reg != nil {
		if _, err := reg.Load(ctx, "vimeo", b.sdkURL); err != nil {
			return fmt.Errorf("loading vimeo sdk: %w", err)
		}
	}
	b.MarkReady()
	return nil
}

func (b *Backend) Load(ctx context.Context, src model.Source) error {
	if b.Destroyed() {
		return nil
	}
	id := VideoID(src.Src)
	if id == "" && src.Provider != model.ProviderTypeVimeo {
		return fmt.Errorf("not a vimeo url: %q", src.Src)
	}
	gen := b.NextGen()
	el := b.Element()
	el.Load(src.Src)

	meta, err := b.oembed.Lookup(ctx, src.Src)
	if b.Superseded(gen) {
		return nil
	}
	if err != nil {
		el.Fail(2, err.Error())
		return fmt.Errorf("resolving vimeo embed %q: %w", id, err)
	}

	b.SetStreamType(model.StreamTypeOnDemand)
	if meta.Width > 0 && meta.Height > 0 {
		el.SetDimensions(meta.Width, meta.Height)
	}
	// Vimeo oEmbed reports a real duration.
	if meta.Duration > 0 {
		el.SetDuration(meta.Duration)
	} else if src.Duration > 0 {
		el.SetDuration(src.Duration)
	}
	if b.unbindBuffer != nil {
		b.unbindBuffer()
	}
	b.unbindBuffer = embedbase.BindCoarseBuffer(el, bufferLookahead)
	el.AdvanceTo(element.HaveEnoughData)
	return nil
}

func (b *Backend) CanSetVolume() model.Availability {
	return model.Unsupported
}
