// Package youtube implements embed playback for YouTube video URLs.
package youtube

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
	DefaultSDKURL    = "https://www.youtube.com/iframe_api"
	DefaultOEmbedURL = "https://www.youtube.com/oembed"

	// Remote players report buffer progress coarsely; we model it as a
	// fixed lookahead window past the playhead.
	bufferLookahead = 15.0
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|//|\.)youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`(?:^|//)youtu\.be/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`(?:^|//|\.)youtube\.com/embed/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`(?:^|//|\.)youtube\.com/shorts/([A-Za-z0-9_-]{6,})`),
}

// VideoID extracts the video identifier from a YouTube URL, or "".
func VideoID(raw string) string {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

func canPlay(src model.Source) bool {
	if src.Provider == model.ProviderTypeYouTube {
		return true
	}
	return VideoID(src.Src) != ""
}

// Loader resolves YouTube URLs to the embed backend. SDK and oEmbed
// endpoints are configurable so tests can point them at local servers.
type Loader struct {
	SDKURL    string
	OEmbedURL string
}

func NewLoader() *Loader {
	return &Loader{SDKURL: DefaultSDKURL, OEmbedURL: DefaultOEmbedURL}
}

func (*Loader) Name() string { return "youtube" }

func (*Loader) CanPlay(src model.Source) bool { return canPlay(src) }

func (*Loader) MediaType(src model.Source) model.MediaType { return model.MediaTypeVideo }

func (l *Loader) New(opts backend.Options) backend.Provider {
	return &Backend{
		Base:   backend.NewBase("youtube", model.ProviderTypeYouTube, opts),
		sdkURL: l.SDKURL,
		oembed: embedbase.NewClient(l.OEmbedURL, opts.HTTPClient),
	}
}

// PreconnectHints warms the SDK and metadata origins.
func (l *Loader) PreconnectHints(src model.Source) []string {
	var hints []string
	for _, raw := range []string{l.SDKURL, l.OEmbedURL, "https://i.ytimg.com"} {
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

// Setup loads the iframe SDK before reporting ready.
func (b *Backend) Setup(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if reg := b.Opts().SDK; reg != nil {
		if _, err := reg.Load(ctx, "youtube", b.sdkURL); err != nil {
			return fmt.Errorf("loading youtube sdk: %w", err)
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
	if id == "" && src.Provider != model.ProviderTypeYouTube {
		return fmt.Errorf("not a youtube url: %q", src.Src)
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
		return fmt.Errorf("resolving youtube embed %q: %w", id, err)
	}

	b.SetStreamType(model.StreamTypeOnDemand)
	if meta.Width > 0 && meta.Height > 0 {
		el.SetDimensions(meta.Width, meta.Height)
	}
	// YouTube oEmbed omits the duration; trust the source hint when given.
	if src.Duration > 0 {
		el.SetDuration(src.Duration)
	}
	if b.unbindBuffer != nil {
		b.unbindBuffer()
	}
	b.unbindBuffer = embedbase.BindCoarseBuffer(el, bufferLookahead)
	el.AdvanceTo(element.HaveEnoughData)
	return nil
}

// CanSetVolume reports unsupported: the embed surface owns its own volume.
func (b *Backend) CanSetVolume() model.Availability {
	return model.Unsupported
}
