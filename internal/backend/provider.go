// Package backend defines the uniform capability interface every playback
// engine implements, the shared default behavior they embed, and the ordered
// loader registry that resolves a source descriptor to exactly one backend.
package backend

import (
	"context"
	"net/http"

	"playerd/internal/events"
	"playerd/internal/features"
	"playerd/internal/model"
	"playerd/internal/sdk"
)

// Options carries the injected services a provider may need. All fields are
// optional; backends degrade (unavailable capabilities, default HTTP client)
// when one is absent.
type Options struct {
	Platform   *features.Platform
	SDK        *sdk.Registry
	HTTPClient *http.Client
}

func (o Options) Client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

// Provider is one concrete playback engine behind the uniform interface.
//
// Lifecycle: Setup makes the provider ready, Load moves it between loading,
// loaded and error, and Destroy is terminal. After Destroy every method is a
// no-op rather than a panic. A new Load supersedes any in-flight one for the
// same instance.
type Provider interface {
	Name() string
	Type() model.ProviderType
	ID() string
	Events() *events.Bus

	// Setup performs one-time initialization (element creation, external
	// SDK load). A failure is returned, never swallowed into a silent
	// ready state.
	Setup(ctx context.Context) error
	Ready() bool

	// CanPlay is a pure predicate with no side effects.
	CanPlay(src model.Source) bool
	Load(ctx context.Context, src model.Source) error

	Destroy()
	Destroyed() bool

	StreamType() model.StreamType

	Play(ctx context.Context) error
	Pause()
	Stop()
	Seek(t float64)
	CurrentTime() float64
	Duration() float64
	Buffered() model.Ranges
	Seekable() model.Ranges
	Dimensions() (width, height int)

	Volume() float64
	SetVolume(v float64)
	Muted() bool
	SetMuted(m bool)
	Rate() float64
	SetRate(r float64)

	Qualities() []model.VideoQuality
	SelectQuality(ctx context.Context, id string) error
	AudioTracks() []model.AudioTrack
	SelectAudioTrack(ctx context.Context, id string) error
	TextTracks() []model.TextTrack
	SetTextTrackMode(id string, mode model.TextTrackMode) error

	CanSetVolume() model.Availability
	CanFullscreen() model.Availability
	CanPiP() model.Availability

	EnterFullscreen(ctx context.Context) error
	ExitFullscreen(ctx context.Context) error
	EnterPiP(ctx context.Context) error
	ExitPiP(ctx context.Context) error
}
