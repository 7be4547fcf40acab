package backend

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"playerd/internal/element"
	"playerd/internal/events"
	"playerd/internal/features"
	"playerd/internal/model"
)

// Base carries the state and behavior every backend shares: the owned
// element, its normalizer, the outward event bus, lifecycle flags, and the
// no-op capability defaults for backends without tracks. Concrete backends
// embed *Base and override what they support.
type Base struct {
	name  string
	ptype model.ProviderType
	id    string
	opts  Options

	bus  *events.Bus
	el   *element.Element
	norm *element.Normalizer

	mu         sync.Mutex
	ready      bool
	streamType model.StreamType
	destroyed  atomic.Bool
	gen        atomic.Int64
}

func NewBase(name string, ptype model.ProviderType, opts Options, elOpts ...element.Option) *Base {
	bus := events.NewBus()
	el := element.New(elOpts...)
	return &Base{
		name:  name,
		ptype: ptype,
		id:    uuid.NewString(),
		opts:  opts,
		bus:   bus,
		el:    el,
		norm:  element.NewNormalizer(el, bus),
	}
}

func (b *Base) Name() string             { return b.name }
func (b *Base) Type() model.ProviderType { return b.ptype }
func (b *Base) ID() string               { return b.id }
func (b *Base) Events() *events.Bus      { return b.bus }
func (b *Base) Opts() Options            { return b.opts }

// Element exposes the owned media transport to the embedding backend.
func (b *Base) Element() *element.Element { return b.el }

// Setup is the default one-time initialization for backends that need no
// external SDK.
func (b *Base) Setup(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	b.MarkReady()
	return nil
}

// MarkReady flips the ready flag and emits ready exactly once.
func (b *Base) MarkReady() {
	b.mu.Lock()
	was := b.ready
	b.ready = true
	b.mu.Unlock()
	if !was {
		b.bus.Emit(events.Ready)
	}
}

func (b *Base) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *Base) StreamType() model.StreamType {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamType == "" {
		return model.StreamTypeUnknown
	}
	return b.streamType
}

// SetStreamType records the stream classification the backend derived from
// its manifest or source.
func (b *Base) SetStreamType(st model.StreamType) {
	b.mu.Lock()
	b.streamType = st
	b.mu.Unlock()
}

// NextGen starts a new load generation, superseding any in-flight load.
func (b *Base) NextGen() int64 { return b.gen.Add(1) }

// Superseded reports whether the load that began at gen has been overtaken
// by a newer load or by destruction.
func (b *Base) Superseded(gen int64) bool {
	return b.Destroyed() || b.gen.Load() != gen
}

func (b *Base) Destroyed() bool { return b.destroyed.Load() }

// Destroy tears down listeners and the owned element. Idempotent; all
// methods become no-ops afterwards.
func (b *Base) Destroy() {
	if b.destroyed.Swap(true) {
		return
	}
	b.gen.Add(1)
	b.norm.Destroy()
	b.el.Destroy()
	b.bus.RemoveAll()
}

func (b *Base) Play(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	return b.el.Play()
}

func (b *Base) Pause() {
	if b.Destroyed() {
		return
	}
	b.el.Pause()
}

// Stop pauses and rewinds to the start.
func (b *Base) Stop() {
	if b.Destroyed() {
		return
	}
	b.el.Pause()
	b.el.Seek(0)
}

func (b *Base) Seek(t float64) {
	if b.Destroyed() {
		return
	}
	b.el.Seek(t)
}

func (b *Base) CurrentTime() float64          { return b.el.CurrentTime() }
func (b *Base) Duration() float64             { return b.el.Duration() }
func (b *Base) Buffered() model.Ranges        { return b.el.Buffered() }
func (b *Base) Seekable() model.Ranges        { return b.el.Seekable() }
func (b *Base) Dimensions() (int, int)        { return b.el.Dimensions() }
func (b *Base) Volume() float64               { return b.el.Volume() }
func (b *Base) Muted() bool                   { return b.el.Muted() }
func (b *Base) Rate() float64                 { return b.el.PlaybackRate() }

func (b *Base) SetVolume(v float64) {
	if b.Destroyed() {
		return
	}
	b.el.SetVolume(v)
}

func (b *Base) SetMuted(m bool) {
	if b.Destroyed() {
		return
	}
	b.el.SetMuted(m)
}

func (b *Base) SetRate(r float64) {
	if b.Destroyed() {
		return
	}
	b.el.SetRate(r)
}

// Track defaults: no capability is not an error, just empty enumeration and
// silent selection.

func (b *Base) Qualities() []model.VideoQuality { return nil }

func (b *Base) SelectQuality(ctx context.Context, id string) error { return nil }

func (b *Base) AudioTracks() []model.AudioTrack { return nil }

func (b *Base) SelectAudioTrack(ctx context.Context, id string) error { return nil }

func (b *Base) TextTracks() []model.TextTrack { return nil }

func (b *Base) SetTextTrackMode(id string, mode model.TextTrackMode) error { return nil }

func (b *Base) CanSetVolume() model.Availability {
	return features.DetectVolume(b.opts.Platform, !b.Destroyed())
}

func (b *Base) CanFullscreen() model.Availability {
	return features.DetectFullscreen(b.opts.Platform, !b.Destroyed())
}

func (b *Base) CanPiP() model.Availability {
	return features.DetectPiP(b.opts.Platform, !b.Destroyed())
}

func (b *Base) EnterFullscreen(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if err := features.EnterFullscreen(ctx, b.opts.Platform); err != nil {
		return err
	}
	b.bus.Emit(events.FullscreenChange, true)
	return nil
}

func (b *Base) ExitFullscreen(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if err := features.ExitFullscreen(ctx, b.opts.Platform); err != nil {
		return err
	}
	b.bus.Emit(events.FullscreenChange, false)
	return nil
}

func (b *Base) EnterPiP(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if err := features.EnterPiP(ctx, b.opts.Platform); err != nil {
		return err
	}
	b.bus.Emit(events.PiPChange, true)
	return nil
}

func (b *Base) ExitPiP(ctx context.Context) error {
	if b.Destroyed() {
		return nil
	}
	if err := features.ExitPiP(ctx, b.opts.Platform); err != nil {
		return err
	}
	b.bus.Emit(events.PiPChange, false)
	return nil
}
