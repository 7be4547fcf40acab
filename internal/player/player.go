// Package player composes the state store, the event channel and the backend
// registry into the playback orchestrator. It is the only component that
// creates or destroys providers and the sole writer of backend-originated
// facts into the state store.
package player

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"playerd/internal/backend"
	"playerd/internal/backend/dash"
	"playerd/internal/backend/hls"
	"playerd/internal/backend/native"
	"playerd/internal/backend/vimeo"
	"playerd/internal/backend/youtube"
	"playerd/internal/events"
	"playerd/internal/metrics"
	"playerd/internal/model"
	"playerd/internal/state"
)

// ErrNoProvider is returned by control methods invoked before any source
// resolved to a backend.
var ErrNoProvider = errors.New("no active provider")

// SettingsStore persists the volume/muted/rate subset of player state.
// Read and write failures are logged and swallowed, never surfaced.
type SettingsStore interface {
	PlayerSettings() (model.PlayerSettings, bool, error)
	SavePlayerSettings(model.PlayerSettings) error
}

// Event is one public player event as delivered to channel subscribers.
type Event struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}

type Player struct {
	bus *events.Bus
	st  *state.Store

	mu       sync.Mutex
	loaders  []backend.Loader
	bopts    backend.Options
	provider backend.Provider
	offs     []func()

	settings  SettingsStore
	met       *metrics.Metrics
	idleAfter time.Duration
	idleTimer *time.Timer

	stateOpts []state.Option

	tapMu   sync.Mutex
	taps    map[uint64]chan Event
	nextTap uint64

	gen       atomic.Int64
	destroyed atomic.Bool
}

type Option func(*Player)

func WithLoaders(loaders []backend.Loader) Option {
	return func(p *Player) { p.loaders = loaders }
}

func WithBackendOptions(opts backend.Options) Option {
	return func(p *Player) { p.bopts = opts }
}

func WithSettingsStore(s SettingsStore) Option {
	return func(p *Player) { p.settings = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Player) { p.met = m }
}

// WithIdleTimeout sets how long after the last activity mark the user is
// considered idle. Zero disables the idle timer.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Player) { p.idleAfter = d }
}

// WithScheduler overrides the store's notification scheduler, used by tests
// to drive flushes deterministically.
func WithScheduler(s state.Scheduler) Option {
	return func(p *Player) { p.stateOpts = append(p.stateOpts, state.WithScheduler(s)) }
}

// DefaultLoaders returns the standard resolution order: embed providers
// first, then segmented-manifest formats, then generic progressive playback.
func DefaultLoaders() []backend.Loader {
	return []backend.Loader{
		youtube.NewLoader(),
		vimeo.NewLoader(),
		hls.NewLoader(),
		dash.NewLoader(),
		native.NewLoader(),
	}
}

func New(opts ...Option) *Player {
	p := &Player{
		bus:       events.NewBus(),
		taps:      make(map[uint64]chan Event),
		idleAfter: 10 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	if p.loaders == nil {
		p.loaders = DefaultLoaders()
	}
	p.st = state.New(p.stateOpts...)

	p.st.SubscribeAll(func([]state.Key) { p.met.StateFlushed() })
	p.loadSettings()
	p.emit(events.Init)
	return p
}

func (p *Player) Events() *events.Bus { return p.bus }
func (p *Player) Store() *state.Store { return p.st }

// State returns a copy of the full state snapshot.
func (p *Player) State() map[state.Key]any { return p.st.Snapshot() }

func (p *Player) Destroyed() bool { return p.destroyed.Load() }

// SubscribeEvents returns a channel receiving every public player event and
// a cancel func. Slow consumers drop events rather than block emission.
func (p *Player) SubscribeEvents() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	p.tapMu.Lock()
	p.nextTap++
	id := p.nextTap
	if p.taps == nil {
		close(ch)
		p.tapMu.Unlock()
		return ch, func() {}
	}
	p.taps[id] = ch
	p.tapMu.Unlock()

	return ch, func() {
		p.tapMu.Lock()
		if c, ok := p.taps[id]; ok {
			delete(p.taps, id)
			close(c)
		}
		p.tapMu.Unlock()
	}
}

// SetSrc resolves the first playable source, swapping backends when the
// required type changes. Resolution, setup and load failures transition the
// loading state to error and emit an error event; the returned error mirrors
// what was published.
func (p *Player) SetSrc(ctx context.Context, sources ...model.Source) error {
	if p.destroyed.Load() {
		return nil
	}
	gen := p.gen.Add(1)

	first := model.Source{}
	if len(sources) > 0 {
		first = sources[0]
	}
	p.st.Batch(map[state.Key]any{
		state.KeySources:       sources,
		state.KeySource:        first,
		state.KeyLoadingStatus: model.LoadingActive,
		state.KeyError:         (*model.PlayerError)(nil),
		state.KeyMediaType:     model.MediaTypeUnknown,
		state.KeyStreamType:    model.StreamTypeUnknown,

		state.KeyCurrentTime:    float64(0),
		state.KeyDuration:       float64(0),
		state.KeyBuffered:       model.Ranges(nil),
		state.KeyBufferedAmount: float64(0),
		state.KeySeekable:       model.Ranges(nil),
		state.KeyMediaWidth:     0,
		state.KeyMediaHeight:    0,

		state.KeyPaused:  true,
		state.KeyPlaying: false,
		state.KeyEnded:   false,
		state.KeySeeking: false,
		state.KeyWaiting: false,

		state.KeyQualities:   []model.VideoQuality(nil),
		state.KeyAudioTracks: []model.AudioTrack(nil),
		state.KeyTextTracks:  []model.TextTrack(nil),
	})
	p.emit(events.SourcesChange, model.URLs(sources))

	loader, src := p.resolve(sources)
	if loader == nil {
		p.clearProvider()
		return p.fail(model.ErrSourceUnsupported, "no playback engine accepts the source", nil)
	}
	p.st.Batch(map[state.Key]any{
		state.KeySource:    src,
		state.KeyMediaType: loader.MediaType(src),
	})

	prov, err := p.ensureProvider(ctx, gen, loader)
	if err != nil {
		return p.fail(model.ErrSetup, err.Error(), err)
	}
	if prov == nil {
		// Superseded by a newer SetSrc or a destroy.
		return nil
	}

	if err := prov.Load(ctx, src); err != nil {
		if p.superseded(gen) {
			return nil
		}
		// The backend usually reports its own failure through the error
		// event first; only synthesize a load error when it did not.
		if perr, ok := p.st.Get(state.KeyError).(*model.PlayerError); ok && perr != nil {
			return perr
		}
		return p.fail(model.ErrLoad, err.Error(), err)
	}
	if p.superseded(gen) {
		return nil
	}
	p.syncMediaFacts(prov)
	p.st.Set(state.KeyLoadingStatus, model.LoadingLoaded)

	// A blocked autoplay attempt surfaces as a permission error event; the
	// media stays loaded, so the attempt never fails the load itself.
	if auto, _ := p.st.Get(state.KeyAutoplay).(bool); auto {
		if err := prov.Play(ctx); err != nil {
			log.Printf("player: autoplay attempt: %v", err)
		}
	}
	return nil
}

func (p *Player) resolve(sources []model.Source) (backend.Loader, model.Source) {
	for _, src := range sources {
		if l := backend.FindLoader(src, p.loaders); l != nil {
			return l, src
		}
	}
	return nil, model.Source{}
}

// PreconnectHints returns the origins worth warming for the given source.
func (p *Player) PreconnectHints(src model.Source) []string {
	return backend.PreconnectHints(src, p.loaders)
}

// ensureProvider returns the provider for the loader, swapping out the
// active one when the backend type differs. Returns (nil, nil) when the
// operation was superseded mid-swap.
func (p *Player) ensureProvider(ctx context.Context, gen int64, loader backend.Loader) (backend.Provider, error) {
	p.mu.Lock()
	cur := p.provider
	if cur != nil && cur.Name() == loader.Name() {
		p.mu.Unlock()
		return cur, nil
	}
	p.provider = nil
	p.detachLocked()
	p.mu.Unlock()

	if cur != nil {
		cur.Destroy()
		p.clearProviderState()
		p.emit(events.ProviderChange, nil)
		p.met.SetActiveProvider("")
	}

	prov := loader.New(p.bopts)
	if err := prov.Setup(ctx); err != nil {
		prov.Destroy()
		return nil, err
	}
	if p.superseded(gen) {
		prov.Destroy()
		return nil, nil
	}

	p.mu.Lock()
	p.provider = prov
	p.attachLocked(prov)
	p.mu.Unlock()

	p.applySettings(prov)
	p.st.Batch(map[state.Key]any{
		state.KeyProviderType:  prov.Type(),
		state.KeyCanSetVolume:  prov.CanSetVolume(),
		state.KeyCanFullscreen: prov.CanFullscreen(),
		state.KeyCanPiP:        prov.CanPiP(),
	})
	p.emit(events.ProviderChange, string(prov.Type()))
	p.met.ProviderSwapped()
	p.met.SetActiveProvider(string(prov.Type()))
	// The provider's own ready fired during setup, before fan-in existed.
	if prov.Ready() {
		p.emit(events.Ready)
	}
	return prov, nil
}

func (p *Player) superseded(gen int64) bool {
	return p.destroyed.Load() || p.gen.Load() != gen
}

// clearProvider tears down the active provider, if any, and announces the
// providerless interval.
func (p *Player) clearProvider() {
	p.mu.Lock()
	cur := p.provider
	p.provider = nil
	p.detachLocked()
	p.mu.Unlock()
	if cur == nil {
		return
	}
	cur.Destroy()
	p.clearProviderState()
	p.emit(events.ProviderChange, nil)
	p.met.SetActiveProvider("")
}

func (p *Player) clearProviderState() {
	p.st.Batch(map[state.Key]any{
		state.KeyProviderType:  model.ProviderTypeNone,
		state.KeyCanSetVolume:  model.Unavailable,
		state.KeyCanFullscreen: model.Unavailable,
		state.KeyCanPiP:        model.Unavailable,
	})
}

func (p *Player) activeProvider() backend.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.provider
}

func (p *Player) fail(code model.ErrorCode, msg string, details any) error {
	perr := model.NewPlayerError(code, msg, details)
	p.st.Batch(map[state.Key]any{
		state.KeyLoadingStatus: model.LoadingErrored,
		state.KeyError:         perr,
	})
	p.emit(events.Error, int(code), msg, details)
	p.met.ErrorReported(int(code))
	return perr
}

func (p *Player) emit(name string, args ...any) {
	p.bus.Emit(name, args...)
	p.met.EventEmitted(name)

	p.tapMu.Lock()
	for _, ch := range p.taps {
		select {
		case ch <- Event{Name: name, Args: args}:
		default:
		}
	}
	p.tapMu.Unlock()
}

func (p *Player) loadSettings() {
	if p.settings == nil {
		return
	}
	s, ok, err := p.settings.PlayerSettings()
	if err != nil {
		log.Printf("player: reading persisted settings: %v", err)
		return
	}
	if !ok {
		return
	}
	p.st.Batch(map[state.Key]any{
		state.KeyVolume:       s.Volume,
		state.KeyMuted:        s.Muted,
		state.KeyPlaybackRate: s.Rate,
	})
}

func (p *Player) persistSettings() {
	if p.settings == nil {
		return
	}
	s := model.PlayerSettings{
		Volume: p.st.Get(state.KeyVolume).(float64),
		Muted:  p.st.Get(state.KeyMuted).(bool),
		Rate:   p.st.Get(state.KeyPlaybackRate).(float64),
	}
	if err := p.settings.SavePlayerSettings(s); err != nil {
		log.Printf("player: persisting settings: %v", err)
	}
}

func (p *Player) applySettings(prov backend.Provider) {
	if v, ok := p.st.Get(state.KeyVolume).(float64); ok {
		prov.SetVolume(v)
	}
	if m, ok := p.st.Get(state.KeyMuted).(bool); ok {
		prov.SetMuted(m)
	}
	if r, ok := p.st.Get(state.KeyPlaybackRate).(float64); ok && r > 0 {
		prov.SetRate(r)
	}
}

// Destroy is terminal and idempotent: after it every control method is a
// no-op and every event channel subscriber is closed.
func (p *Player) Destroy() {
	if !p.destroyed.CompareAndSwap(false, true) {
		return
	}
	p.gen.Add(1)

	p.mu.Lock()
	prov := p.provider
	p.provider = nil
	p.detachLocked()
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
	p.mu.Unlock()

	if prov != nil {
		prov.Destroy()
	}
	p.met.SetActiveProvider("")

	p.emit(events.Destroy)

	p.tapMu.Lock()
	for id, ch := range p.taps {
		delete(p.taps, id)
		close(ch)
	}
	p.taps = nil
	p.tapMu.Unlock()

	p.bus.RemoveAll()
}
