// Package element implements the media transport a provider owns: a
// clock-driven playback position, the readiness ladder, buffered and seekable
// accounting, and the low-level event stream the normalizer translates for
// the rest of the player. Decoding and rendering are out of scope; the
// element models transport facts only.
package element

import (
	"fmt"
	"sync"
	"time"

	"playerd/internal/events"
	"playerd/internal/model"
)

type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// MediaError carries the platform transport error code: 1 aborted,
// 2 network, 3 decode, 4 source not supported, 7 playback permission denied.
type MediaError struct {
	Code    int
	Message string
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media error %d: %s", e.Code, e.Message)
}

const defaultTickInterval = 250 * time.Millisecond

type Element struct {
	mu  sync.Mutex
	bus *events.Bus

	src          string
	currentTime  float64
	duration     float64
	playbackRate float64
	volume       float64
	muted        bool

	paused      bool
	ended       bool
	seeking     bool
	waiting     bool
	playBlocked bool

	readyState ReadyState
	buffered   model.Ranges
	seekable   model.Ranges
	width      int
	height     int
	err        *MediaError

	now      func() time.Time
	tick     time.Duration
	lastTick time.Time
	stopTick chan struct{}

	destroyed bool
}

type Option func(*Element)

func WithTickInterval(d time.Duration) Option {
	return func(e *Element) { e.tick = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Element) { e.now = now }
}

func New(opts ...Option) *Element {
	e := &Element{
		bus:          events.NewBus(),
		playbackRate: 1,
		volume:       1,
		paused:       true,
		now:          time.Now,
		tick:         defaultTickInterval,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Events exposes the element's low-level event stream.
func (e *Element) Events() *events.Bus { return e.bus }

// Load resets the transport for a new source and emits loadstart.
func (e *Element) Load(src string) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.stopClockLocked()
	e.src = src
	e.currentTime = 0
	e.duration = 0
	e.readyState = HaveNothing
	e.buffered = nil
	e.seekable = nil
	e.width, e.height = 0, 0
	e.paused = true
	e.ended = false
	e.seeking = false
	e.waiting = false
	e.err = nil
	e.mu.Unlock()

	e.bus.Emit(events.LoadStart)
}

// SetDuration records the media duration and, for seekable media, extends
// the seekable range to cover it.
func (e *Element) SetDuration(d float64) {
	e.mu.Lock()
	if e.destroyed || e.duration == d {
		e.mu.Unlock()
		return
	}
	e.duration = d
	if d > 0 {
		e.seekable = model.Ranges{{Start: 0, End: d}}
	}
	e.mu.Unlock()

	e.bus.Emit(events.DurationChange, d)
}

func (e *Element) SetDimensions(width, height int) {
	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()
}

// AdvanceTo walks the readiness ladder up to rs, emitting the ladder event
// for each newly reached level. Reaching HaveFutureData while a stalled
// playback is pending resumes it.
func (e *Element) AdvanceTo(rs ReadyState) {
	e.mu.Lock()
	if e.destroyed || rs <= e.readyState {
		e.mu.Unlock()
		return
	}
	var emits []string
	for level := e.readyState + 1; level <= rs; level++ {
		switch level {
		case HaveMetadata:
			emits = append(emits, events.LoadedMetadata)
		case HaveCurrentData:
			emits = append(emits, events.LoadedData)
		case HaveFutureData:
			emits = append(emits, events.CanPlay)
		case HaveEnoughData:
			emits = append(emits, events.CanPlayThrough)
		}
	}
	e.readyState = rs
	resumed := false
	if rs >= HaveFutureData && !e.paused && e.waiting {
		e.waiting = false
		e.startClockLocked()
		resumed = true
	}
	e.mu.Unlock()

	for _, ev := range emits {
		e.bus.Emit(ev)
	}
	if resumed {
		e.bus.Emit(events.Playing)
	}
}

// SetBuffered records new buffered ranges and emits progress. A stall whose
// position the new ranges now cover resumes playback.
func (e *Element) SetBuffered(r model.Ranges) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.buffered = r
	resumed := false
	if e.waiting && !e.paused && r.Contains(e.currentTime) {
		e.waiting = false
		e.startClockLocked()
		resumed = true
	}
	e.mu.Unlock()

	e.bus.Emit(events.Progress, r)
	if resumed {
		e.bus.Emit(events.Playing)
	}
}

func (e *Element) SetSeekable(r model.Ranges) {
	e.mu.Lock()
	e.seekable = r
	e.mu.Unlock()
}

// Fail records a fatal transport error, halts the clock, and emits error.
func (e *Element) Fail(code int, message string) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.stopClockLocked()
	e.err = &MediaError{Code: code, Message: message}
	err := e.err
	e.mu.Unlock()

	e.bus.Emit(events.Error, err)
}

// SetPlaybackBlocked arms or clears the autoplay policy. While blocked, Play
// attempts fail with a permission error instead of starting playback,
// modeling platforms that demand a user gesture first.
func (e *Element) SetPlaybackBlocked(blocked bool) {
	e.mu.Lock()
	e.playBlocked = blocked
	e.mu.Unlock()
}

// Play starts or resumes playback. Playback past the end restarts from zero,
// matching platform semantics. A blocked attempt leaves the transport loaded
// and paused; the emitted permission error is not fatal.
func (e *Element) Play() error {
	e.mu.Lock()
	if e.destroyed || !e.paused {
		e.mu.Unlock()
		return nil
	}
	if e.playBlocked {
		e.mu.Unlock()
		err := &MediaError{Code: 7, Message: MediaErrorMessage(7)}
		e.bus.Emit(events.Error, err)
		return err
	}
	if e.ended {
		e.currentTime = 0
		e.ended = false
	}
	e.paused = false
	canAdvance := e.readyState >= HaveFutureData
	if canAdvance {
		e.startClockLocked()
	} else {
		e.waiting = true
	}
	e.mu.Unlock()

	e.bus.Emit(events.Play)
	if canAdvance {
		e.bus.Emit(events.Playing)
	} else {
		e.bus.Emit(events.Waiting)
	}
	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	if e.destroyed || e.paused {
		e.mu.Unlock()
		return
	}
	e.stopClockLocked()
	e.paused = true
	e.waiting = false
	e.mu.Unlock()

	e.bus.Emit(events.Pause)
}

// Seek moves the position, clamped to [0, duration] when the duration is
// known, emitting seeking, timeupdate, seeked.
func (e *Element) Seek(t float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	if t < 0 {
		t = 0
	}
	if e.duration > 0 && t > e.duration {
		t = e.duration
	}
	e.seeking = true
	e.currentTime = t
	if t < e.duration {
		e.ended = false
	}
	e.mu.Unlock()

	e.bus.Emit(events.Seeking)
	e.bus.Emit(events.TimeUpdate, t)

	e.mu.Lock()
	e.seeking = false
	e.mu.Unlock()
	e.bus.Emit(events.Seeked, t)
}

func (e *Element) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	e.mu.Lock()
	if e.destroyed || e.volume == v {
		e.mu.Unlock()
		return
	}
	e.volume = v
	muted := e.muted
	e.mu.Unlock()

	e.bus.Emit(events.VolumeChange, v, muted)
}

func (e *Element) SetMuted(m bool) {
	e.mu.Lock()
	if e.destroyed || e.muted == m {
		e.mu.Unlock()
		return
	}
	e.muted = m
	volume := e.volume
	e.mu.Unlock()

	e.bus.Emit(events.VolumeChange, volume, m)
}

func (e *Element) SetRate(r float64) {
	if r <= 0 {
		return
	}
	e.mu.Lock()
	if e.destroyed || e.playbackRate == r {
		e.mu.Unlock()
		return
	}
	e.playbackRate = r
	e.mu.Unlock()

	e.bus.Emit(events.RateChange, r)
}

func (e *Element) Src() string              { return e.getStr(&e.src) }
func (e *Element) CurrentTime() float64     { return e.getF64(&e.currentTime) }
func (e *Element) Duration() float64        { return e.getF64(&e.duration) }
func (e *Element) PlaybackRate() float64    { return e.getF64(&e.playbackRate) }
func (e *Element) Volume() float64          { return e.getF64(&e.volume) }
func (e *Element) Muted() bool              { return e.getBool(&e.muted) }
func (e *Element) Paused() bool             { return e.getBool(&e.paused) }
func (e *Element) EndedPlayback() bool      { return e.getBool(&e.ended) }
func (e *Element) Waiting() bool            { return e.getBool(&e.waiting) }

func (e *Element) ReadyState() ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readyState
}

func (e *Element) Buffered() model.Ranges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffered
}

func (e *Element) Seekable() model.Ranges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seekable
}

func (e *Element) Dimensions() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *Element) Err() *MediaError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Destroy halts the clock and drops every listener. All methods are no-ops
// afterwards so a dangling reference cannot crash a caller.
func (e *Element) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.stopClockLocked()
	e.mu.Unlock()

	e.bus.RemoveAll()
}

func (e *Element) getF64(p *float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *p
}

func (e *Element) getBool(p *bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *p
}

func (e *Element) getStr(p *string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *p
}
