package player

import (
	"context"
	"log"

	"playerd/internal/backend"
	"playerd/internal/events"
	"playerd/internal/model"
	"playerd/internal/state"
)

// attachLocked binds the provider's event stream to the state store and the
// public bus: each backend event maps to zero or more store writes plus
// exactly one public re-emission of the same name. Caller holds p.mu.
func (p *Player) attachLocked(prov backend.Provider) {
	bus := prov.Events()

	// fwd applies the state mapping, then republishes.
	fwd := func(name string, apply func(args []any)) {
		p.offs = append(p.offs, bus.On(name, func(args ...any) {
			if p.destroyed.Load() {
				return
			}
			if apply != nil {
				apply(args)
			}
			p.emit(name, args...)
		}))
	}

	fwd(events.Ready, func([]any) {
		p.st.Batch(map[state.Key]any{
			state.KeyCanSetVolume:  prov.CanSetVolume(),
			state.KeyCanFullscreen: prov.CanFullscreen(),
			state.KeyCanPiP:        prov.CanPiP(),
		})
	})

	fwd(events.LoadStart, nil)
	fwd(events.LoadedMetadata, func([]any) { p.syncMediaFacts(prov) })
	fwd(events.LoadedData, nil)
	fwd(events.CanPlay, func([]any) {
		if p.st.Get(state.KeyLoadingStatus) == model.LoadingActive {
			p.st.Set(state.KeyLoadingStatus, model.LoadingLoaded)
		}
		p.st.Set(state.KeySeekable, prov.Seekable())
	})
	fwd(events.CanPlayThrough, nil)

	fwd(events.Play, func([]any) {
		p.st.Batch(map[state.Key]any{
			state.KeyPaused: false,
			state.KeyEnded:  false,
		})
	})
	fwd(events.Playing, func([]any) {
		p.st.Batch(map[state.Key]any{
			state.KeyPlaying: true,
			state.KeyWaiting: false,
		})
	})
	fwd(events.Pause, func([]any) {
		p.st.Batch(map[state.Key]any{
			state.KeyPaused:  true,
			state.KeyPlaying: false,
		})
	})
	fwd(events.Waiting, func([]any) {
		p.st.Batch(map[state.Key]any{
			state.KeyWaiting: true,
			state.KeyPlaying: false,
		})
	})

	fwd(events.Seeking, func([]any) { p.st.Set(state.KeySeeking, true) })
	fwd(events.Seeked, func(args []any) {
		updates := map[state.Key]any{state.KeySeeking: false}
		if t, ok := argFloat(args, 0); ok {
			updates[state.KeyCurrentTime] = t
		}
		p.st.Batch(updates)
	})
	fwd(events.TimeUpdate, func(args []any) {
		if t, ok := argFloat(args, 0); ok {
			p.st.Set(state.KeyCurrentTime, t)
		}
	})
	fwd(events.DurationChange, func(args []any) {
		if d, ok := argFloat(args, 0); ok {
			p.st.Batch(map[state.Key]any{
				state.KeyDuration:       d,
				state.KeyBufferedAmount: prov.Buffered().Amount(d),
			})
		}
	})

	fwd(events.Progress, func(args []any) {
		if len(args) == 0 {
			return
		}
		pairs, ok := args[0].([]model.TimeRange)
		if !ok {
			return
		}
		buffered := model.Ranges(pairs)
		p.st.Batch(map[state.Key]any{
			state.KeyBuffered:       buffered,
			state.KeyBufferedAmount: buffered.Amount(prov.Duration()),
		})
	})

	fwd(events.VolumeChange, func(args []any) {
		updates := make(map[state.Key]any, 2)
		if v, ok := argFloat(args, 0); ok {
			updates[state.KeyVolume] = v
		}
		if len(args) > 1 {
			if m, ok := args[1].(bool); ok {
				updates[state.KeyMuted] = m
			}
		}
		p.st.Batch(updates)
		p.persistSettings()
	})
	fwd(events.RateChange, func(args []any) {
		if r, ok := argFloat(args, 0); ok {
			p.st.Set(state.KeyPlaybackRate, r)
		}
		p.persistSettings()
	})

	// Ended carries the loop policy: the backend never loops itself.
	p.offs = append(p.offs, bus.On(events.Ended, func(args ...any) {
		if p.destroyed.Load() {
			return
		}
		p.st.Batch(map[state.Key]any{
			state.KeyEnded:   true,
			state.KeyPaused:  true,
			state.KeyPlaying: false,
		})
		p.emit(events.Ended, args...)

		if loop, _ := p.st.Get(state.KeyLoop).(bool); loop {
			prov.Seek(0)
			if err := prov.Play(context.Background()); err != nil {
				log.Printf("player: restarting looped playback: %v", err)
			}
		}
	}))

	fwd(events.Error, func(args []any) {
		code := 0
		msg := ""
		var details any
		if len(args) > 0 {
			if c, ok := args[0].(int); ok {
				code = c
			}
		}
		if len(args) > 1 {
			if s, ok := args[1].(string); ok {
				msg = s
			}
		}
		if len(args) > 2 {
			details = args[2]
		}
		updates := map[state.Key]any{
			state.KeyError: model.NewPlayerError(model.ErrorCode(code), msg, details),
		}
		// A permission denial leaves the media loaded; the attempt merely
		// needs a user gesture. Only transport failures are terminal.
		if model.ErrorCode(code) != model.ErrPermission {
			updates[state.KeyLoadingStatus] = model.LoadingErrored
		}
		p.st.Batch(updates)
		p.met.ErrorReported(code)
	})

	fwd(events.QualitiesChange, func(args []any) {
		if len(args) > 0 {
			if qs, ok := args[0].([]model.VideoQuality); ok {
				p.st.Set(state.KeyQualities, qs)
			}
		}
	})
	fwd(events.QualityChange, nil)
	fwd(events.AudioTracksChange, func(args []any) {
		if len(args) > 0 {
			if ts, ok := args[0].([]model.AudioTrack); ok {
				p.st.Set(state.KeyAudioTracks, ts)
			}
		}
	})
	fwd(events.AudioTrackChange, nil)
	fwd(events.TextTracksChange, func(args []any) {
		if len(args) > 0 {
			if ts, ok := args[0].([]model.TextTrack); ok {
				p.st.Set(state.KeyTextTracks, ts)
			}
		}
	})
	fwd(events.TextTrackChange, nil)

	fwd(events.FullscreenChange, func(args []any) {
		if len(args) > 0 {
			if active, ok := args[0].(bool); ok {
				p.st.Set(state.KeyFullscreenActive, active)
			}
		}
	})
	fwd(events.PiPChange, func(args []any) {
		if len(args) > 0 {
			if active, ok := args[0].(bool); ok {
				p.st.Set(state.KeyPiPActive, active)
			}
		}
	})
}

// detachLocked removes every provider event binding. Caller holds p.mu.
func (p *Player) detachLocked() {
	for _, off := range p.offs {
		off()
	}
	p.offs = nil
}

func (p *Player) syncMediaFacts(prov backend.Provider) {
	w, h := prov.Dimensions()
	d := prov.Duration()
	p.st.Batch(map[state.Key]any{
		state.KeyDuration:       d,
		state.KeyMediaWidth:     w,
		state.KeyMediaHeight:    h,
		state.KeyStreamType:     prov.StreamType(),
		state.KeyBufferedAmount: prov.Buffered().Amount(d),
	})
}

func argFloat(args []any, i int) (float64, bool) {
	if len(args) <= i {
		return 0, false
	}
	f, ok := args[i].(float64)
	return f, ok
}
