package player

import (
	"context"
	"time"

	"playerd/internal/events"
	"playerd/internal/model"
	"playerd/internal/state"
)

func (p *Player) Play(ctx context.Context) error {
	if p.destroyed.Load() {
		return nil
	}
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.Play(ctx)
}

func (p *Player) Pause() {
	if prov := p.activeProvider(); prov != nil {
		prov.Pause()
	}
}

// Stop pauses playback and rewinds to the start.
func (p *Player) Stop() {
	if prov := p.activeProvider(); prov != nil {
		prov.Stop()
	}
}

func (p *Player) Seek(t float64) {
	if prov := p.activeProvider(); prov != nil {
		prov.Seek(t)
	}
}

// SetVolume clamps v to [0, 1]. Without an active provider the value is
// still recorded and persisted so it applies to the next one.
func (p *Player) SetVolume(v float64) {
	if p.destroyed.Load() {
		return
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if prov := p.activeProvider(); prov != nil {
		prov.SetVolume(v)
		return
	}
	if p.st.Get(state.KeyVolume) == v {
		return
	}
	p.st.Set(state.KeyVolume, v)
	p.persistSettings()
	p.emit(events.VolumeChange, v, p.st.Get(state.KeyMuted))
}

func (p *Player) SetMuted(m bool) {
	if p.destroyed.Load() {
		return
	}
	if prov := p.activeProvider(); prov != nil {
		prov.SetMuted(m)
		return
	}
	if p.st.Get(state.KeyMuted) == m {
		return
	}
	p.st.Set(state.KeyMuted, m)
	p.persistSettings()
	p.emit(events.VolumeChange, p.st.Get(state.KeyVolume), m)
}

func (p *Player) SetRate(r float64) {
	if p.destroyed.Load() || r <= 0 {
		return
	}
	if prov := p.activeProvider(); prov != nil {
		prov.SetRate(r)
		return
	}
	if p.st.Get(state.KeyPlaybackRate) == r {
		return
	}
	p.st.Set(state.KeyPlaybackRate, r)
	p.persistSettings()
	p.emit(events.RateChange, r)
}

func (p *Player) SetLoop(loop bool) {
	if p.destroyed.Load() {
		return
	}
	p.st.Set(state.KeyLoop, loop)
}

func (p *Player) SetAutoplay(autoplay bool) {
	if p.destroyed.Load() {
		return
	}
	p.st.Set(state.KeyAutoplay, autoplay)
}

func (p *Player) SelectQuality(ctx context.Context, id string) error {
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.SelectQuality(ctx, id)
}

func (p *Player) SelectAudioTrack(ctx context.Context, id string) error {
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.SelectAudioTrack(ctx, id)
}

func (p *Player) SetTextTrackMode(id string, mode model.TextTrackMode) error {
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.SetTextTrackMode(id, mode)
}

// EnterFullscreen exits Picture-in-Picture first when it is active: the two
// surfaces are mutually exclusive.
func (p *Player) EnterFullscreen(ctx context.Context) error {
	if p.destroyed.Load() {
		return nil
	}
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	if active, _ := p.st.Get(state.KeyPiPActive).(bool); active {
		if err := prov.ExitPiP(ctx); err != nil {
			return err
		}
	}
	return prov.EnterFullscreen(ctx)
}

func (p *Player) ExitFullscreen(ctx context.Context) error {
	if p.destroyed.Load() {
		return nil
	}
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.ExitFullscreen(ctx)
}

// EnterPiP exits fullscreen first when it is active.
func (p *Player) EnterPiP(ctx context.Context) error {
	if p.destroyed.Load() {
		return nil
	}
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	if active, _ := p.st.Get(state.KeyFullscreenActive).(bool); active {
		if err := prov.ExitFullscreen(ctx); err != nil {
			return err
		}
	}
	return prov.EnterPiP(ctx)
}

func (p *Player) ExitPiP(ctx context.Context) error {
	if p.destroyed.Load() {
		return nil
	}
	prov := p.activeProvider()
	if prov == nil {
		return ErrNoProvider
	}
	return prov.ExitPiP(ctx)
}

// MarkActive records user activity: the user becomes active, controls become
// visible, and the idle timer restarts.
func (p *Player) MarkActive() {
	if p.destroyed.Load() {
		return
	}
	p.setActivity(true)

	p.mu.Lock()
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
	if p.idleAfter > 0 {
		p.idleTimer = time.AfterFunc(p.idleAfter, p.markIdle)
	}
	p.mu.Unlock()
}

func (p *Player) markIdle() {
	if p.destroyed.Load() {
		return
	}
	// Keep controls up while the pointer rests over the surface.
	if over, _ := p.st.Get(state.KeyPointerOver).(bool); over {
		return
	}
	p.setActivity(false)
}

func (p *Player) setActivity(active bool) {
	if cur, _ := p.st.Get(state.KeyUserActive).(bool); cur != active {
		p.st.Set(state.KeyUserActive, active)
		p.emit(events.UserActivityChange, active)
	}
	if cur, _ := p.st.Get(state.KeyControlsVisible).(bool); cur != active {
		p.st.Set(state.KeyControlsVisible, active)
		p.emit(events.ControlsChange, active)
	}
}

// SetPointerOver tracks whether the pointer is over the playback surface.
// Entering counts as activity.
func (p *Player) SetPointerOver(over bool) {
	if p.destroyed.Load() {
		return
	}
	p.st.Set(state.KeyPointerOver, over)
	if over {
		p.MarkActive()
	}
}
