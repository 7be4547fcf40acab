package element

import (
	"time"

	"playerd/internal/events"
)

// startClockLocked launches the position clock. Caller holds e.mu.
func (e *Element) startClockLocked() {
	if e.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	e.stopTick = stop
	e.lastTick = e.now()
	go func() {
		t := time.NewTicker(e.tick)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				e.onTick()
			}
		}
	}()
}

// stopClockLocked halts the position clock. Caller holds e.mu.
func (e *Element) stopClockLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
}

func (e *Element) onTick() {
	e.mu.Lock()
	if e.destroyed || e.paused || e.waiting {
		e.lastTick = e.now()
		e.mu.Unlock()
		return
	}
	now := e.now()
	dt := now.Sub(e.lastTick).Seconds() * e.playbackRate
	e.lastTick = now
	e.mu.Unlock()

	e.advanceBy(dt)
}

// advanceBy moves the playback position forward by dt seconds, entering a
// stall when the position leaves the buffered ranges and ending playback at
// the duration.
func (e *Element) advanceBy(dt float64) {
	e.mu.Lock()
	if e.destroyed || e.paused {
		e.mu.Unlock()
		return
	}
	pos := e.currentTime + dt

	if e.duration > 0 && pos >= e.duration {
		e.currentTime = e.duration
		e.ended = true
		e.paused = true
		e.stopClockLocked()
		d := e.duration
		e.mu.Unlock()

		e.bus.Emit(events.TimeUpdate, d)
		e.bus.Emit(events.Pause)
		e.bus.Emit(events.Ended)
		return
	}

	if len(e.buffered) > 0 && !e.buffered.Contains(pos) {
		e.waiting = true
		e.stopClockLocked()
		e.mu.Unlock()

		e.bus.Emit(events.Waiting)
		return
	}

	e.currentTime = pos
	e.mu.Unlock()

	e.bus.Emit(events.TimeUpdate, pos)
}
