// Package features answers capability questions for the running platform and
// performs fullscreen / picture-in-picture transitions through ordered
// standard-then-vendor-fallback attempts. Availability is three-valued on
// purpose: a platform may expose an API that is present but non-functional,
// and UI layers treat "never possible" differently from "not possible yet".
package features

import (
	"context"
	"errors"

	"playerd/internal/model"
)

var ErrNoPlatform = errors.New("features: no platform configured")

// Attempt is one way of entering or exiting a display mode. Attempts are
// tried in order; the first success wins.
type Attempt struct {
	Name  string
	Enter func(ctx context.Context) error
	Exit  func(ctx context.Context) error
}

// Platform describes what the host environment can do. A nil *Platform means
// no environment has been attached yet.
type Platform struct {
	// VolumeControl reports whether the host honors volume changes. Some
	// hosts accept the call but ignore it; those set this false.
	VolumeControl bool

	Fullscreen []Attempt
	PiP        []Attempt
}

// DetectVolume classifies volume-control availability. hasMedia is false
// before a backend owns an element.
func DetectVolume(p *Platform, hasMedia bool) model.Availability {
	if p == nil || !hasMedia {
		return model.Unavailable
	}
	if !p.VolumeControl {
		return model.Unsupported
	}
	return model.Available
}

func DetectFullscreen(p *Platform, hasMedia bool) model.Availability {
	return detectAttempts(p, hasMedia, func(p *Platform) []Attempt { return p.Fullscreen })
}

func DetectPiP(p *Platform, hasMedia bool) model.Availability {
	return detectAttempts(p, hasMedia, func(p *Platform) []Attempt { return p.PiP })
}

func detectAttempts(p *Platform, hasMedia bool, pick func(*Platform) []Attempt) model.Availability {
	if p == nil || !hasMedia {
		return model.Unavailable
	}
	if len(pick(p)) == 0 {
		return model.Unsupported
	}
	return model.Available
}

// EnterFullscreen tries each fullscreen attempt in order and resolves on the
// first success. All failing returns the last error.
func EnterFullscreen(ctx context.Context, p *Platform) error {
	if p == nil {
		return ErrNoPlatform
	}
	return tryAll(ctx, p.Fullscreen, func(a Attempt) func(context.Context) error { return a.Enter })
}

func ExitFullscreen(ctx context.Context, p *Platform) error {
	if p == nil {
		return ErrNoPlatform
	}
	return tryAll(ctx, p.Fullscreen, func(a Attempt) func(context.Context) error { return a.Exit })
}

func EnterPiP(ctx context.Context, p *Platform) error {
	if p == nil {
		return ErrNoPlatform
	}
	return tryAll(ctx, p.PiP, func(a Attempt) func(context.Context) error { return a.Enter })
}

func ExitPiP(ctx context.Context, p *Platform) error {
	if p == nil {
		return ErrNoPlatform
	}
	return tryAll(ctx, p.PiP, func(a Attempt) func(context.Context) error { return a.Exit })
}

func tryAll(ctx context.Context, attempts []Attempt, pick func(Attempt) func(context.Context) error) error {
	if len(attempts) == 0 {
		return errors.New("features: not supported on this platform")
	}
	var last error
	for _, a := range attempts {
		fn := pick(a)
		if fn == nil {
			continue
		}
		if err := fn(ctx); err != nil {
			last = err
			continue
		}
		return nil
	}
	if last == nil {
		last = errors.New("features: no usable attempt")
	}
	return last
}
