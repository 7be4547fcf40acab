package model

// TimeRange is a [Start, End] interval in seconds. Producers are not required
// to emit sorted or merged lists; consumers must tolerate overlaps.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Ranges []TimeRange

// Contains reports whether t falls inside any range in the list.
func (r Ranges) Contains(t float64) bool {
	for _, tr := range r {
		if t >= tr.Start && t <= tr.End {
			return true
		}
	}
	return false
}

// End returns the furthest end point across all ranges, or 0 for an empty
// list.
func (r Ranges) End() float64 {
	var end float64
	for _, tr := range r {
		if tr.End > end {
			end = tr.End
		}
	}
	return end
}

// Amount returns the buffered amount derived from the range list and the
// media duration: the furthest end point clamped to [0, duration]. A zero
// duration always yields zero.
func (r Ranges) Amount(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	end := r.End()
	if end > duration {
		return duration
	}
	if end < 0 {
		return 0
	}
	return end
}
