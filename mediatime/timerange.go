package mediatime

import "github.com/samber/mo"

// Range is a span of the timeline starting at Start and lasting Duration.
type Range struct {
	Start    Time `json:"start"`
	Duration Time `json:"duration"`
}

// NewRange builds a range from seconds.
func NewRange(start, duration float64) Range {
	return Range{Start: FromSeconds(start), Duration: FromSeconds(duration)}
}

// End returns Start+Duration.
func (r Range) End() Time {
	return r.Start.Add(r.Duration)
}

// EndOrFallback returns End, or fallback when the duration is not finite.
// Live and open ranges typically pass PositiveInfinity.
func (r Range) EndOrFallback(fallback Time) Time {
	if r.Duration.IsValidFinite() {
		return r.End()
	}
	return fallback
}

// HasPositiveDuration reports whether the range covers any media.
func (r Range) HasPositiveDuration() bool {
	return r.Duration.SecondsOrZero() > 0
}

// Contains reports whether t falls in [Start, End).
func (r Range) Contains(t Time) bool {
	if !t.IsValidFinite() {
		return false
	}
	end := r.EndOrFallback(PositiveInfinity())
	return t.Compare(r.Start) >= 0 && t.Compare(end) < 0
}

// NoRange is the absent range.
func NoRange() mo.Option[Range] {
	return mo.None[Range]()
}

// SomeRange wraps r as a present optional range.
func SomeRange(r Range) mo.Option[Range] {
	return mo.Some(r)
}
