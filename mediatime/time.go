// Package mediatime provides normalized media time values and time ranges.
//
// All arithmetic is total: invalid or indefinite inputs collapse to zero
// seconds (or to a caller supplied fallback) instead of propagating NaN.
package mediatime

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Time is a point on the media timeline measured in seconds.
// The zero value is a valid time of zero seconds.
type Time struct {
	seconds float64
	invalid bool
}

// Zero is the start of the timeline.
var Zero = Time{}

// Invalid returns a time that carries no usable value.
func Invalid() Time {
	return Time{invalid: true}
}

// PositiveInfinity returns an unbounded time, used as the end of open ranges.
func PositiveInfinity() Time {
	return Time{seconds: math.Inf(1)}
}

// FromSeconds converts seconds into a Time. NaN becomes Invalid.
func FromSeconds(seconds float64) Time {
	if math.IsNaN(seconds) {
		return Invalid()
	}
	return Time{seconds: seconds}
}

// FromDuration converts a Go duration into a Time.
func FromDuration(d time.Duration) Time {
	return FromSeconds(d.Seconds())
}

// IsValid reports whether t carries a value, finite or not.
func (t Time) IsValid() bool {
	return !t.invalid
}

// IsValidFinite reports whether t is valid, finite and not negative.
func (t Time) IsValidFinite() bool {
	return !t.invalid && !math.IsInf(t.seconds, 0) && t.seconds >= 0
}

// SecondsOrZero returns the seconds value, or 0 when t is not valid and finite.
func (t Time) SecondsOrZero() float64 {
	if !t.IsValidFinite() {
		return 0
	}
	return t.seconds
}

// Duration converts t into a Go duration, 0 when t is not valid and finite.
func (t Time) Duration() time.Duration {
	return time.Duration(t.SecondsOrZero() * float64(time.Second))
}

// Add returns t+u. Invalid operands count as zero.
func (t Time) Add(u Time) Time {
	return FromSeconds(t.SecondsOrZero() + u.SecondsOrZero())
}

// Sub returns t-u. Invalid operands count as zero.
func (t Time) Sub(u Time) Time {
	return FromSeconds(t.SecondsOrZero() - u.SecondsOrZero())
}

// Compare returns -1, 0 or +1. Invalid times order before every valid time.
func (t Time) Compare(u Time) int {
	switch {
	case t.invalid && u.invalid:
		return 0
	case t.invalid:
		return -1
	case u.invalid:
		return 1
	case t.seconds < u.seconds:
		return -1
	case t.seconds > u.seconds:
		return 1
	default:
		return 0
	}
}

// ClampedTo clamps t into [lower, upper]. A bound that is not valid and
// finite is ignored; if neither bound is usable t is returned unchanged.
func (t Time) ClampedTo(lower, upper Time) Time {
	if !lower.IsValidFinite() && !upper.IsValidFinite() {
		return t
	}
	if lower.IsValidFinite() && t.Compare(lower) < 0 {
		return lower
	}
	if upper.IsValidFinite() && t.Compare(upper) > 0 {
		return upper
	}
	return t
}

// String renders t as mm:ss.
func (t Time) String() string {
	return FormatMinutesSeconds(t)
}

// FormatMinutesSeconds renders t as zero padded mm:ss, or "--:--" when t is
// not finite. Negative values render as 00:00.
func FormatMinutesSeconds(t Time) string {
	if t.invalid || math.IsInf(t.seconds, 0) {
		return "--:--"
	}
	total := int(math.Max(t.seconds, 0))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// MarshalJSON encodes finite times as seconds and everything else as null.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.invalid || math.IsInf(t.seconds, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(t.seconds)
}

// UnmarshalJSON is the inverse of MarshalJSON; null decodes to Invalid.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Invalid()
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("decode media time: %w", err)
	}
	*t = FromSeconds(seconds)
	return nil
}
