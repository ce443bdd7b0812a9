// Package signal defines the asynchronous notifications a transport delivers
// to the engine, and the generation envelope that scopes them to one item.
package signal

import (
	"fmt"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
	"github.com/samber/mo"
)

// Signal is one notification from the transport layer.
type Signal interface {
	signal()
	fmt.Stringer
}

// Generation identifies the item a signal belongs to.
// PlayerScope marks signals that describe the player rather than an item.
type Generation uint64

const PlayerScope Generation = 0

// Envelope carries a signal tagged with the generation it was produced for.
type Envelope struct {
	Generation Generation
	Signal     Signal
}

// Sink receives signals. Implementations must not block for long.
type Sink func(Signal)

// TimeControl is the transport's own notion of what it is doing.
type TimeControl int

const (
	WaitingToPlay TimeControl = iota
	TransportPaused
	TransportPlaying
)

func (t TimeControl) String() string {
	switch t {
	case WaitingToPlay:
		return "waiting-to-play"
	case TransportPaused:
		return "paused"
	case TransportPlaying:
		return "playing"
	default:
		return fmt.Sprintf("time-control(%d)", int(t))
	}
}

// ItemCondition is the readiness of the loaded item.
type ItemCondition int

const (
	ItemUnknown ItemCondition = iota
	ItemReady
	ItemFailed
)

// TransportStatus reports a change of the transport's time control status.
type TransportStatus struct {
	Control TimeControl
}

// RateChanged reports the transport's actual playback rate.
type RateChanged struct {
	Rate float64
}

// ItemStatus reports readiness or failure of the current item.
// ItemDuration is preferred over AssetDuration when it is usable.
type ItemStatus struct {
	Condition     ItemCondition
	ItemDuration  mediatime.Time
	AssetDuration mediatime.Time
	Reason        string
}

// LoadedRange reports the first buffered range of the item.
type LoadedRange struct {
	Range mo.Option[mediatime.Range]
}

// SeekableRange reports the first seekable range of the item.
type SeekableRange struct {
	Range mo.Option[mediatime.Range]
}

// PresentationSize reports the video dimensions.
type PresentationSize struct {
	Size state.Size
}

// ExternalPlayback reports whether output is routed to an external device.
type ExternalPlayback struct {
	Active bool
}

// MuteChanged reports the transport's mute flag.
type MuteChanged struct {
	Muted bool
}

// TimeTick is a periodic playback position update.
type TimeTick struct {
	Time mediatime.Time
}

// EndOfMedia reports that the item played to its end.
type EndOfMedia struct{}

func (TransportStatus) signal()  {}
func (RateChanged) signal()      {}
func (ItemStatus) signal()       {}
func (LoadedRange) signal()      {}
func (SeekableRange) signal()    {}
func (PresentationSize) signal() {}
func (ExternalPlayback) signal() {}
func (MuteChanged) signal()      {}
func (TimeTick) signal()         {}
func (EndOfMedia) signal()       {}

func (s TransportStatus) String() string { return "transport " + s.Control.String() }
func (s RateChanged) String() string     { return fmt.Sprintf("rate %g", s.Rate) }
func (s ItemStatus) String() string {
	switch s.Condition {
	case ItemReady:
		return "item ready " + s.Duration().String()
	case ItemFailed:
		return "item failed: " + s.Reason
	default:
		return "item unknown"
	}
}
func (s LoadedRange) String() string      { return "loaded " + describeRange(s.Range) }
func (s SeekableRange) String() string    { return "seekable " + describeRange(s.Range) }
func (s PresentationSize) String() string { return fmt.Sprintf("size %gx%g", s.Size.Width, s.Size.Height) }
func (s ExternalPlayback) String() string { return fmt.Sprintf("external %t", s.Active) }
func (s MuteChanged) String() string      { return fmt.Sprintf("mute %t", s.Muted) }
func (s TimeTick) String() string         { return "tick " + s.Time.String() }
func (EndOfMedia) String() string         { return "end of media" }

// Duration returns the best available duration of the item.
func (s ItemStatus) Duration() mediatime.Time {
	if s.ItemDuration.IsValidFinite() {
		return s.ItemDuration
	}
	return s.AssetDuration
}

func describeRange(r mo.Option[mediatime.Range]) string {
	v, ok := r.Get()
	if !ok {
		return "none"
	}
	return fmt.Sprintf("[%s, %s)", v.Start, v.EndOrFallback(mediatime.PositiveInfinity()))
}
