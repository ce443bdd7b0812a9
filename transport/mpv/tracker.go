package mpv

import (
	"encoding/json"
	"math"
	"time"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
	"github.com/samber/mo"
)

// Properties observed on every connection, in registration order.
var observed = []string{
	"pause",
	"speed",
	"paused-for-cache",
	"mute",
	"time-pos",
	"duration",
	"demuxer-cache-time",
	"seekable",
	"video-params",
	"eof-reached",
}

// routed is a translated signal and the scope it belongs to.
type routed struct {
	item bool
	sig  signal.Signal
}

func player(sig signal.Signal) routed { return routed{sig: sig} }
func item(sig signal.Signal) routed   { return routed{item: true, sig: sig} }

// tracker folds mpv notifications into signals. It keeps the last value it
// reported for each derived quantity so that only changes are emitted.
type tracker struct {
	tick float64

	paused         bool
	speed          float64
	pausedForCache bool
	control        signal.TimeControl
	rate           float64

	// loaded is set between start-file and end-file.
	loaded bool
	// awaitingStart drops item notifications that belong to the file being replaced.
	awaitingStart bool
	ready         bool

	position mediatime.Time
	lastTick mediatime.Time
	ticked   bool
	duration mediatime.Time
	seekable bool
	seekRng  mo.Option[mediatime.Range]
	cacheEnd mediatime.Time
	size     state.Size
}

func newTracker(tick time.Duration) *tracker {
	t := &tracker{tick: tick.Seconds()}
	t.reset()
	t.paused = true
	t.speed = 1
	t.control = signal.TransportPaused
	return t
}

// reset clears everything tied to the current file.
func (t *tracker) reset() {
	t.loaded = false
	t.ready = false
	t.position = mediatime.Invalid()
	t.lastTick = mediatime.Invalid()
	t.ticked = false
	t.duration = mediatime.Invalid()
	t.seekable = false
	t.seekRng = mediatime.NoRange()
	t.cacheEnd = mediatime.Invalid()
	t.size = state.Size{}
}

// expectFile is called when a new file is requested.
func (t *tracker) expectFile() {
	t.reset()
	t.awaitingStart = true
}

// translate returns the signals msg implies. restart reports a
// playback-restart, which completes the oldest acknowledged seek.
func (t *tracker) translate(msg message) (out []routed, restart bool) {
	switch msg.Event {
	case "start-file":
		t.reset()
		t.awaitingStart = false
		t.loaded = true
		out = append(out, item(signal.ItemStatus{Condition: signal.ItemUnknown}))
		out = append(out, t.controlChanged()...)

	case "file-loaded":
		if t.awaitingStart {
			return nil, false
		}
		t.ready = true
		out = append(out, item(t.readyStatus()))

	case "end-file":
		if t.awaitingStart {
			return nil, false
		}
		wasLoaded := t.loaded
		t.loaded = false
		switch msg.Reason {
		case "error":
			reason := msg.FileError
			if reason == "" {
				reason = "playback error"
			}
			out = append(out, item(signal.ItemStatus{Condition: signal.ItemFailed, Reason: reason}))
		case "eof":
			if wasLoaded {
				out = append(out, item(signal.EndOfMedia{}))
			}
		}

	case "playback-restart":
		t.ticked = false
		restart = true
		out = append(out, t.tickChanged()...)

	case "property-change":
		out = t.property(msg.Name, msg.Data)
	}
	return out, restart
}

func (t *tracker) property(name string, data json.RawMessage) []routed {
	switch name {
	case "pause":
		if v, ok := decode[bool](data); ok {
			t.paused = v
		}
		return append(t.rateChanged(), t.controlChanged()...)

	case "speed":
		if v, ok := decode[float64](data); ok {
			t.speed = v
		}
		return t.rateChanged()

	case "paused-for-cache":
		v, _ := decode[bool](data)
		t.pausedForCache = v
		return t.controlChanged()

	case "mute":
		if v, ok := decode[bool](data); ok {
			return []routed{player(signal.MuteChanged{Muted: v})}
		}
	}

	if t.awaitingStart {
		return nil
	}

	switch name {
	case "time-pos":
		v, ok := decode[float64](data)
		if !ok {
			return nil
		}
		t.position = mediatime.FromSeconds(v)
		return t.tickChanged()

	case "duration":
		previous := t.duration
		if v, ok := decode[float64](data); ok {
			t.duration = mediatime.FromSeconds(v)
		} else {
			t.duration = mediatime.Invalid()
		}
		out := t.seekableChanged()
		if t.ready && !previous.IsValidFinite() && t.duration.IsValidFinite() {
			out = append(out, item(t.readyStatus()))
		}
		return out

	case "seekable":
		v, _ := decode[bool](data)
		t.seekable = v
		return t.seekableChanged()

	case "demuxer-cache-time":
		v, ok := decode[float64](data)
		if !ok {
			return nil
		}
		end := mediatime.FromSeconds(v)
		if t.cacheEnd.IsValid() && math.Abs(end.SecondsOrZero()-t.cacheEnd.SecondsOrZero()) < t.tick {
			return nil
		}
		t.cacheEnd = end
		start := t.position
		if !start.IsValidFinite() {
			start = mediatime.Zero
		}
		length := max(0, end.SecondsOrZero()-start.SecondsOrZero())
		return []routed{item(signal.LoadedRange{Range: mediatime.SomeRange(mediatime.NewRange(start.SecondsOrZero(), length))})}

	case "video-params":
		size := videoSize(data)
		if size == t.size {
			return nil
		}
		t.size = size
		return []routed{item(signal.PresentationSize{Size: size})}

	case "eof-reached":
		if v, _ := decode[bool](data); v {
			return []routed{item(signal.EndOfMedia{})}
		}
	}
	return nil
}

func (t *tracker) readyStatus() signal.ItemStatus {
	return signal.ItemStatus{Condition: signal.ItemReady, ItemDuration: t.duration, AssetDuration: t.duration}
}

// currentControl derives the time control status from pause and cache state.
func (t *tracker) currentControl() signal.TimeControl {
	switch {
	case t.paused:
		return signal.TransportPaused
	case t.pausedForCache:
		return signal.WaitingToPlay
	default:
		return signal.TransportPlaying
	}
}

// controlChanged reports a new time control status. Nothing is reported
// while no file is open, so an idle player stays idle.
func (t *tracker) controlChanged() []routed {
	c := t.currentControl()
	if c == t.control {
		return nil
	}
	t.control = c
	if !t.loaded {
		return nil
	}
	return []routed{player(signal.TransportStatus{Control: c})}
}

func (t *tracker) rateChanged() []routed {
	rate := t.speed
	if t.paused {
		rate = 0
	}
	if rate == t.rate {
		return nil
	}
	t.rate = rate
	return []routed{player(signal.RateChanged{Rate: rate})}
}

// tickChanged reports the position when it moved at least one tick interval.
func (t *tracker) tickChanged() []routed {
	if !t.position.IsValid() {
		return nil
	}
	if t.ticked && math.Abs(t.position.SecondsOrZero()-t.lastTick.SecondsOrZero()) < t.tick {
		return nil
	}
	t.ticked = true
	t.lastTick = t.position
	return []routed{item(signal.TimeTick{Time: t.position})}
}

func (t *tracker) seekableChanged() []routed {
	rng := mediatime.NoRange()
	if t.seekable && t.duration.IsValidFinite() {
		rng = mediatime.SomeRange(mediatime.Range{Start: mediatime.Zero, Duration: t.duration})
	}
	if rng == t.seekRng {
		return nil
	}
	t.seekRng = rng
	return []routed{item(signal.SeekableRange{Range: rng})}
}

func decode[T any](data json.RawMessage) (T, bool) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

type videoParams struct {
	W  float64 `json:"w"`
	H  float64 `json:"h"`
	DW float64 `json:"dw"`
	DH float64 `json:"dh"`
}

// videoSize reads the display size from video-params, falling back to the coded size.
func videoSize(data json.RawMessage) state.Size {
	params, ok := decode[videoParams](data)
	if !ok {
		return state.Size{}
	}
	if params.DW > 0 && params.DH > 0 {
		return state.Size{Width: params.DW, Height: params.DH}
	}
	return state.Size{Width: params.W, Height: params.H}
}
