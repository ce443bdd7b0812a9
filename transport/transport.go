// Package transport defines the contract between the playback engine and
// the component that actually moves media: it accepts commands and reports
// what happened through signals.
package transport

import (
	"errors"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
)

// ErrClosed is returned by transports that have been closed.
var ErrClosed = errors.New("transport closed")

// Subscription detaches a sink. After Cancel returns the sink is never invoked again.
type Subscription interface {
	Cancel()
}

// Transport is the single underlying session owned by an engine.
type Transport interface {
	// Observe attaches a sink for player scoped signals: time control status,
	// rate, mute and external output.
	Observe(sink signal.Sink) Subscription

	// Load replaces the current item and attaches a sink for the new item's
	// signals. The caller cancels the previous item subscription first.
	Load(url string, sink signal.Sink) (Subscription, error)

	// Play starts playback at rate. Immediate skips any ramp or stall
	// minimization the transport would otherwise apply.
	Play(rate float64, immediate bool) error

	Pause() error

	// Seek moves to target. done is invoked exactly once with the outcome.
	Seek(target mediatime.Time, done func(ok bool))

	SetMuted(muted bool) error

	Close() error
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Cancel calls f.
func (f SubscriptionFunc) Cancel() {
	if f != nil {
		f()
	}
}
