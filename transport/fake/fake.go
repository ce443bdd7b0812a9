// Package fake provides a scriptable in-memory transport.
// Tests drive it by emitting signals and completing seeks by hand.
package fake

import (
	"sync"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/transport"
)

// Command is a recorded call into the transport.
type Command struct {
	Name      string
	URL       string
	Rate      float64
	Immediate bool
	Target    mediatime.Time
	Muted     bool
}

type sink struct {
	mu        sync.Mutex
	fn        signal.Sink
	cancelled bool
	sticky    bool
}

func (s *sink) emit(sig signal.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled && !s.sticky {
		return false
	}
	s.fn(sig)
	return true
}

func (s *sink) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

type pendingSeek struct {
	target mediatime.Time
	done   func(bool)
}

// Transport records commands and replays scripted signals.
type Transport struct {
	// IgnoreCancel keeps cancelled item sinks callable, imitating a transport
	// that delivers late callbacks for replaced items.
	IgnoreCancel bool

	// AutoSeek completes every seek immediately with SeekResult.
	AutoSeek   bool
	SeekResult bool

	// OnLoad runs after each successful Load with an emitter bound to the new item.
	OnLoad func(url string, emit func(signal.Signal))

	// LoadErr, when set, is returned by Load.
	LoadErr error

	mu       sync.Mutex
	player   []*sink
	items    []*sink
	commands []Command
	seeks    []pendingSeek
	closed   bool
}

// New returns an empty fake transport.
func New() *Transport {
	return &Transport{}
}

var _ transport.Transport = (*Transport)(nil)

func (t *Transport) record(c Command) {
	t.mu.Lock()
	t.commands = append(t.commands, c)
	t.mu.Unlock()
}

// Observe implements transport.Transport.
func (t *Transport) Observe(fn signal.Sink) transport.Subscription {
	s := &sink{fn: fn}
	t.mu.Lock()
	t.player = append(t.player, s)
	t.mu.Unlock()
	return s
}

// Load implements transport.Transport.
func (t *Transport) Load(url string, fn signal.Sink) (transport.Subscription, error) {
	t.record(Command{Name: "load", URL: url})

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, transport.ErrClosed
	}
	if t.LoadErr != nil {
		err := t.LoadErr
		t.mu.Unlock()
		return nil, err
	}
	s := &sink{fn: fn, sticky: t.IgnoreCancel}
	t.items = append(t.items, s)
	hook := t.OnLoad
	t.mu.Unlock()

	if hook != nil {
		go hook(url, func(sig signal.Signal) { s.emit(sig) })
	}
	return s, nil
}

// Play implements transport.Transport.
func (t *Transport) Play(rate float64, immediate bool) error {
	t.record(Command{Name: "play", Rate: rate, Immediate: immediate})
	return nil
}

// Pause implements transport.Transport.
func (t *Transport) Pause() error {
	t.record(Command{Name: "pause"})
	return nil
}

// Seek implements transport.Transport.
func (t *Transport) Seek(target mediatime.Time, done func(bool)) {
	t.record(Command{Name: "seek", Target: target})

	t.mu.Lock()
	if t.AutoSeek {
		ok := t.SeekResult
		t.mu.Unlock()
		go done(ok)
		return
	}
	t.seeks = append(t.seeks, pendingSeek{target: target, done: done})
	t.mu.Unlock()
}

// SetMuted implements transport.Transport.
func (t *Transport) SetMuted(muted bool) error {
	t.record(Command{Name: "mute", Muted: muted})
	return nil
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	t.record(Command{Name: "close"})
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

// EmitPlayer delivers sig to every live player scoped sink.
func (t *Transport) EmitPlayer(sig signal.Signal) {
	t.mu.Lock()
	sinks := append([]*sink(nil), t.player...)
	t.mu.Unlock()

	for _, s := range sinks {
		s.emit(sig)
	}
}

// EmitItem delivers sig to the most recently loaded item. It reports whether
// the sink accepted the signal.
func (t *Transport) EmitItem(sig signal.Signal) bool {
	t.mu.Lock()
	if len(t.items) == 0 {
		t.mu.Unlock()
		return false
	}
	s := t.items[len(t.items)-1]
	t.mu.Unlock()
	return s.emit(sig)
}

// EmitToLoad delivers sig to the sink attached by the n-th Load (0-based).
func (t *Transport) EmitToLoad(n int, sig signal.Signal) bool {
	t.mu.Lock()
	if n < 0 || n >= len(t.items) {
		t.mu.Unlock()
		return false
	}
	s := t.items[n]
	t.mu.Unlock()
	return s.emit(sig)
}

// CompleteSeek finishes the oldest pending seek. It reports whether one was pending.
func (t *Transport) CompleteSeek(ok bool) bool {
	t.mu.Lock()
	if len(t.seeks) == 0 {
		t.mu.Unlock()
		return false
	}
	p := t.seeks[0]
	t.seeks = t.seeks[1:]
	t.mu.Unlock()

	p.done(ok)
	return true
}

// PendingSeeks returns the targets of seeks that have not completed.
func (t *Transport) PendingSeeks() []mediatime.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	targets := make([]mediatime.Time, len(t.seeks))
	for i, p := range t.seeks {
		targets[i] = p.target
	}
	return targets
}

// Commands returns a copy of every recorded command.
func (t *Transport) Commands() []Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Command(nil), t.commands...)
}

// CommandNames returns the names of the recorded commands in order.
func (t *Transport) CommandNames() []string {
	cmds := t.Commands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// Loads returns how many items were loaded.
func (t *Transport) Loads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
