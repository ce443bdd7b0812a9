// Package mpv drives an mpv process over its JSON IPC socket and reports
// what mpv does as playback signals.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/transport"
	"github.com/samber/lo"
)

// ErrNotRunning is returned when the mpv connection is gone.
var ErrNotRunning = errors.New("mpv is not running")

const (
	commandTimeout = 5 * time.Second
	quitGrace      = 3 * time.Second
)

// Options configure a spawned mpv.
type Options struct {
	Binary       string
	SocketWait   time.Duration
	TickInterval time.Duration
	Title        string
	// Headless disables video and audio output.
	Headless  bool
	ExtraArgs []string
}

// Transport implements transport.Transport on top of mpv.
type Transport struct {
	ipc  *client
	proc *process

	mu        sync.Mutex
	track     *tracker
	observers []*transport.Guarded
	item      *transport.Guarded
	seeks     []*pendingSeek
	closed    bool
}

// pendingSeek is armed once mpv has acknowledged the seek command. Only a
// playback-restart read after that acknowledgement belongs to the seek.
type pendingSeek struct {
	done  func(ok bool)
	armed bool
}

var _ transport.Transport = (*Transport)(nil)

// Start spawns mpv and connects to it.
func Start(ctx context.Context, opts Options) (*Transport, error) {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}

	proc, err := spawn(opts)
	if err != nil {
		return nil, err
	}

	conn, err := proc.dial(ctx, opts.SocketWait)
	if err != nil {
		_ = killProcess(proc.cmd)
		<-proc.exited
		_ = os.Remove(proc.socket)
		return nil, err
	}

	t, err := attach(ctx, conn, opts.TickInterval)
	if err != nil {
		_ = killProcess(proc.cmd)
		<-proc.exited
		_ = os.Remove(proc.socket)
		return nil, err
	}
	t.proc = proc
	return t, nil
}

// Connect attaches to an mpv that is already listening on socket. Close
// disconnects without quitting it.
func Connect(ctx context.Context, socket string, tick time.Duration) (*Transport, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", socket, err)
	}
	return attach(ctx, conn, tick)
}

// attach registers the property observers on conn.
func attach(ctx context.Context, conn net.Conn, tick time.Duration) (*Transport, error) {
	t := &Transport{track: newTracker(tick)}
	t.ipc = newClient(conn, t.handle)

	for i, name := range observed {
		if _, err := t.ipc.call(ctx, "observe_property", i+1, name); err != nil {
			_ = t.ipc.close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return t, nil
}

// handle runs on the IPC read loop. Sinks are invoked outside t.mu.
func (t *Transport) handle(msg message) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	out, restart := t.track.translate(msg)

	var completed *pendingSeek
	if restart {
		if p, i, ok := lo.FindIndexOf(t.seeks, func(p *pendingSeek) bool { return p.armed }); ok {
			completed = p
			t.seeks = append(t.seeks[:i], t.seeks[i+1:]...)
		}
	}
	observers := append([]*transport.Guarded(nil), t.observers...)
	current := t.item
	t.mu.Unlock()

	for _, r := range out {
		if r.item {
			if current != nil {
				current.Emit(r.sig)
			}
			continue
		}
		for _, o := range observers {
			o.Emit(r.sig)
		}
	}

	if completed != nil {
		completed.done(true)
	}
}

func (t *Transport) call(command ...any) error {
	return t.callThen(nil, command...)
}

func (t *Transport) callThen(onReply func(error), command ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if _, err := t.ipc.callThen(ctx, onReply, command...); err != nil {
		return fmt.Errorf("%v: %w", command[0], err)
	}
	return nil
}

// Observe implements transport.Transport.
func (t *Transport) Observe(sink signal.Sink) transport.Subscription {
	g := transport.Guard(sink)

	t.mu.Lock()
	t.observers = append(t.observers, g)
	t.mu.Unlock()

	return transport.SubscriptionFunc(func() {
		g.Cancel()
		t.mu.Lock()
		t.observers = lo.Without(t.observers, g)
		t.mu.Unlock()
	})
}

// Load implements transport.Transport. Pending seeks of the previous file fail.
func (t *Transport) Load(url string, sink signal.Sink) (transport.Subscription, error) {
	target, err := sanitizeMediaTarget(url)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	g := transport.Guard(sink)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, transport.ErrClosed
	}
	if t.item != nil {
		t.item.Cancel()
	}
	t.item = g
	t.track.expectFile()
	stale := t.seeks
	t.seeks = nil
	t.mu.Unlock()

	for _, p := range stale {
		p.done(false)
	}

	if err := t.call("loadfile", target, "replace"); err != nil {
		g.Cancel()
		return nil, err
	}
	log.Debugf("mpv: loaded %s", target)

	return transport.SubscriptionFunc(func() {
		g.Cancel()
		t.mu.Lock()
		if t.item == g {
			t.item = nil
		}
		t.mu.Unlock()
	}), nil
}

// Play implements transport.Transport. mpv has no start-up ramp, so
// immediate only decides whether the speed is forced to rate.
func (t *Transport) Play(rate float64, immediate bool) error {
	if rate <= 0 {
		return t.Pause()
	}
	if immediate || rate != 1 {
		if err := t.call("set_property", "speed", rate); err != nil {
			return err
		}
	}
	return t.call("set_property", "pause", false)
}

// Pause implements transport.Transport.
func (t *Transport) Pause() error {
	return t.call("set_property", "pause", true)
}

// Seek implements transport.Transport. Completion is the first
// playback-restart after mpv acknowledges the command; a rejected command
// completes with false.
func (t *Transport) Seek(target mediatime.Time, done func(ok bool)) {
	p := &pendingSeek{done: lo.Ternary(done != nil, done, func(bool) {})}
	if !target.IsValid() {
		p.done(false)
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		p.done(false)
		return
	}
	t.seeks = append(t.seeks, p)
	t.mu.Unlock()

	arm := func(err error) {
		if err == nil {
			t.mu.Lock()
			p.armed = true
			t.mu.Unlock()
		}
	}
	if err := t.callThen(arm, "seek", target.SecondsOrZero(), "absolute+exact"); err != nil {
		log.Warnf("mpv: seek %s: %v", target, err)
		if t.dropSeek(p) {
			p.done(false)
		}
	}
}

// dropSeek removes p. It reports whether p was still pending.
func (t *Transport) dropSeek(p *pendingSeek) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := lo.IndexOf(t.seeks, p)
	if i < 0 {
		return false
	}
	t.seeks = append(t.seeks[:i], t.seeks[i+1:]...)
	return true
}

// SetMuted implements transport.Transport.
func (t *Transport) SetMuted(muted bool) error {
	return t.call("set_property", "mute", muted)
}

// Close implements transport.Transport. A spawned mpv is asked to quit and
// killed if it does not.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	stale := t.seeks
	t.seeks = nil
	for _, o := range t.observers {
		o.Cancel()
	}
	if t.item != nil {
		t.item.Cancel()
	}
	t.mu.Unlock()

	for _, p := range stale {
		p.done(false)
	}

	if t.proc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, _ = t.ipc.call(ctx, "quit")
		cancel()
	}

	err := t.ipc.close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	if t.proc != nil {
		t.proc.stop(quitGrace)
		_ = os.Remove(t.proc.socket)
	}
	return err
}
