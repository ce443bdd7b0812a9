// Package engine merges transport signals and caller commands into one
// consistent, deduplicated stream of playback snapshots.
//
// A single loop goroutine owns the working snapshot. Commands and signals
// are queued onto it, applied in arrival order, and the resulting snapshot
// is republished only when it differs from the last one.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/transport"
)

var (
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("engine closed")
)

// event is anything the loop consumes.
type event interface{}

type command struct {
	run   func(*loop) error
	reply chan error
}

type seekDone struct {
	generation signal.Generation
	target     mediatime.Time
	ok         bool
	completion func(bool)
}

type shutdown struct{}

// Engine is the playback state aggregator. It exclusively owns its transport.
type Engine struct {
	id        string
	transport transport.Transport

	inbox *mailbox[event]
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu        sync.RWMutex
	published state.PlayerState
	subs      map[*Subscription]struct{}
}

// loop is the state the loop goroutine owns.
type loop struct {
	e         *Engine
	model     model
	playerSub transport.Subscription
	itemSub   transport.Subscription
	after     []func()
}

// New starts an engine on top of t.
func New(t transport.Transport, opts ...Option) *Engine {
	o := options{rate: 1}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		id:        uuid.NewString(),
		transport: t,
		inbox:     newMailbox[event](),
		done:      make(chan struct{}),
		subs:      make(map[*Subscription]struct{}),
	}

	l := &loop{e: e, model: newModel()}
	l.model.initialize(o.rate, o.muted)
	e.published = l.model.snapshot

	l.playerSub = t.Observe(e.sinkFor(signal.PlayerScope))
	if o.muted {
		if err := t.SetMuted(true); err != nil {
			log.Warnf("engine %s: initial mute: %v", e.id, err)
		}
	}

	go l.run()
	return e
}

// ID identifies the engine in logs.
func (e *Engine) ID() string {
	return e.id
}

// State returns the last published snapshot.
func (e *Engine) State() state.PlayerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published
}

// Done is closed once the engine has shut down.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// sinkFor returns a sink that tags signals with gen and hands them to the loop.
func (e *Engine) sinkFor(gen signal.Generation) signal.Sink {
	return func(sig signal.Signal) {
		e.inbox.push(signal.Envelope{Generation: gen, Signal: sig})
	}
}

// exec runs fn on the loop goroutine and waits for its result.
func (e *Engine) exec(fn func(*loop) error) error {
	c := command{run: fn, reply: make(chan error, 1)}
	if !e.inbox.push(c) {
		return ErrClosed
	}

	select {
	case err := <-c.reply:
		return err
	case <-e.done:
		return ErrClosed
	}
}

// Close detaches every signal source, closes the transport and ends all
// subscriptions. It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.inbox.push(shutdown{}) {
			<-e.done
		}
	})
	return e.closeErr
}

func (l *loop) run() {
	e := l.e
	defer close(e.done)

	for {
		ev, ok := e.inbox.pop(nil)
		if !ok {
			return
		}

		var reply func()

		switch ev := ev.(type) {
		case signal.Envelope:
			if ev.Generation != signal.PlayerScope && ev.Generation != l.model.generation {
				log.Debugf("engine %s: dropped stale %s from generation %d", e.id, ev.Signal, ev.Generation)
				continue
			}
			l.model.apply(ev.Signal)

		case command:
			err := ev.run(l)
			reply = func() { ev.reply <- err }

		case seekDone:
			l.model.seekFinished(ev.generation, ev.target, ev.ok)
			if ev.completion != nil {
				completion, ok := ev.completion, ev.ok
				l.after = append(l.after, func() { go completion(ok) })
			}

		case shutdown:
			l.shutdown()
			return
		}

		l.publish()
		if reply != nil {
			reply()
		}
		for _, fn := range l.after {
			fn()
		}
		l.after = l.after[:0]
	}
}

// publish republishes the working snapshot if it changed.
func (l *loop) publish() {
	e := l.e
	snapshot := l.model.snapshot

	e.mu.Lock()
	defer e.mu.Unlock()

	if snapshot.Equal(e.published) {
		return
	}
	e.published = snapshot
	for sub := range e.subs {
		sub.box.push(snapshot)
	}
}

func (l *loop) detachItem() {
	if l.itemSub != nil {
		l.itemSub.Cancel()
		l.itemSub = nil
	}
}

func (l *loop) shutdown() {
	e := l.e

	l.detachItem()
	if l.playerSub != nil {
		l.playerSub.Cancel()
		l.playerSub = nil
	}

	// Seek callbacks fired by the transport while closing fail to push and
	// complete their callers directly.
	e.inbox.close()

	if err := e.transport.Close(); err != nil {
		e.closeErr = fmt.Errorf("close transport: %w", err)
	}

	for _, ev := range e.inbox.drain() {
		if done, ok := ev.(seekDone); ok && done.completion != nil {
			go done.completion(done.ok)
		}
	}

	e.mu.Lock()
	for sub := range e.subs {
		sub.box.close()
	}
	e.subs = map[*Subscription]struct{}{}
	e.mu.Unlock()

	log.Debugf("engine %s: closed", e.id)
}
