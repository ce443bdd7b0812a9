package engine

import (
	"sync"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
	"github.com/samber/mo"
)

// Subscription receives every published snapshot in publish order,
// starting with the snapshot current at subscription time.
type Subscription struct {
	box  *mailbox[state.PlayerState]
	out  chan state.PlayerState
	stop chan struct{}
	once sync.Once

	detach func(*Subscription)
}

func newSubscription(detach func(*Subscription)) *Subscription {
	s := &Subscription{
		box:    newMailbox[state.PlayerState](),
		out:    make(chan state.PlayerState),
		stop:   make(chan struct{}),
		detach: detach,
	}
	go s.pump()
	return s
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		v, ok := s.box.pop(s.stop)
		if !ok {
			return
		}
		select {
		case s.out <- v:
		case <-s.stop:
			return
		}
	}
}

// C delivers snapshots. It is closed after Close or when the engine shuts down.
func (s *Subscription) C() <-chan state.PlayerState {
	return s.out
}

// Close detaches the subscription. Pending snapshots are discarded.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.detach != nil {
			s.detach(s)
		}
		s.box.close()
		close(s.stop)
	})
}

// Subscribe attaches a new subscriber. On a closed engine the returned
// subscription's channel is already closed.
func (e *Engine) Subscribe() *Subscription {
	sub := newSubscription(e.unsubscribe)

	err := e.exec(func(l *loop) error {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.subs[sub] = struct{}{}
		sub.box.push(e.published)
		return nil
	})
	if err != nil {
		sub.box.close()
	}
	return sub
}

func (e *Engine) unsubscribe(sub *Subscription) {
	e.mu.Lock()
	delete(e.subs, sub)
	e.mu.Unlock()
}

// Stream is a field of the snapshot stream, deduplicated on that field.
type Stream[T comparable] struct {
	sub *Subscription
	out chan T
}

// Select derives a stream of pick(snapshot) from sub, emitting a value only
// when it differs from the previous one. Closing the stream closes sub.
func Select[T comparable](sub *Subscription, pick func(state.PlayerState) T) *Stream[T] {
	st := &Stream[T]{sub: sub, out: make(chan T)}

	go func() {
		defer close(st.out)

		var (
			last    T
			started bool
		)
		for snapshot := range sub.C() {
			v := pick(snapshot)
			if started && v == last {
				continue
			}
			last, started = v, true

			select {
			case st.out <- v:
			case <-sub.stop:
				return
			}
		}
	}()

	return st
}

// C delivers field values.
func (s *Stream[T]) C() <-chan T {
	return s.out
}

// Close detaches the underlying subscription.
func (s *Stream[T]) Close() {
	s.sub.Close()
}

// Statuses streams the playback status.
func (e *Engine) Statuses() *Stream[state.PlaybackStatus] {
	return Select(e.Subscribe(), func(s state.PlayerState) state.PlaybackStatus { return s.PlaybackStatus })
}

// Buffering streams the buffering state.
func (e *Engine) Buffering() *Stream[state.BufferingState] {
	return Select(e.Subscribe(), func(s state.PlayerState) state.BufferingState { return s.BufferingState })
}

// CurrentTimes streams the playback position.
func (e *Engine) CurrentTimes() *Stream[mediatime.Time] {
	return Select(e.Subscribe(), func(s state.PlayerState) mediatime.Time { return s.CurrentTime })
}

// Durations streams the item duration.
func (e *Engine) Durations() *Stream[mediatime.Time] {
	return Select(e.Subscribe(), func(s state.PlayerState) mediatime.Time { return s.Duration })
}

// Sizes streams the presentation size.
func (e *Engine) Sizes() *Stream[state.Size] {
	return Select(e.Subscribe(), func(s state.PlayerState) state.Size { return s.PresentationSize })
}

// SeekableRanges streams the seekable range.
func (e *Engine) SeekableRanges() *Stream[mo.Option[mediatime.Range]] {
	return Select(e.Subscribe(), func(s state.PlayerState) mo.Option[mediatime.Range] { return s.SeekableRange })
}

// LoadedRanges streams the loaded range.
func (e *Engine) LoadedRanges() *Stream[mo.Option[mediatime.Range]] {
	return Select(e.Subscribe(), func(s state.PlayerState) mo.Option[mediatime.Range] { return s.LoadedTimeRange })
}

// Mutes streams the mute flag.
func (e *Engine) Mutes() *Stream[bool] {
	return Select(e.Subscribe(), func(s state.PlayerState) bool { return s.IsMuted })
}

// Rates streams the playback rate.
func (e *Engine) Rates() *Stream[float64] {
	return Select(e.Subscribe(), func(s state.PlayerState) float64 { return s.Rate })
}

// ExternalPlayback streams the external output flag.
func (e *Engine) ExternalPlayback() *Stream[bool] {
	return Select(e.Subscribe(), func(s state.PlayerState) bool { return s.IsExternalPlaybackActive })
}
