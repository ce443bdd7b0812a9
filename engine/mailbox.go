package engine

import "sync"

// mailbox is an unbounded FIFO. push never blocks, so transport callbacks
// can hand off signals without waiting on the engine loop.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
	closed bool
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{notify: make(chan struct{}, 1)}
}

// push appends v. It reports false once the mailbox is closed.
func (b *mailbox[T]) push(v T) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.items = append(b.items, v)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return true
}

// close stops accepting items. Items already queued can still be popped.
func (b *mailbox[T]) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// pop blocks until an item is available, the mailbox is closed and drained,
// or stop fires. A nil stop never fires.
func (b *mailbox[T]) pop(stop <-chan struct{}) (v T, ok bool) {
	for {
		b.mu.Lock()
		if len(b.items) > 0 {
			v = b.items[0]
			var zero T
			b.items[0] = zero
			b.items = b.items[1:]
			b.mu.Unlock()
			return v, true
		}
		closed := b.closed
		b.mu.Unlock()

		if closed {
			return v, false
		}

		select {
		case <-b.notify:
		case <-stop:
			return v, false
		}
	}
}

// drain removes and returns every queued item.
func (b *mailbox[T]) drain() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items
	b.items = nil
	return items
}
