package transport

import (
	"sync"

	"github.com/playstate/playstate/signal"
)

// Guarded wraps a sink so it is never invoked once Cancel has returned.
// Emit and Cancel serialize on the same mutex, so a sink must not call
// back into the transport.
type Guarded struct {
	mu        sync.Mutex
	fn        signal.Sink
	cancelled bool
}

// Guard wraps fn.
func Guard(fn signal.Sink) *Guarded {
	return &Guarded{fn: fn}
}

// Emit delivers sig unless the sink was cancelled. It reports whether it did.
func (g *Guarded) Emit(sig signal.Signal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelled || g.fn == nil {
		return false
	}
	g.fn(sig)
	return true
}

// Cancel implements Subscription.
func (g *Guarded) Cancel() {
	g.mu.Lock()
	g.cancelled = true
	g.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (g *Guarded) Cancelled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}
