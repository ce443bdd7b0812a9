package engine

import (
	"context"
	"sync"

	"github.com/playstate/playstate/mediatime"
)

// promise resolves at most once. A resolution that arrives after the waiter
// has gone lands in the buffered channel and is dropped with the promise.
type promise struct {
	once sync.Once
	ch   chan bool
}

func newPromise() *promise {
	return &promise{ch: make(chan bool, 1)}
}

func (p *promise) resolve(ok bool) {
	p.once.Do(func() {
		p.ch <- ok
	})
}

func (p *promise) wait(ctx context.Context) (bool, error) {
	select {
	case ok := <-p.ch:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// SeekAwait seeks to target, clamped to the item, and blocks until the
// transport reports completion or ctx is done.
func (e *Engine) SeekAwait(ctx context.Context, target mediatime.Time) (bool, error) {
	p := newPromise()
	if err := e.Seek(target, false, p.resolve); err != nil {
		return false, err
	}
	return p.wait(ctx)
}
