// Package acquire opens a stream with bounded retries. When every attempt
// misses its readiness window the last session is still handed back,
// marked Degraded.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/state"
)

// ErrNotReady is the LastErr of an attempt that did not become ready in time.
var ErrNotReady = errors.New("not ready within the observation window")

// Outcome tells whether the returned engine reached readiness.
type Outcome int

const (
	Degraded Outcome = iota
	Ready
)

func (o Outcome) String() string {
	if o == Ready {
		return "ready"
	}
	return "degraded"
}

// Result is the outcome of Acquire. Engine is owned by the caller.
type Result struct {
	Engine   *engine.Engine
	Outcome  Outcome
	Attempts int
	LastErr  error
}

// Acquirer opens sessions with Open and retries per Policy.
type Acquirer struct {
	Open   func() (*engine.Engine, error)
	Policy Policy
}

// New returns an acquirer with the given opener and policy.
func New(open func() (*engine.Engine, error), policy Policy) *Acquirer {
	return &Acquirer{Open: open, Policy: policy}
}

// Acquire loads url on fresh sessions until one reaches Ready or Playing
// within the window, then starts playback on it. Failed attempts are paused
// and closed, except the last one, which is returned paused as Degraded. The error is non-nil only
// when ctx ends first; the engine of the attempt in flight is still returned.
func (a *Acquirer) Acquire(ctx context.Context, url string) (Result, error) {
	policy := a.Policy.normalized()
	delays := policy.schedule()

	var res Result
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if res.Engine != nil {
			abandon(res.Engine)
			res.Engine = nil
		}
		res.Attempts = attempt

		eng, err := a.Open()
		if err != nil {
			res.LastErr = fmt.Errorf("open: %w", err)
			log.Warnf("acquire %s: attempt %d: %v", url, attempt, res.LastErr)
		} else {
			res.Engine = eng
			ready, err := attemptOnce(ctx, eng, url, policy.ReadyWindow)
			if ready {
				res.Outcome, res.LastErr = Ready, nil
				log.Infof("acquire %s: ready after %d attempt(s)", url, attempt)
				if err := eng.Play(); err != nil {
					res.LastErr = fmt.Errorf("play: %w", err)
				}
				return res, nil
			}
			res.LastErr = err
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			log.Warnf("acquire %s: attempt %d: %v", url, attempt, err)
		}

		if err := sleep(ctx, delays.NextBackOff()); err != nil {
			return res, err
		}
	}

	if res.Engine != nil {
		_ = res.Engine.Pause()
	}
	log.Warnf("acquire %s: degraded after %d attempts: %v", url, res.Attempts, res.LastErr)
	return res, nil
}

// attemptOnce loads url and waits for the item to report readiness. A
// Playing status only comes from the transport here, since nothing has
// asked the engine to play yet.
func attemptOnce(ctx context.Context, eng *engine.Engine, url string, window time.Duration) (bool, error) {
	statuses := eng.Statuses()
	defer statuses.Close()

	if err := eng.Load(url); err != nil {
		return false, err
	}

	timer := time.NewTimer(window)
	defer timer.Stop()

	for {
		select {
		case status, ok := <-statuses.C():
			if !ok {
				return false, engine.ErrClosed
			}
			switch {
			case status == state.Ready, status == state.Playing:
				return true, nil
			case status.IsFailed():
				return false, errors.New(status.Message)
			}
		case <-timer.C:
			return false, ErrNotReady
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func abandon(eng *engine.Engine) {
	_ = eng.Pause()
	if err := eng.Close(); err != nil {
		log.Warnf("acquire: close abandoned engine %s: %v", eng.ID(), err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
