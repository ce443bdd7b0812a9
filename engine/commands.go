package engine

import (
	"fmt"

	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
)

// Initialize sets the preferred rate used by Play and the mute flag.
// It never starts playback.
func (e *Engine) Initialize(rate float64, muted bool) error {
	return e.exec(func(l *loop) error {
		if err := e.transport.SetMuted(muted); err != nil {
			return fmt.Errorf("set muted: %w", err)
		}
		l.model.initialize(rate, muted)
		log.Debugf("engine %s: initialize rate=%g muted=%t", e.id, l.model.preferredRate, muted)
		return nil
	})
}

// Load replaces the current item with url. Signal sources of the previous
// item are detached before the new item is attached, so nothing the old
// item reports can reach the new snapshot.
func (e *Engine) Load(url string) error {
	return e.exec(func(l *loop) error {
		l.detachItem()
		gen := l.model.load()
		log.Debugf("engine %s: load %s (generation %d)", e.id, url, gen)

		sub, err := e.transport.Load(url, e.sinkFor(gen))
		if err != nil {
			l.model.snapshot.PlaybackStatus = state.Failed(err.Error())
			log.Errorf("engine %s: load %s: %v", e.id, url, err)
			return fmt.Errorf("load %s: %w", url, err)
		}
		l.itemSub = sub
		return nil
	})
}

// Play starts playback of the loaded item at the preferred rate. Without an
// item it does nothing.
func (e *Engine) Play() error {
	return e.exec(func(l *loop) error {
		if !l.model.hasItem {
			return nil
		}

		rate, immediate := l.model.preferredRate, l.model.immediateStart()
		log.Debugf("engine %s: play rate=%g immediate=%t", e.id, rate, immediate)
		if err := e.transport.Play(rate, immediate); err != nil {
			return fmt.Errorf("play: %w", err)
		}
		l.model.play()
		return nil
	})
}

// Pause pauses playback.
func (e *Engine) Pause() error {
	return e.exec(func(l *loop) error {
		log.Debugf("engine %s: pause", e.id)
		if err := e.transport.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		l.model.pause()
		return nil
	})
}

// Stop pauses and rewinds to the start.
func (e *Engine) Stop() error {
	return e.exec(func(l *loop) error {
		log.Debugf("engine %s: stop", e.id)
		if err := e.transport.Pause(); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		if l.model.hasItem {
			e.transport.Seek(mediatime.Zero, func(bool) {})
		}
		l.model.stop()
		return nil
	})
}

// SetMute sets the transport mute flag and the published one.
func (e *Engine) SetMute(muted bool) error {
	return e.exec(func(l *loop) error {
		return l.setMute(muted)
	})
}

// ToggleMute flips the mute flag.
func (e *Engine) ToggleMute() error {
	return e.exec(func(l *loop) error {
		return l.setMute(!l.model.snapshot.IsMuted)
	})
}

func (l *loop) setMute(muted bool) error {
	log.Debugf("engine %s: mute %t", l.e.id, muted)
	if err := l.e.transport.SetMuted(muted); err != nil {
		return fmt.Errorf("set muted: %w", err)
	}
	l.model.snapshot.IsMuted = muted
	return nil
}

// Seek moves the playback position. Unless allowOutOfRange is set the target
// is clamped into [0, duration]. completion, if not nil, is called exactly
// once with the outcome; on success the new position is published first.
// Without a loaded item completion receives false.
func (e *Engine) Seek(target mediatime.Time, allowOutOfRange bool, completion func(ok bool)) error {
	return e.exec(func(l *loop) error {
		if !l.model.hasItem {
			if completion != nil {
				go completion(false)
			}
			return nil
		}

		gen := l.model.generation
		resolved := l.model.seekTarget(target, allowOutOfRange)
		log.Debugf("engine %s: seek %s (requested %s)", e.id, resolved, target)

		e.transport.Seek(resolved, func(ok bool) {
			done := seekDone{generation: gen, target: resolved, ok: ok, completion: completion}
			if !e.inbox.push(done) && completion != nil {
				go completion(ok)
			}
		})
		return nil
	})
}

// SeekProgress seeks to a fraction of the duration. It is a no-op that
// completes with false when the duration is unknown.
func (e *Engine) SeekProgress(progress float64, completion func(ok bool)) error {
	d := e.State().Duration
	if !d.IsValidFinite() {
		if completion != nil {
			go completion(false)
		}
		return nil
	}

	progress = min(1, max(0, progress))
	return e.Seek(mediatime.FromSeconds(d.SecondsOrZero()*progress), false, completion)
}
