package engine

import (
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
)

const unknownFailure = "Unknown playback failure"

// model is the working copy owned by the engine loop. Every method runs on
// the loop goroutine; nothing else touches it.
type model struct {
	snapshot      state.PlayerState
	preferredRate float64
	generation    signal.Generation
	hasItem       bool
}

func newModel() model {
	return model{
		snapshot:      state.Empty,
		preferredRate: 1,
	}
}

// setStatus changes the playback status unless a failure is pending.
// A failure is only cleared by load.
func (m *model) setStatus(s state.PlaybackStatus) {
	if m.snapshot.PlaybackStatus.IsFailed() {
		return
	}
	m.snapshot.PlaybackStatus = s
}

func (m *model) status() state.PlaybackStatus {
	return m.snapshot.PlaybackStatus
}

// apply folds one signal into the snapshot.
func (m *model) apply(sig signal.Signal) {
	s := &m.snapshot

	switch sig := sig.(type) {
	case signal.TransportStatus:
		switch sig.Control {
		case signal.WaitingToPlay:
			s.BufferingState = state.Buffering
			m.setStatus(state.Preparing)
		case signal.TransportPaused:
			s.BufferingState = state.BufferingReady
			if s.Rate == 0 && m.status() != state.Finished {
				m.setStatus(state.Paused)
			}
		case signal.TransportPlaying:
			s.BufferingState = state.BufferingReady
			m.setStatus(state.Playing)
		}

	case signal.RateChanged:
		s.Rate = sig.Rate
		switch {
		case sig.Rate == 0 && m.status() == state.Playing:
			m.setStatus(state.Paused)
		case sig.Rate > 0:
			m.setStatus(state.Playing)
		}

	case signal.ItemStatus:
		switch sig.Condition {
		case signal.ItemUnknown:
			m.setStatus(state.Preparing)
		case signal.ItemReady:
			s.Duration = sig.Duration()
			if s.Rate > 0 {
				m.setStatus(state.Playing)
			} else {
				m.setStatus(state.Ready)
			}
		case signal.ItemFailed:
			reason := sig.Reason
			if reason == "" {
				reason = unknownFailure
			}
			m.setStatus(state.Failed(reason))
		}

	case signal.LoadedRange:
		s.LoadedTimeRange = sig.Range
		if r, ok := sig.Range.Get(); ok && r.HasPositiveDuration() {
			s.BufferingState = state.BufferingReady
		}

	case signal.SeekableRange:
		s.SeekableRange = sig.Range

	case signal.PresentationSize:
		s.PresentationSize = sig.Size

	case signal.ExternalPlayback:
		s.IsExternalPlaybackActive = sig.Active

	case signal.MuteChanged:
		s.IsMuted = sig.Muted

	case signal.TimeTick:
		s.CurrentTime = sig.Time

	case signal.EndOfMedia:
		s.Rate = 0
		m.setStatus(state.Finished)
	}
}

func (m *model) initialize(rate float64, muted bool) {
	m.preferredRate = max(rate, 0)
	m.snapshot.IsMuted = muted
	m.snapshot.Rate = 0
	m.snapshot.PlaybackStatus = state.Idle
	m.snapshot.BufferingState = state.BufferingUnknown
}

// load starts a new item generation and clears everything the previous
// item reported.
func (m *model) load() signal.Generation {
	m.generation++
	m.hasItem = true

	s := &m.snapshot
	s.PlaybackStatus = state.Preparing
	s.BufferingState = state.Buffering
	s.CurrentTime = mediatime.Zero
	s.Duration = mediatime.Invalid()
	s.SeekableRange = mediatime.NoRange()
	s.LoadedTimeRange = mediatime.NoRange()
	s.PresentationSize = state.Size{}
	return m.generation
}

// immediateStart reports whether play should skip the transport's ramp.
func (m *model) immediateStart() bool {
	return m.preferredRate != 1
}

func (m *model) play() {
	if m.immediateStart() {
		m.snapshot.Rate = m.preferredRate
	}
	m.setStatus(state.Playing)
}

func (m *model) pause() {
	m.setStatus(state.Paused)
	m.snapshot.Rate = 0
}

func (m *model) stop() {
	s := &m.snapshot
	s.PlaybackStatus = state.Ready
	s.BufferingState = state.BufferingReady
	s.Rate = 0
	s.CurrentTime = mediatime.Zero
}

// seekTarget clamps target into [0, duration] unless out of range seeks are allowed.
func (m *model) seekTarget(target mediatime.Time, allowOutOfRange bool) mediatime.Time {
	if allowOutOfRange {
		return target
	}
	if d := m.snapshot.Duration; d.IsValidFinite() {
		return target.ClampedTo(mediatime.Zero, d)
	}
	return target
}

func (m *model) seekFinished(gen signal.Generation, target mediatime.Time, ok bool) {
	if ok && gen == m.generation {
		m.snapshot.CurrentTime = target
	}
}
