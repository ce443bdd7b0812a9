package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
)

const seekStep = 10

type (
	controlErrMsg struct{ err error }
	seekedMsg     struct{ ok bool }
)

// control runs fn against the engine off the UI goroutine.
func (b *statefulBubble) control(fn func(*engine.Engine) (tea.Msg, error)) tea.Cmd {
	b.mu.Lock()
	e := b.engine
	b.mu.Unlock()

	if e == nil {
		return nil
	}

	return func() tea.Msg {
		msg, err := fn(e)
		if err != nil {
			if errors.Is(err, engine.ErrClosed) || errors.Is(err, b.ctx.Err()) {
				return nil
			}
			return controlErrMsg{err: err}
		}
		return msg
	}
}

func (b *statefulBubble) togglePlayback() tea.Cmd {
	playing := b.snapshot.PlaybackStatus == state.Playing
	return b.control(func(e *engine.Engine) (tea.Msg, error) {
		if playing {
			return nil, e.Pause()
		}
		return nil, e.Play()
	})
}

func (b *statefulBubble) toggleMute() tea.Cmd {
	return b.control(func(e *engine.Engine) (tea.Msg, error) {
		return nil, e.ToggleMute()
	})
}

// seekBy moves the position by delta seconds, clamped to the item.
func (b *statefulBubble) seekBy(delta float64) tea.Cmd {
	target := mediatime.FromSeconds(max(0, b.snapshot.CurrentTime.SecondsOrZero()+delta))
	return b.control(func(e *engine.Engine) (tea.Msg, error) {
		ok, err := e.SeekAwait(b.ctx, target)
		if err != nil {
			return nil, err
		}
		return seekedMsg{ok: ok}, nil
	})
}

// seekTo jumps to a fraction of the duration.
func (b *statefulBubble) seekTo(progress float64) tea.Cmd {
	return b.control(func(e *engine.Engine) (tea.Msg, error) {
		done := make(chan bool, 1)
		if err := e.SeekProgress(progress, func(ok bool) { done <- ok }); err != nil {
			return nil, err
		}

		select {
		case ok := <-done:
			return seekedMsg{ok: ok}, nil
		case <-b.ctx.Done():
			return nil, b.ctx.Err()
		}
	})
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

func seekNotice(ok bool) string {
	if ok {
		return ""
	}
	return "seek did not complete"
}

func controlNotice(err error) string {
	return fmt.Sprintf("command failed: %v", err)
}
