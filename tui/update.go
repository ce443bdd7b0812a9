package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/state"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.KeyMsg:
		return b.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case openedMsg:
		b.sub = msg.engine.Subscribe()
		b.setState(monitorState)
		return b, b.waitForSnapshot()
	case snapshotMsg:
		b.snapshot = state.PlayerState(msg)
		b.received++
		return b, b.waitForSnapshot()
	case seekedMsg:
		b.notice = seekNotice(msg.ok)
		return b, nil
	case controlErrMsg:
		b.notice = controlNotice(msg.err)
		return b, nil
	case closedMsg:
		b.raiseError(engine.ErrClosed)
		return b, nil
	case error:
		b.raiseError(msg)
		return b, nil
	}

	return b, nil
}

func (b *statefulBubble) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.forceQuit):
		return b, tea.Quit
	case key.Matches(msg, b.keymap.quit) && b.state != openingState:
		return b, tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, b.keymap.details) && b.state == monitorState:
		b.details = !b.details
	}

	if b.state != monitorState {
		return b, nil
	}

	switch {
	case key.Matches(msg, b.keymap.playPause):
		return b, b.togglePlayback()
	case key.Matches(msg, b.keymap.mute):
		return b, b.toggleMute()
	case key.Matches(msg, b.keymap.rewind):
		return b, b.seekBy(-seekStep)
	case key.Matches(msg, b.keymap.forward):
		return b, b.seekBy(seekStep)
	case key.Matches(msg, b.keymap.jump):
		if n, ok := digit(msg); ok {
			return b, b.seekTo(float64(n) / 10)
		}
	}

	return b, nil
}
