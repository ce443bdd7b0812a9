package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/util"
)

type (
	openedMsg struct {
		engine *engine.Engine
	}
	snapshotMsg state.PlayerState
	closedMsg   struct{}
)

type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards engine and done, which the open command sets off the UI goroutine.
	mu     sync.Mutex
	engine *engine.Engine
	done   bool

	sub       *engine.Subscription
	snapshot  state.PlayerState
	received  int
	details   bool
	notice    string
	lastError error

	width, height int

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.progressC.Width = b.width
	b.helpC.Width = b.width
}

// open runs Options.Open. An engine that arrives after shutdown is closed at once.
func (b *statefulBubble) open() tea.Cmd {
	return func() tea.Msg {
		e, err := b.options.Open(b.ctx)

		b.mu.Lock()
		defer b.mu.Unlock()

		if b.done {
			if e != nil {
				util.Ignore(e.Close)
			}
			return nil
		}
		if e != nil {
			b.engine = e
		}
		if err != nil {
			return err
		}
		return openedMsg{engine: e}
	}
}

func (b *statefulBubble) waitForSnapshot() tea.Cmd {
	sub := b.sub
	return func() tea.Msg {
		s, ok := <-sub.C()
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(s)
	}
}

// shutdown cancels a pending open and closes the engine.
func (b *statefulBubble) shutdown() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.done = true
	if b.sub != nil {
		b.sub.Close()
	}
	if b.engine != nil {
		if err := b.engine.Close(); err != nil {
			log.Warnf("monitor: close engine %s: %v", b.engine.ID(), err)
		}
		b.engine = nil
	}
}

func newBubble(options *Options) *statefulBubble {
	ctx, cancel := context.WithCancel(context.Background())

	bubble := &statefulBubble{
		keymap:   newStatefulKeymap(),
		ctx:      ctx,
		cancel:   cancel,
		snapshot: state.Empty,
		options:  options,
	}
	bubble.setState(openingState)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}
