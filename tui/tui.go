// Package tui is a read-only terminal monitor of one playback session.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/playstate/playstate/engine"
)

// Options configures the monitor.
type Options struct {
	// URL is shown in the header.
	URL string
	// Open yields the engine to monitor. It runs once, off the UI goroutine,
	// and the monitor owns the engine it returns.
	Open func(ctx context.Context) (*engine.Engine, error)
}

// Run opens the session and shows its snapshots until the user quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.shutdown()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
