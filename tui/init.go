package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the spinner and opens the session.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.open())
}
