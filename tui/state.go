package tui

type state int

const (
	openingState state = iota
	monitorState
	errorState
)
