// Package state defines the immutable playback snapshot published by the engine.
package state

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the playback statuses.
type Kind int

const (
	KindIdle Kind = iota
	KindPreparing
	KindReady
	KindPlaying
	KindPaused
	KindFinished
	KindFailed
)

var kindNames = map[Kind]string{
	KindIdle:      "idle",
	KindPreparing: "preparing",
	KindReady:     "ready",
	KindPlaying:   "playing",
	KindPaused:    "paused",
	KindFinished:  "finished",
	KindFailed:    "failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PlaybackStatus is the public playback status. Only KindFailed carries a message.
// Values are comparable with ==.
type PlaybackStatus struct {
	Kind    Kind
	Message string
}

var (
	Idle      = PlaybackStatus{Kind: KindIdle}
	Preparing = PlaybackStatus{Kind: KindPreparing}
	Ready     = PlaybackStatus{Kind: KindReady}
	Playing   = PlaybackStatus{Kind: KindPlaying}
	Paused    = PlaybackStatus{Kind: KindPaused}
	Finished  = PlaybackStatus{Kind: KindFinished}
)

// Failed returns the failed status with the given reason.
func Failed(message string) PlaybackStatus {
	return PlaybackStatus{Kind: KindFailed, Message: message}
}

// IsFailed reports whether s is a failure.
func (s PlaybackStatus) IsFailed() bool {
	return s.Kind == KindFailed
}

// IsTerminal reports whether s can only be left through a new load.
func (s PlaybackStatus) IsTerminal() bool {
	return s.Kind == KindFinished || s.Kind == KindFailed
}

func (s PlaybackStatus) String() string {
	if s.Kind == KindFailed {
		return fmt.Sprintf("failed(%s)", s.Message)
	}
	return s.Kind.String()
}

// MarshalJSON renders the status as {"kind":"failed","message":"..."}.
func (s PlaybackStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Message string `json:"message,omitempty"`
	}{
		Kind:    s.Kind.String(),
		Message: s.Message,
	})
}

// BufferingState is orthogonal to PlaybackStatus.
type BufferingState int

const (
	BufferingUnknown BufferingState = iota
	Buffering
	BufferingReady
)

func (b BufferingState) String() string {
	switch b {
	case Buffering:
		return "buffering"
	case BufferingReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText renders the buffering state by name.
func (b BufferingState) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
