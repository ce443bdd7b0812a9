package state

import (
	"github.com/playstate/playstate/mediatime"
	"github.com/samber/mo"
)

// Size is the presentation size of the video in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlayerState is a snapshot of everything observable about a playback session.
// Snapshots are values; once published they are never mutated.
type PlayerState struct {
	PlaybackStatus           PlaybackStatus             `json:"playbackStatus"`
	BufferingState           BufferingState             `json:"bufferingState"`
	IsMuted                  bool                       `json:"isMuted"`
	Rate                     float64                    `json:"rate"`
	CurrentTime              mediatime.Time             `json:"currentTime"`
	Duration                 mediatime.Time             `json:"duration"`
	SeekableRange            mo.Option[mediatime.Range] `json:"seekableRange"`
	LoadedTimeRange          mo.Option[mediatime.Range] `json:"loadedTimeRange"`
	PresentationSize         Size                       `json:"presentationSize"`
	IsExternalPlaybackActive bool                       `json:"isExternalPlaybackActive"`
}

// Empty is the snapshot of a session that has never been loaded.
var Empty = PlayerState{
	PlaybackStatus:  Idle,
	BufferingState:  BufferingUnknown,
	CurrentTime:     mediatime.Zero,
	Duration:        mediatime.Zero,
	SeekableRange:   mediatime.NoRange(),
	LoadedTimeRange: mediatime.NoRange(),
}

// Equal is full structural equality.
func (s PlayerState) Equal(other PlayerState) bool {
	return s == other
}

// IsPlaying reports whether the session is playing or moving forward.
func (s PlayerState) IsPlaying() bool {
	return s.PlaybackStatus == Playing || s.Rate > 0
}

// NormalizedProgress is CurrentTime/Duration clamped to [0, 1], or 0 when the
// duration is unusable.
func (s PlayerState) NormalizedProgress() float64 {
	total := s.Duration.SecondsOrZero()
	if !s.Duration.IsValidFinite() || total <= 0 {
		return 0
	}
	return min(1, max(0, s.CurrentTime.SecondsOrZero()/total))
}
