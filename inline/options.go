package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/util"
	"github.com/samber/mo"
)

// StopCondition ends a run once it reports true for a snapshot. The
// matching snapshot is still written.
type StopCondition func(state.PlayerState) bool

type Options struct {
	Out   io.Writer
	URL   string
	Json  bool
	Until mo.Option[StopCondition]
	// Limit caps the number of written snapshots. Zero means no limit.
	Limit int
}

// ParseStopCondition parses the --until flag.
//
//	ready     - Ready or Playing
//	playing   - Playing
//	paused    - Paused
//	finished  - Finished
//	failed    - Failed
//	terminal  - Finished or Failed
//	[ratio]   - progress reached the ratio, e.g. 0.5
func ParseStopCondition(description string) (StopCondition, error) {
	switch strings.ToLower(strings.TrimSpace(description)) {
	case "ready":
		return func(s state.PlayerState) bool {
			return s.PlaybackStatus == state.Ready || s.PlaybackStatus == state.Playing
		}, nil
	case "playing":
		return kindIs(state.KindPlaying), nil
	case "paused":
		return kindIs(state.KindPaused), nil
	case "finished":
		return kindIs(state.KindFinished), nil
	case "failed":
		return kindIs(state.KindFailed), nil
	case "terminal":
		return func(s state.PlayerState) bool {
			return s.PlaybackStatus.IsTerminal()
		}, nil
	}

	ratio, err := strconv.ParseFloat(description, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid stop condition: %s", description)
	}
	ratio = util.Clamp(ratio, 0, 1)
	return func(s state.PlayerState) bool {
		return s.Duration.IsValidFinite() && s.NormalizedProgress() >= ratio
	}, nil
}

func kindIs(kind state.Kind) StopCondition {
	return func(s state.PlayerState) bool {
		return s.PlaybackStatus.Kind == kind
	}
}
