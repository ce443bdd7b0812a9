package icon

import (
	"github.com/playstate/playstate/color"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/style"
)

// Icon identifies a glyph.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Idle
	Preparing
	Ready
	Playing
	Paused
	Finished
	Muted
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    style.Fg(color.Green)(""),
		plain:   style.Fg(color.Green)("✓"),
		kaomoji: style.Fg(color.Green)("(^▽^)"),
		squares: style.Fg(color.Green)("■"),
	},
	Fail: {
		emoji:   "❌",
		nerd:    style.Fg(color.Red)(""),
		plain:   style.Fg(color.Red)("✗"),
		kaomoji: style.Fg(color.Red)("(╥﹏╥)"),
		squares: style.Fg(color.Red)("■"),
	},
	Progress: {
		emoji:   "⏳",
		nerd:    style.Fg(color.Blue)(""),
		plain:   style.Fg(color.Blue)("…"),
		kaomoji: style.Fg(color.Blue)("(・_・ヾ"),
		squares: style.Fg(color.Blue)("■"),
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    style.Fg(color.Yellow)(""),
		plain:   style.Fg(color.Yellow)("!"),
		kaomoji: style.Fg(color.Yellow)("(°ロ°)"),
		squares: style.Fg(color.Yellow)("■"),
	},
	Idle: {
		emoji:   "💤",
		nerd:    style.Faint(""),
		plain:   style.Faint("-"),
		kaomoji: style.Faint("(－_－)"),
		squares: style.Faint("□"),
	},
	Preparing: {
		emoji:   "🔄",
		nerd:    style.Fg(color.Cyan)(""),
		plain:   style.Fg(color.Cyan)("~"),
		kaomoji: style.Fg(color.Cyan)("(◎_◎;)"),
		squares: style.Fg(color.Cyan)("■"),
	},
	Ready: {
		emoji:   "🟢",
		nerd:    style.Fg(color.Green)(""),
		plain:   style.Fg(color.Green)("o"),
		kaomoji: style.Fg(color.Green)("(•̀ᴗ•́)"),
		squares: style.Fg(color.Green)("□"),
	},
	Playing: {
		emoji:   "▶️",
		nerd:    style.Fg(color.Green)(""),
		plain:   style.Fg(color.Green)(">"),
		kaomoji: style.Fg(color.Green)("ヽ(・∀・)ﾉ"),
		squares: style.Fg(color.Green)("■"),
	},
	Paused: {
		emoji:   "⏸️",
		nerd:    style.Fg(color.Yellow)(""),
		plain:   style.Fg(color.Yellow)("||"),
		kaomoji: style.Fg(color.Yellow)("(￣ー￣)"),
		squares: style.Fg(color.Yellow)("■"),
	},
	Finished: {
		emoji:   "🏁",
		nerd:    style.Fg(color.Purple)(""),
		plain:   style.Fg(color.Purple)("#"),
		kaomoji: style.Fg(color.Purple)("(＾▽＾)"),
		squares: style.Fg(color.Purple)("■"),
	},
	Muted: {
		emoji:   "🔇",
		nerd:    style.Faint(""),
		plain:   style.Faint("m"),
		kaomoji: style.Faint("(-_-)zz"),
		squares: style.Faint("□"),
	},
}

var statusIcons = map[state.Kind]Icon{
	state.KindIdle:      Idle,
	state.KindPreparing: Preparing,
	state.KindReady:     Ready,
	state.KindPlaying:   Playing,
	state.KindPaused:    Paused,
	state.KindFinished:  Finished,
	state.KindFailed:    Fail,
}

// ForStatus picks the icon of a playback status.
func ForStatus(s state.PlaybackStatus) Icon {
	if i, ok := statusIcons[s.Kind]; ok {
		return i
	}
	return Warn
}
