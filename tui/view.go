package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/playstate/playstate/color"
	"github.com/playstate/playstate/icon"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/style"
	"github.com/samber/mo"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	switch b.state {
	case openingState:
		return b.viewOpening()
	case monitorState:
		return b.viewMonitor()
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewOpening() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Opening"),
			"",
			style.Truncate(b.width)(b.spinnerC.View() + " " + b.options.URL),
		},
	)
}

func (b *statefulBubble) viewMonitor() string {
	s := b.snapshot

	status := icon.Get(icon.ForStatus(s.PlaybackStatus)) + " " + style.Bold(s.PlaybackStatus.Kind.String())
	if s.BufferingState == state.Buffering {
		status += "  " + b.spinnerC.View() + " buffering"
	}
	if s.IsMuted {
		status += "  " + icon.Get(icon.Muted) + " muted"
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(style.Fg(color.Purple)(b.options.URL)),
		"",
		status,
		"",
		b.progressC.ViewAs(s.NormalizedProgress()),
		fmt.Sprintf("%s / %s  rate %g",
			mediatime.FormatMinutesSeconds(s.CurrentTime),
			mediatime.FormatMinutesSeconds(s.Duration),
			s.Rate,
		),
	}

	if s.PlaybackStatus.IsFailed() {
		failure := lipgloss.NewStyle().Foreground(color.Red).Bold(true).Render(s.PlaybackStatus.Message)
		lines = append(lines, "", wrap.String(failure, b.width))
	}

	if b.notice != "" {
		lines = append(lines, "", style.Fg(color.Yellow)(b.notice))
	}

	if b.details {
		lines = append(lines, "", style.Faint(strings.Join(detailLines(s), "\n")))
		lines = append(lines, style.Faint(fmt.Sprintf("snapshots  %d", b.received)))
	}

	return b.renderLines(true, lines)
}

func detailLines(s state.PlayerState) []string {
	return []string{
		fmt.Sprintf("buffering  %s", s.BufferingState),
		fmt.Sprintf("seekable   %s", formatRange(s.SeekableRange)),
		fmt.Sprintf("loaded     %s", formatRange(s.LoadedTimeRange)),
		fmt.Sprintf("size       %gx%g", s.PresentationSize.Width, s.PresentationSize.Height),
		fmt.Sprintf("external   %t", s.IsExternalPlaybackActive),
	}
}

func formatRange(r mo.Option[mediatime.Range]) string {
	v, ok := r.Get()
	if !ok {
		return "none"
	}
	return mediatime.FormatMinutesSeconds(v.Start) + " - " + mediatime.FormatMinutesSeconds(v.End())
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(color.Red).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastError.Error()), b.width)

	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " The session could not be monitored:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
