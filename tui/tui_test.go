package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/transport/fake"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

// drain feeds snapshots into b until pred matches the current one.
func drain(b *statefulBubble, cmd tea.Cmd, pred func(state.PlayerState) bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pred(b.snapshot) {
			return true
		}
		msg := cmd()
		if _, ok := msg.(snapshotMsg); !ok {
			return false
		}
		_, cmd = b.Update(msg)
	}
	return false
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMonitor(t *testing.T) {
	Convey("Given a monitor over a fake session", t, func() {
		viper.Set(key.IconsVariant, "plain")

		tr := fake.New()
		b := newBubble(&Options{
			URL: "https://example.com/live.m3u8",
			Open: func(context.Context) (*engine.Engine, error) {
				e := engine.New(tr)
				return e, e.Load("https://example.com/live.m3u8")
			},
		})
		b.resize(80, 24)
		Reset(b.shutdown)

		So(b.View(), ShouldContainSubstring, "Opening")

		_, cmd := b.Update(b.open()())
		So(b.state, ShouldEqual, monitorState)

		Convey("It shows the current snapshot", func() {
			So(drain(b, cmd, func(s state.PlayerState) bool { return s.PlaybackStatus == state.Preparing }), ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "Now Playing")
			So(b.View(), ShouldContainSubstring, "preparing")
		})

		Convey("A failure message is shown", func() {
			tr.EmitItem(signal.ItemStatus{Condition: signal.ItemFailed, Reason: "403 forbidden"})
			So(drain(b, cmd, func(s state.PlayerState) bool { return s.PlaybackStatus.IsFailed() }), ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "403 forbidden")
		})

		Convey("Details can be toggled", func() {
			b.Update(runes("d"))
			So(b.View(), ShouldContainSubstring, "seekable   none")
			b.Update(runes("d"))
			So(b.View(), ShouldNotContainSubstring, "seekable")
		})

		Convey("Playback and mute are forwarded to the engine", func() {
			_, cmd := b.Update(runes("p"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldBeNil)
			So(tr.CommandNames(), ShouldContain, "play")

			_, cmd = b.Update(runes("m"))
			So(cmd(), ShouldBeNil)
			cmds := tr.Commands()
			So(cmds[len(cmds)-1], ShouldResemble, fake.Command{Name: "mute", Muted: true})
		})

		Convey("Given a ready item of known duration", func() {
			tr.EmitItem(signal.ItemStatus{Condition: signal.ItemReady, ItemDuration: mediatime.FromSeconds(100)})
			So(drain(b, cmd, func(s state.PlayerState) bool { return s.Duration.IsValidFinite() }), ShouldBeTrue)
			tr.AutoSeek, tr.SeekResult = true, true

			lastSeek := func() float64 {
				cmds := tr.Commands()
				for i := len(cmds) - 1; i >= 0; i-- {
					if cmds[i].Name == "seek" {
						return cmds[i].Target.SecondsOrZero()
					}
				}
				return -1
			}

			Convey("A digit jumps to that tenth of the item", func() {
				_, cmd := b.Update(runes("5"))
				msg := cmd()
				So(msg, ShouldResemble, seekedMsg{ok: true})
				So(lastSeek(), ShouldEqual, 50)
			})

			Convey("The right arrow skips ahead", func() {
				_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRight})
				So(cmd(), ShouldResemble, seekedMsg{ok: true})
				So(lastSeek(), ShouldEqual, 10)
			})

			Convey("A rejected seek leaves a notice", func() {
				tr.SeekResult = false
				_, cmd := b.Update(runes("9"))
				b.Update(cmd())
				So(b.View(), ShouldContainSubstring, "seek did not complete")
			})
		})

		Convey("Quitting ends the program", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})

		Convey("A closed engine is reported", func() {
			b.shutdown()
			for {
				msg := cmd()
				_, cmd = b.Update(msg)
				if _, ok := msg.(closedMsg); ok {
					break
				}
			}
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, engine.ErrClosed.Error())
		})
	})

	Convey("Given a session that cannot be opened", t, func() {
		b := newBubble(&Options{
			URL: "https://example.com/missing.m3u8",
			Open: func(context.Context) (*engine.Engine, error) {
				return nil, errors.New("mpv not found")
			},
		})
		b.resize(80, 24)
		Reset(b.shutdown)

		b.Update(b.open()())

		So(b.state, ShouldEqual, errorState)
		So(b.View(), ShouldContainSubstring, "mpv not found")

		Convey("Quit is available on the error screen", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})
}
