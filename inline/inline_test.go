package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/transport/fake"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestRun(t *testing.T) {
	Convey("Given an engine with a ready item", t, func() {
		viper.Set(key.IconsVariant, "plain")
		tr := fake.New()
		e := engine.New(tr)
		Reset(func() { _ = e.Close() })

		So(e.Load("https://example.com/a.m3u8"), ShouldBeNil)
		So(tr.EmitItem(signal.ItemStatus{Condition: signal.ItemReady, ItemDuration: mediatime.FromSeconds(90)}), ShouldBeTrue)

		var buf bytes.Buffer

		Convey("JSON output stops at the matching snapshot", func() {
			until := lo.Must(ParseStopCondition("ready"))
			err := Run(context.Background(), e, &Options{
				Out:   &buf,
				URL:   "https://example.com/a.m3u8",
				Json:  true,
				Until: mo.Some(until),
			})
			So(err, ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			So(lines, ShouldHaveLength, 1)

			var decoded map[string]any
			So(json.Unmarshal([]byte(lines[0]), &decoded), ShouldBeNil)
			So(decoded["seq"], ShouldEqual, float64(1))
			So(decoded["session"], ShouldEqual, e.ID())
			So(decoded["url"], ShouldEqual, "https://example.com/a.m3u8")

			st := decoded["state"].(map[string]any)
			So(st["playbackStatus"], ShouldResemble, map[string]any{"kind": "ready"})
			So(st["bufferingState"], ShouldEqual, "buffering")
			So(st["duration"], ShouldEqual, float64(90))
			So(st["seekableRange"], ShouldBeNil)
		})

		Convey("Plain output honours the limit", func() {
			err := Run(context.Background(), e, &Options{Out: &buf, Limit: 1})
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, Plain(e.State())+"\n")
			So(buf.String(), ShouldContainSubstring, "ready 00:00 / 01:30")
		})

		Convey("A closed engine ends the run", func() {
			done := make(chan error, 1)
			go func() { done <- Run(context.Background(), e, &Options{Out: &buf}) }()

			So(e.Close(), ShouldBeNil)
			So(<-done, ShouldBeNil)
		})

		Convey("A cancelled context ends the run", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(Run(ctx, e, &Options{Out: &buf}), ShouldBeNil)
		})
	})
}

func TestParseStopCondition(t *testing.T) {
	Convey("Stop conditions", t, func() {
		s := state.Empty
		s.PlaybackStatus = state.Playing
		s.Duration = mediatime.FromSeconds(100)
		s.CurrentTime = mediatime.FromSeconds(60)

		ready := lo.Must(ParseStopCondition("ready"))
		So(ready(s), ShouldBeTrue)

		terminal := lo.Must(ParseStopCondition("terminal"))
		So(terminal(s), ShouldBeFalse)
		s.PlaybackStatus = state.Failed("gone")
		So(terminal(s), ShouldBeTrue)

		half := lo.Must(ParseStopCondition("0.5"))
		So(half(s), ShouldBeTrue)
		s.CurrentTime = mediatime.FromSeconds(10)
		So(half(s), ShouldBeFalse)

		_, err := ParseStopCondition("sometime")
		So(err, ShouldNotBeNil)
	})
}

func TestSchema(t *testing.T) {
	Convey("The schema describes a line", t, func() {
		var buf bytes.Buffer
		So(WriteSchema(&buf), ShouldBeNil)

		var decoded map[string]any
		So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, `"playbackStatus"`)
		So(buf.String(), ShouldContainSubstring, `"finished"`)
		So(buf.String(), ShouldContainSubstring, `"buffering"`)
	})
}
