package state

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/playstate/playstate/mediatime"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayerState(t *testing.T) {
	Convey("Given the empty snapshot", t, func() {
		s := Empty

		So(s.PlaybackStatus, ShouldEqual, Idle)
		So(s.BufferingState, ShouldEqual, BufferingUnknown)
		So(s.SeekableRange.IsPresent(), ShouldBeFalse)
		So(s.IsPlaying(), ShouldBeFalse)

		Convey("NormalizedProgress stays inside [0, 1]", func() {
			cases := []struct {
				current, duration mediatime.Time
				want              float64
			}{
				{mediatime.FromSeconds(30), mediatime.FromSeconds(120), 0.25},
				{mediatime.FromSeconds(200), mediatime.FromSeconds(120), 1},
				{mediatime.FromSeconds(-5), mediatime.FromSeconds(120), 0},
				{mediatime.FromSeconds(30), mediatime.Zero, 0},
				{mediatime.FromSeconds(30), mediatime.Invalid(), 0},
				{mediatime.FromSeconds(30), mediatime.PositiveInfinity(), 0},
				{mediatime.FromSeconds(30), mediatime.FromSeconds(-10), 0},
				{mediatime.FromSeconds(math.NaN()), mediatime.FromSeconds(10), 0},
			}

			for _, c := range cases {
				s.CurrentTime, s.Duration = c.current, c.duration
				p := s.NormalizedProgress()
				So(p, ShouldEqual, c.want)
				So(p, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("Equality is structural", func() {
			other := Empty
			So(s.Equal(other), ShouldBeTrue)

			other.LoadedTimeRange = mediatime.SomeRange(mediatime.NewRange(0, 4))
			So(s.Equal(other), ShouldBeFalse)

			other = Empty
			other.PlaybackStatus = Failed("boom")
			s.PlaybackStatus = Failed("boom")
			So(s.Equal(other), ShouldBeTrue)

			s.PlaybackStatus = Failed("other")
			So(s.Equal(other), ShouldBeFalse)
		})

		Convey("IsPlaying follows status or rate", func() {
			s.Rate = 0.5
			So(s.IsPlaying(), ShouldBeTrue)

			s.Rate = 0
			s.PlaybackStatus = Playing
			So(s.IsPlaying(), ShouldBeTrue)
		})

		Convey("Encodes to JSON", func() {
			s.PlaybackStatus = Failed("network down")
			s.LoadedTimeRange = mediatime.SomeRange(mediatime.NewRange(0, 8))

			b, err := json.Marshal(s)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(b, &decoded), ShouldBeNil)
			So(decoded["bufferingState"], ShouldEqual, "unknown")
			So(decoded["playbackStatus"].(map[string]any)["kind"], ShouldEqual, "failed")
			So(decoded["playbackStatus"].(map[string]any)["message"], ShouldEqual, "network down")
			So(decoded["seekableRange"], ShouldBeNil)
			So(decoded["loadedTimeRange"], ShouldNotBeNil)
		})
	})
}

func TestPlaybackStatus(t *testing.T) {
	Convey("PlaybackStatus", t, func() {
		So(Failed("x").IsTerminal(), ShouldBeTrue)
		So(Finished.IsTerminal(), ShouldBeTrue)
		So(Paused.IsTerminal(), ShouldBeFalse)
		So(Failed("x").String(), ShouldEqual, "failed(x)")
		So(Preparing.String(), ShouldEqual, "preparing")
		So(Buffering.String(), ShouldEqual, "buffering")
	})
}
