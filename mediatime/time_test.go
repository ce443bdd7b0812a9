package mediatime

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTime(t *testing.T) {
	Convey("Time", t, func() {
		Convey("FromSeconds", func() {
			Convey("Should keep finite values", func() {
				So(FromSeconds(12.5).SecondsOrZero(), ShouldEqual, 12.5)
				So(FromSeconds(12.5).IsValidFinite(), ShouldBeTrue)
			})

			Convey("Should turn NaN into an invalid time", func() {
				v := FromSeconds(math.NaN())
				So(v.IsValid(), ShouldBeFalse)
				So(v.SecondsOrZero(), ShouldEqual, 0)
				So(v, ShouldResemble, Invalid())
			})
		})

		Convey("IsValidFinite", func() {
			So(Zero.IsValidFinite(), ShouldBeTrue)
			So(Invalid().IsValidFinite(), ShouldBeFalse)
			So(PositiveInfinity().IsValidFinite(), ShouldBeFalse)
			So(PositiveInfinity().IsValid(), ShouldBeTrue)
			So(FromSeconds(-1).IsValidFinite(), ShouldBeFalse)
		})

		Convey("Arithmetic treats unusable values as zero", func() {
			So(FromSeconds(3).Add(Invalid()).SecondsOrZero(), ShouldEqual, 3)
			So(PositiveInfinity().Add(FromSeconds(2)).SecondsOrZero(), ShouldEqual, 2)
			So(FromSeconds(5).Sub(FromSeconds(2)).SecondsOrZero(), ShouldEqual, 3)
			So(FromSeconds(90).Duration(), ShouldEqual, 90*time.Second)
			So(Invalid().Duration(), ShouldEqual, 0)
		})

		Convey("ClampedTo", func() {
			lower, upper := Zero, FromSeconds(120)

			Convey("Should clamp above the upper bound", func() {
				So(FromSeconds(200).ClampedTo(lower, upper), ShouldResemble, upper)
			})

			Convey("Should clamp below the lower bound", func() {
				So(FromSeconds(-4).ClampedTo(lower, upper), ShouldResemble, lower)
			})

			Convey("Should leave in-range values alone", func() {
				So(FromSeconds(60).ClampedTo(lower, upper).SecondsOrZero(), ShouldEqual, 60)
			})

			Convey("Should be a no-op when both bounds are unusable", func() {
				v := FromSeconds(500)
				So(v.ClampedTo(Invalid(), PositiveInfinity()), ShouldResemble, v)
			})
		})

		Convey("FormatMinutesSeconds", func() {
			So(FormatMinutesSeconds(FromSeconds(125.4)), ShouldEqual, "02:05")
			So(FormatMinutesSeconds(Zero), ShouldEqual, "00:00")
			So(FormatMinutesSeconds(FromSeconds(3599)), ShouldEqual, "59:59")
			So(FormatMinutesSeconds(FromSeconds(math.NaN())), ShouldEqual, "--:--")
			So(FormatMinutesSeconds(PositiveInfinity()), ShouldEqual, "--:--")
			So(FormatMinutesSeconds(FromSeconds(-3)), ShouldEqual, "00:00")
		})

		Convey("JSON", func() {
			b, err := json.Marshal(FromSeconds(1.5))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "1.5")

			b, err = json.Marshal(PositiveInfinity())
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "null")

			var decoded Time
			So(json.Unmarshal([]byte("null"), &decoded), ShouldBeNil)
			So(decoded.IsValid(), ShouldBeFalse)
		})
	})
}

func TestRange(t *testing.T) {
	Convey("Range", t, func() {
		r := NewRange(10, 30)

		So(r.End().SecondsOrZero(), ShouldEqual, 40)
		So(r.HasPositiveDuration(), ShouldBeTrue)
		So(r.Contains(FromSeconds(10)), ShouldBeTrue)
		So(r.Contains(FromSeconds(40)), ShouldBeFalse)

		Convey("EndOrFallback uses the fallback for open ranges", func() {
			live := Range{Start: FromSeconds(5), Duration: PositiveInfinity()}
			So(live.EndOrFallback(PositiveInfinity()), ShouldResemble, PositiveInfinity())
			So(live.EndOrFallback(FromSeconds(99)).SecondsOrZero(), ShouldEqual, 99)
			So(r.EndOrFallback(PositiveInfinity()).SecondsOrZero(), ShouldEqual, 40)
		})

		Convey("Optional ranges", func() {
			So(NoRange().IsPresent(), ShouldBeFalse)
			So(SomeRange(r).MustGet(), ShouldResemble, r)
		})
	})
}
