package config

import (
	"testing"
	"time"

	"github.com/playstate/playstate/filesystem"
	"github.com/playstate/playstate/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Every field has a default", func() {
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Durations and floats keep their types", func() {
			So(viper.GetDuration(key.AcquireReadyWindow), ShouldEqual, 2*time.Second)
			So(viper.GetFloat64(key.AcquireMultiplier), ShouldEqual, 2.0)
			So(viper.GetInt(key.AcquireAttempts), ShouldEqual, 3)
		})

		Convey("EnvKeyReplacer converts dots to underscores", func() {
			So(EnvKeyReplacer.Replace("acquire.ready_window"), ShouldEqual, "acquire_ready_window")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given the ready window field", t, func() {
		f := Default[key.AcquireReadyWindow]

		Convey("Env is prefixed once", func() {
			So(f.Env(), ShouldEqual, "PLAYSTATE_ACQUIRE_READY_WINDOW")
		})

		Convey("Parse understands durations", func() {
			v, err := f.Parse("750ms")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 750*time.Millisecond)
			So(f.TypeName(), ShouldEqual, "duration")
		})

		Convey("Parse rejects garbage", func() {
			_, err := f.Parse("soon")
			So(err, ShouldNotBeNil)
		})
	})
}
