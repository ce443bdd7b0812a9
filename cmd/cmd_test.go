package cmd

import (
	"testing"

	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

func TestConfigHelpers(t *testing.T) {
	Convey("Unknown keys suggest the closest known key", t, func() {
		err := errUnknownKey("acquire.atempts")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, key.AcquireAttempts)
	})

	Convey("Every exposed variable is listed once, sorted", t, func() {
		env := exposedEnv()
		So(env, ShouldContain, "PLAYSTATE_PLAYER_RATE")
		So(env, ShouldContain, "PLAYSTATE_ACQUIRE_READY_WINDOW")
		So(env, ShouldContain, where.EnvConfigPath)
		So(slices.IsSorted(env), ShouldBeTrue)
		So(len(slices.Compact(slices.Clone(env))), ShouldEqual, len(env))
	})
}

func TestSessionFlags(t *testing.T) {
	Convey("Session flags are bound for the command being run", t, func() {
		Reset(viper.Reset)

		So(watchCmd.Flags().Set("rate", "1.5"), ShouldBeNil)
		So(monitorCmd.Flags().Set("rate", "0.5"), ShouldBeNil)

		bindSessionFlags(watchCmd, nil)
		So(viper.GetFloat64(key.PlayerRate), ShouldEqual, 1.5)

		bindSessionFlags(monitorCmd, nil)
		So(viper.GetFloat64(key.PlayerRate), ShouldEqual, 0.5)
	})

	Convey("mpv options follow the configuration", t, func() {
		Reset(viper.Reset)

		viper.Set(key.MpvBinary, "/opt/mpv/bin/mpv")
		opts := mpvOptions("https://example.com/a.m3u8", true)

		So(opts.Binary, ShouldEqual, "/opt/mpv/bin/mpv")
		So(opts.Headless, ShouldBeTrue)
		So(opts.Title, ShouldEqual, "playstate - https://example.com/a.m3u8")
	})
}
