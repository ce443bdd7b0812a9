package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/playstate/playstate/filesystem"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeFalse)

		Convey("Emitting is a no-op", func() {
			Infof("nothing %d", 1)
			WithField("engine", "x").Info("nothing")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		Reset(func() {
			So(Close(), ShouldBeNil)
			viper.Set(key.LogsWrite, false)
		})

		So(Setup(), ShouldBeNil)
		So(Enabled(), ShouldBeTrue)

		Convey("Messages land in today's file", func() {
			Debugf("engine %s: load", "abc")

			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			data := lo.Must(filesystem.API().ReadFile(path))
			So(string(data), ShouldContainSubstring, "engine abc: load")
		})
	})
}
