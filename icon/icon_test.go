package icon

import (
	"testing"

	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/state"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given every registered icon", t, func() {
		Reset(func() { viper.Set(key.IconsVariant, "plain") })

		Convey("It renders for each variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := Success; i <= Muted; i++ {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Playing), ShouldBeEmpty)
		})

		Convey("It returns empty for an unknown icon", func() {
			viper.Set(key.IconsVariant, "plain")
			So(Get(Icon(999)), ShouldBeEmpty)
		})
	})
}

func TestForStatus(t *testing.T) {
	Convey("Statuses map to their icons", t, func() {
		So(ForStatus(state.Playing), ShouldEqual, Playing)
		So(ForStatus(state.Failed("boom")), ShouldEqual, Fail)
		So(ForStatus(state.PlaybackStatus{Kind: state.Kind(42)}), ShouldEqual, Warn)
	})
}
