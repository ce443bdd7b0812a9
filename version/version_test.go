package version

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/playstate/playstate/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.2.3", "1.2.3", 0},
			{"v1.3.0", "1.2.9", 1},
			{"0.1.0", "0.10.0", -1},
			{"2.0.0", "v10.0.0", -1},
			{"1.0.0-rc.1", "1.0.0", -1},
			{"1.0.0", "v1.0.0-rc.2", 1},
			{"1.0.0-rc.2", "1.0.0-rc.1", 1},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}

		Convey("Rejects malformed versions", func() {
			_, err := Compare("latest", "1.0.0")
			So(errors.Is(err, errMalformed), ShouldBeTrue)

			_, err = Compare("1.0.0", "1.2")
			So(errors.Is(err, errMalformed), ShouldBeTrue)
		})
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a release endpoint", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = io.WriteString(w, `{"tag_name":"v0.2.0"}`)
		}))
		old := ReleasesURL
		ReleasesURL = srv.URL
		Reset(func() {
			ReleasesURL = old
			srv.Close()
		})

		Convey("Latest strips the prefix and caches the answer", func() {
			v, err := Latest()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.2.0")

			v, err = Latest()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.2.0")
			So(hits.Load(), ShouldEqual, 1)
		})
	})
}
