package transport

import (
	"sync"
	"testing"

	"github.com/playstate/playstate/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a guarded sink", t, func() {
		var got []signal.Signal
		g := Guard(func(sig signal.Signal) { got = append(got, sig) })

		Convey("It delivers until cancelled", func() {
			So(g.Emit(signal.EndOfMedia{}), ShouldBeTrue)
			g.Cancel()
			So(g.Emit(signal.EndOfMedia{}), ShouldBeFalse)
			So(got, ShouldHaveLength, 1)
			So(g.Cancelled(), ShouldBeTrue)
		})

		Convey("Cancel waits for an emission in flight", func() {
			entered, release := make(chan struct{}), make(chan struct{})
			var mu sync.Mutex
			delivered := false

			slow := Guard(func(signal.Signal) {
				close(entered)
				<-release
				mu.Lock()
				delivered = true
				mu.Unlock()
			})
			go slow.Emit(signal.EndOfMedia{})
			<-entered

			done := make(chan struct{})
			go func() {
				slow.Cancel()
				close(done)
			}()
			close(release)
			<-done

			mu.Lock()
			So(delivered, ShouldBeTrue)
			mu.Unlock()
			So(slow.Emit(signal.EndOfMedia{}), ShouldBeFalse)
		})

		Convey("A nil func never fires", func() {
			So(Guard(nil).Emit(signal.EndOfMedia{}), ShouldBeFalse)
		})

		Convey("SubscriptionFunc tolerates nil", func() {
			var f SubscriptionFunc
			So(func() { f.Cancel() }, ShouldNotPanic)
		})
	})
}
