package acquire

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/state"
	"github.com/playstate/playstate/transport/fake"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// opener hands out engines over fake transports. readyOn is the 1-based
// attempt whose load reports readiness; 0 means never.
type opener struct {
	mu         sync.Mutex
	transports []*fake.Transport
	readyOn    int
	failWith   string
	openErr    error
}

func (o *opener) open() (*engine.Engine, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.openErr != nil {
		return nil, o.openErr
	}

	tr := fake.New()
	attempt := len(o.transports) + 1
	o.transports = append(o.transports, tr)

	switch {
	case o.failWith != "":
		reason := o.failWith
		tr.OnLoad = func(_ string, emit func(signal.Signal)) {
			emit(signal.ItemStatus{Condition: signal.ItemFailed, Reason: reason})
		}
	case attempt == o.readyOn:
		tr.OnLoad = func(_ string, emit func(signal.Signal)) {
			emit(signal.ItemStatus{Condition: signal.ItemReady, ItemDuration: mediatime.FromSeconds(60)})
		}
	}
	return engine.New(tr), nil
}

func (o *opener) all() []*fake.Transport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*fake.Transport(nil), o.transports...)
}

func fastPolicy() Policy {
	return Policy{Attempts: 3, ReadyWindow: 30 * time.Millisecond, InitialBackoff: 5 * time.Millisecond, Multiplier: 2}
}

func TestAcquire(t *testing.T) {
	Convey("Given an acquirer over fake sessions", t, func() {
		o := &opener{}
		a := New(o.open, fastPolicy())

		var res Result
		Reset(func() {
			if res.Engine != nil {
				_ = res.Engine.Close()
			}
		})

		Convey("A stream that is ready at once is played", func() {
			o.readyOn = 1
			a.Policy.ReadyWindow = 2 * time.Second

			var err error
			res, err = a.Acquire(context.Background(), "https://example.com/live.m3u8")
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, Ready)
			So(res.Attempts, ShouldEqual, 1)
			So(res.LastErr, ShouldBeNil)
			So(res.Engine.State().PlaybackStatus, ShouldResemble, state.Playing)
			So(o.all()[0].CommandNames(), ShouldResemble, []string{"load", "play"})
		})

		Convey("A stream that is ready on the third attempt", func() {
			o.readyOn = 3
			a.Policy.ReadyWindow = 200 * time.Millisecond

			var err error
			res, err = a.Acquire(context.Background(), "https://example.com/live.m3u8")
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, Ready)
			So(res.Attempts, ShouldEqual, 3)

			transports := o.all()
			So(transports, ShouldHaveLength, 3)
			So(transports[0].Closed(), ShouldBeTrue)
			So(transports[1].Closed(), ShouldBeTrue)
			So(transports[2].Closed(), ShouldBeFalse)
			So(transports[0].CommandNames(), ShouldContain, "pause")
		})

		Convey("A stream that never becomes ready", func() {
			start := time.Now()

			var err error
			res, err = a.Acquire(context.Background(), "https://example.com/dead.m3u8")
			elapsed := time.Since(start)

			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, Degraded)
			So(res.Attempts, ShouldEqual, 3)
			So(errors.Is(res.LastErr, ErrNotReady), ShouldBeTrue)
			So(res.Engine, ShouldNotBeNil)

			Convey("performs exactly three attempts and keeps the last session", func() {
				transports := o.all()
				So(transports, ShouldHaveLength, 3)
				So(transports[2].Closed(), ShouldBeFalse)
				So(transports[2].CommandNames(), ShouldResemble, []string{"load", "pause"})
			})

			Convey("waits every window and every delay", func() {
				p := fastPolicy()
				var budget time.Duration
				for _, d := range p.Delays() {
					budget += p.ReadyWindow + d
				}
				So(elapsed, ShouldBeGreaterThanOrEqualTo, budget)
			})
		})

		Convey("A failing item ends each attempt early", func() {
			o.failWith = "HTTP 403"
			a.Policy.ReadyWindow = 5 * time.Second

			start := time.Now()
			var err error
			res, err = a.Acquire(context.Background(), "https://example.com/forbidden.m3u8")
			So(err, ShouldBeNil)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
			So(res.Outcome, ShouldEqual, Degraded)
			So(res.LastErr.Error(), ShouldEqual, "HTTP 403")
			So(res.Engine.State().PlaybackStatus, ShouldResemble, state.Failed("HTTP 403"))
		})

		Convey("Sessions that cannot be opened", func() {
			o.openErr = errors.New("mpv missing")

			var err error
			res, err = a.Acquire(context.Background(), "https://example.com/a.m3u8")
			So(err, ShouldBeNil)
			So(res.Engine, ShouldBeNil)
			So(res.Outcome, ShouldEqual, Degraded)
			So(res.LastErr, ShouldNotBeNil)
			So(res.LastErr.Error(), ShouldContainSubstring, "mpv missing")
		})

		Convey("Cancellation stops the loop promptly", func() {
			a.Policy.ReadyWindow = 10 * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			var err error
			res, err = a.Acquire(ctx, "https://example.com/slow.m3u8")
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
			So(res.Attempts, ShouldEqual, 1)
			So(res.Engine, ShouldNotBeNil)
		})
	})
}

func TestPolicy(t *testing.T) {
	Convey("The default policy doubles from one second", t, func() {
		So(DefaultPolicy().Delays(), ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second})
	})

	Convey("Unusable values fall back to the defaults", t, func() {
		p := Policy{Attempts: 0, ReadyWindow: -1, InitialBackoff: -1, Multiplier: 0.5}.normalized()
		So(p, ShouldResemble, DefaultPolicy())
	})

	Convey("The policy is read from configuration", t, func() {
		viper.Set(key.AcquireAttempts, 5)
		viper.Set(key.AcquireReadyWindow, "750ms")
		viper.Set(key.AcquireInitialBackoff, "100ms")
		viper.Set(key.AcquireMultiplier, 3.0)
		Reset(func() {
			for _, k := range []string{key.AcquireAttempts, key.AcquireReadyWindow, key.AcquireInitialBackoff, key.AcquireMultiplier} {
				viper.Set(k, nil)
			}
		})

		p := PolicyFromConfig()
		So(p.Attempts, ShouldEqual, 5)
		So(p.ReadyWindow, ShouldEqual, 750*time.Millisecond)
		So(p.Delays()[:3], ShouldResemble, []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 900 * time.Millisecond})
	})

	Convey("Outcomes render", t, func() {
		So(Ready.String(), ShouldEqual, "ready")
		So(Degraded.String(), ShouldEqual, "degraded")
	})
}
