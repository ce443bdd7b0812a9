package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/signal"
	"github.com/playstate/playstate/transport"
	. "github.com/smartystreets/goconvey/convey"
)

const waitTimeout = 2 * time.Second

// fakeMpv answers IPC requests on one end of a pipe.
type fakeMpv struct {
	conn net.Conn

	wmu sync.Mutex
	enc *json.Encoder

	mu       sync.Mutex
	commands [][]any
	reject   map[string]string
	// before runs ahead of the reply to the named command.
	before map[string]func()
}

func newFakeMpv(conn net.Conn) *fakeMpv {
	f := &fakeMpv{conn: conn, enc: json.NewEncoder(conn), reject: map[string]string{}, before: map[string]func(){}}
	go f.serve()
	return f
}

func (f *fakeMpv) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		status := "success"
		if msg, ok := f.reject[req.Command[0].(string)]; ok {
			status = msg
		}
		hook := f.before[req.Command[0].(string)]
		f.mu.Unlock()

		if hook != nil {
			hook()
		}

		f.send(map[string]any{"request_id": req.RequestID, "error": status, "data": nil})
	}
}

func (f *fakeMpv) send(v any) {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	_ = f.enc.Encode(v)
}

func (f *fakeMpv) event(name string) {
	f.send(map[string]any{"event": name})
}

func (f *fakeMpv) property(name string, data any) {
	f.send(map[string]any{"event": "property-change", "name": name, "data": data})
}

func (f *fakeMpv) commandsNamed(name string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]any
	for _, c := range f.commands {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func collector() (signal.Sink, <-chan signal.Signal) {
	ch := make(chan signal.Signal, 64)
	return func(sig signal.Signal) { ch <- sig }, ch
}

func next(ch <-chan signal.Signal) signal.Signal {
	select {
	case sig := <-ch:
		return sig
	case <-time.After(waitTimeout):
		return nil
	}
}

func TestTransport(t *testing.T) {
	Convey("Given a transport attached to a fake mpv", t, func() {
		client, server := net.Pipe()
		mpv := newFakeMpv(server)

		tr, err := attach(context.Background(), client, 0)
		So(err, ShouldBeNil)
		Reset(func() {
			_ = tr.Close()
			_ = server.Close()
		})

		So(mpv.commandsNamed("observe_property"), ShouldHaveLength, len(observed))

		playerSink, playerSignals := collector()
		tr.Observe(playerSink)

		Convey("Load replaces the file and routes its notifications", func() {
			itemSink, itemSignals := collector()
			_, err := tr.Load("https://example.com/a.m3u8", itemSink)
			So(err, ShouldBeNil)

			loads := mpv.commandsNamed("loadfile")
			So(loads, ShouldHaveLength, 1)
			So(loads[0], ShouldResemble, []any{"loadfile", "https://example.com/a.m3u8", "replace"})

			mpv.property("time-pos", 99.0)
			mpv.event("start-file")
			So(next(itemSignals), ShouldResemble, signal.ItemStatus{Condition: signal.ItemUnknown})

			mpv.property("duration", 30.0)
			mpv.event("file-loaded")
			ready := next(itemSignals).(signal.ItemStatus)
			So(ready.Condition, ShouldEqual, signal.ItemReady)
			So(ready.Duration().SecondsOrZero(), ShouldEqual, 30)

			Convey("Play unpauses and reports through the player sink", func() {
				So(tr.Play(1, false), ShouldBeNil)
				So(mpv.commandsNamed("set_property"), ShouldResemble, [][]any{{"set_property", "pause", false}})

				mpv.property("pause", false)
				So(next(playerSignals), ShouldResemble, signal.RateChanged{Rate: 1})
				So(next(playerSignals), ShouldResemble, signal.TransportStatus{Control: signal.TransportPlaying})
			})

			Convey("Play at another rate sets the speed first", func() {
				So(tr.Play(2, true), ShouldBeNil)
				So(mpv.commandsNamed("set_property"), ShouldResemble, [][]any{
					{"set_property", "speed", 2.0},
					{"set_property", "pause", false},
				})
			})

			Convey("Seek completes on playback restart", func() {
				result := make(chan bool, 1)
				tr.Seek(mediatime.FromSeconds(12), func(ok bool) { result <- ok })
				So(mpv.commandsNamed("seek"), ShouldResemble, [][]any{{"seek", 12.0, "absolute+exact"}})

				mpv.event("playback-restart")
				select {
				case ok := <-result:
					So(ok, ShouldBeTrue)
				case <-time.After(waitTimeout):
					So("seek never completed", ShouldBeEmpty)
				}
			})

			Convey("A restart read before the seek is acknowledged does not complete it", func() {
				mpv.mu.Lock()
				mpv.before["seek"] = func() { mpv.event("playback-restart") }
				mpv.mu.Unlock()

				result := make(chan bool, 1)
				tr.Seek(mediatime.FromSeconds(12), func(ok bool) { result <- ok })
				So(len(result), ShouldEqual, 0)

				mpv.event("playback-restart")
				select {
				case ok := <-result:
					So(ok, ShouldBeTrue)
				case <-time.After(waitTimeout):
					So("seek never completed", ShouldBeEmpty)
				}
			})

			Convey("A rejected seek completes with false", func() {
				mpv.mu.Lock()
				mpv.reject["seek"] = "invalid parameter"
				mpv.mu.Unlock()

				result := make(chan bool, 1)
				tr.Seek(mediatime.FromSeconds(12), func(ok bool) { result <- ok })
				So(<-result, ShouldBeFalse)
			})

			Convey("Loading again fails pending seeks and detaches the old sink", func() {
				result := make(chan bool, 1)
				tr.Seek(mediatime.FromSeconds(5), func(ok bool) { result <- ok })

				otherSink, otherSignals := collector()
				_, err := tr.Load("/media/b.mkv", otherSink)
				So(err, ShouldBeNil)
				So(<-result, ShouldBeFalse)

				mpv.event("start-file")
				So(next(otherSignals), ShouldResemble, signal.ItemStatus{Condition: signal.ItemUnknown})
				select {
				case sig := <-itemSignals:
					So(sig, ShouldBeNil)
				default:
				}
			})

			Convey("Close fails pending seeks and refuses new loads", func() {
				result := make(chan bool, 1)
				tr.Seek(mediatime.FromSeconds(5), func(ok bool) { result <- ok })

				So(tr.Close(), ShouldBeNil)
				So(<-result, ShouldBeFalse)

				_, err := tr.Load("https://example.com/b.m3u8", itemSink)
				So(errors.Is(err, transport.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("Invalid targets never reach mpv", func() {
			_, err := tr.Load("--script=x.lua", func(signal.Signal) {})
			So(err, ShouldNotBeNil)
			So(mpv.commandsNamed("loadfile"), ShouldBeEmpty)
		})

		Convey("Mute is forwarded", func() {
			So(tr.SetMuted(true), ShouldBeNil)
			So(mpv.commandsNamed("set_property"), ShouldResemble, [][]any{{"set_property", "mute", true}})

			mpv.property("mute", true)
			So(next(playerSignals), ShouldResemble, signal.MuteChanged{Muted: true})
		})

		Convey("Commands fail once mpv goes away", func() {
			_ = server.Close()
			<-tr.ipc.done
			So(errors.Is(tr.Pause(), ErrNotRunning), ShouldBeTrue)
		})
	})
}
