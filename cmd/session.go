package cmd

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/playstate/playstate/acquire"
	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/telemetry"
	"github.com/playstate/playstate/transport/mpv"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sessionFlags = map[string]string{
	"rate":         key.PlayerRate,
	"mute":         key.PlayerMuted,
	"metrics-addr": key.TelemetryAddr,
}

// addSessionFlags registers the flags shared by every command that plays a source.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("rate", "r", 1, "Preferred playback rate")
	cmd.Flags().BoolP("mute", "m", false, "Start muted")
	cmd.Flags().StringP("metrics-addr", "M", "", "Serve Prometheus metrics on this address")
	cmd.Flags().Bool("headless", false, "Disable video and audio output")
}

// bindSessionFlags binds the flags of the command being run. Several
// commands share the keys, so binding happens per run instead of in init.
func bindSessionFlags(cmd *cobra.Command, _ []string) {
	for flag, k := range sessionFlags {
		lo.Must0(viper.BindPFlag(k, cmd.Flags().Lookup(flag)))
	}
}

// interruptible returns a context that ends on SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func mpvOptions(url string, headless bool) mpv.Options {
	return mpv.Options{
		Binary:       viper.GetString(key.MpvBinary),
		SocketWait:   viper.GetDuration(key.MpvSocketWait),
		TickInterval: viper.GetDuration(key.PlayerTickInterval),
		Title:        fmt.Sprintf("%s - %s", constant.App, url),
		Headless:     headless,
	}
}

// opener spawns a fresh mpv for every engine it opens.
func opener(ctx context.Context, url string, headless bool) func() (*engine.Engine, error) {
	return func() (*engine.Engine, error) {
		t, err := mpv.Start(ctx, mpvOptions(url, headless))
		if err != nil {
			return nil, err
		}

		return engine.New(
			t,
			engine.WithPreferredRate(viper.GetFloat64(key.PlayerRate)),
			engine.WithMuted(viper.GetBool(key.PlayerMuted)),
		), nil
	}
}

// openSession yields a playing engine for url. With resilient set it goes
// through the acquirer; otherwise it stops, loads and plays once.
func openSession(ctx context.Context, url string, headless, resilient bool, metrics *telemetry.Metrics) (*engine.Engine, error) {
	open := opener(ctx, url, headless)

	if resilient {
		res, err := acquire.New(open, acquire.PolicyFromConfig()).Acquire(ctx, url)
		if metrics != nil {
			metrics.ObserveAcquire(res)
		}
		if err != nil {
			if res.Engine != nil {
				_ = res.Engine.Close()
			}
			return nil, err
		}
		if res.Engine == nil {
			return nil, fmt.Errorf("acquire %s: %w", url, res.LastErr)
		}
		if res.Outcome == acquire.Degraded {
			log.Warnf("session %s: degraded after %d attempt(s): %v", res.Engine.ID(), res.Attempts, res.LastErr)
		}
		return res.Engine, nil
	}

	e, err := open()
	if err != nil {
		return nil, err
	}

	for _, step := range []func() error{
		e.Stop,
		func() error { return e.Load(url) },
		e.Play,
	} {
		if err := step(); err != nil {
			_ = e.Close()
			return nil, err
		}
	}

	return e, nil
}

// serveMetrics starts the metrics endpoint when telemetry.addr is set.
// Without an address it returns nil metrics and a no-op wait.
func serveMetrics(ctx context.Context) (*telemetry.Metrics, func() error, error) {
	addr := viper.GetString(key.TelemetryAddr)
	if addr == "" {
		return nil, func() error { return nil }, nil
	}

	metrics := telemetry.New()
	_, wait, err := metrics.Serve(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	return metrics, wait, nil
}
