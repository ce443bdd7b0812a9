// Package inline writes the snapshot stream of an engine in a
// non-interactive, scriptable form: JSON lines or one plain line per change.
package inline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/icon"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/mediatime"
	"github.com/playstate/playstate/state"
)

// Run writes snapshots of e until the stop condition matches, the limit is
// reached, ctx is done or the engine shuts down. The subscription starts
// with the snapshot current at call time.
func Run(ctx context.Context, e *engine.Engine, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	sub := e.Subscribe()
	defer sub.Close()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-sub.C():
			if !ok {
				log.Debugf("inline: engine %s closed after %d snapshot(s)", e.ID(), seq)
				return nil
			}

			seq++
			if err := write(options, newLine(seq, e.ID(), options.URL, s)); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}

			if options.Until.IsPresent() && options.Until.MustGet()(s) {
				return nil
			}
			if options.Limit > 0 && seq >= options.Limit {
				return nil
			}
		}
	}
}

func write(options *Options, line Line) error {
	if options.Json {
		data, err := asJson(line)
		if err != nil {
			return err
		}
		_, err = options.Out.Write(data)
		return err
	}

	_, err := fmt.Fprintln(options.Out, Plain(line.State))
	return err
}

// Plain renders a snapshot as a single human readable line.
func Plain(s state.PlayerState) string {
	line := fmt.Sprintf("%s %s %s / %s buffering=%s rate=%g",
		icon.Get(icon.ForStatus(s.PlaybackStatus)),
		s.PlaybackStatus,
		mediatime.FormatMinutesSeconds(s.CurrentTime),
		mediatime.FormatMinutesSeconds(s.Duration),
		s.BufferingState,
		s.Rate,
	)
	if s.IsMuted {
		line += " " + icon.Get(icon.Muted)
	}
	return line
}

// WriteSchema writes the JSON schema of Line to out.
func WriteSchema(out io.Writer) error {
	return json.NewEncoder(out).Encode(Schema())
}
