package cmd

import (
	"errors"
	"os"

	"github.com/playstate/playstate/filesystem"
	"github.com/playstate/playstate/inline"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	addSessionFlags(watchCmd)

	watchCmd.Flags().BoolP("json", "j", false, "Write snapshots as JSON lines")
	watchCmd.Flags().Bool("schema", false, "Print the JSON schema of a snapshot line and exit")
	watchCmd.Flags().StringP("until", "u", "", "Stop once a snapshot matches: ready, playing, paused, finished, failed, terminal or a progress ratio")
	watchCmd.Flags().IntP("limit", "n", 0, "Stop after this many snapshots")
	watchCmd.Flags().BoolP("acquire", "a", false, "Open the source with retries and backoff")
	watchCmd.Flags().StringP("output", "o", "", "Write snapshots to a file instead of stdout")
}

var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Play a source and print every playback state change",
	Long: `Play a source and print every playback state change.

The source is stopped, loaded and played on a fresh mpv. Each published
snapshot is written as one line, or one JSON object per line with --json.`,
	Example: `  playstate watch https://example.com/live.m3u8 --json --until terminal
  playstate watch --schema`,
	Args: cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSessionFlags(cmd, args)

		if !lo.Must(cmd.Flags().GetBool("schema")) && len(args) == 0 {
			handleErr(errors.New("a source url is required"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(inline.WriteSchema(os.Stdout))
			return
		}

		CheckDependencies()

		url := args[0]
		options := &inline.Options{
			URL:   url,
			Json:  lo.Must(cmd.Flags().GetBool("json")),
			Limit: lo.Must(cmd.Flags().GetInt("limit")),
		}

		if until := lo.Must(cmd.Flags().GetString("until")); until != "" {
			fn, err := inline.ParseStopCondition(until)
			handleErr(err)
			options.Until = mo.Some(fn)
		}

		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer file.Close()
			options.Out = file
		} else {
			options.Out = os.Stdout
		}

		ctx, stop := interruptible()
		defer stop()

		metrics, wait, err := serveMetrics(ctx)
		handleErr(err)

		e, err := openSession(
			ctx,
			url,
			lo.Must(cmd.Flags().GetBool("headless")),
			lo.Must(cmd.Flags().GetBool("acquire")),
			metrics,
		)
		handleErr(err)

		if metrics != nil {
			go metrics.Follow(ctx, e.Subscribe())
		}

		runErr := inline.Run(ctx, e, options)
		closeErr := e.Close()
		stop()
		waitErr := wait()

		handleErr(errors.Join(runErr, closeErr, waitErr))
	},
}
