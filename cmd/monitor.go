package cmd

import (
	"context"

	"github.com/playstate/playstate/engine"
	"github.com/playstate/playstate/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	addSessionFlags(monitorCmd)

	monitorCmd.Flags().BoolP("acquire", "a", false, "Open the source with retries and backoff")
}

var monitorCmd = &cobra.Command{
	Use:    "monitor <url>",
	Short:  "Play a source and follow its state in a terminal monitor",
	Args:   cobra.ExactArgs(1),
	PreRun: bindSessionFlags,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		url := args[0]
		headless := lo.Must(cmd.Flags().GetBool("headless"))
		resilient := lo.Must(cmd.Flags().GetBool("acquire"))

		ctx, stop := interruptible()
		defer stop()

		metrics, wait, err := serveMetrics(ctx)
		handleErr(err)

		handleErr(tui.Run(&tui.Options{
			URL: url,
			Open: func(uiCtx context.Context) (*engine.Engine, error) {
				e, err := openSession(uiCtx, url, headless, resilient, metrics)
				if err == nil && metrics != nil {
					go metrics.Follow(ctx, e.Subscribe())
				}
				return e, err
			},
		}))

		stop()
		handleErr(wait())
	},
}
