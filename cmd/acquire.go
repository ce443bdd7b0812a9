package cmd

import (
	"fmt"
	"os"

	"github.com/playstate/playstate/acquire"
	"github.com/playstate/playstate/color"
	"github.com/playstate/playstate/icon"
	"github.com/playstate/playstate/style"
	"github.com/playstate/playstate/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(acquireCmd)
	addSessionFlags(acquireCmd)

	acquireCmd.Flags().Bool("schedule", false, "Print the retry schedule and exit")
	acquireCmd.Flags().BoolP("hold", "H", false, "Keep playing after the outcome until interrupted")

	acquireCmd.SetOut(os.Stdout)
}

var acquireCmd = &cobra.Command{
	Use:   "acquire <url>",
	Short: "Open a source with retries and report the outcome",
	Long: `Open a source with retries and report the outcome.

Each attempt loads the source on a fresh mpv and waits acquire.ready_window
for it to become ready. Failed attempts are followed by a growing delay.
When every attempt fails the last session is kept and reported as degraded.`,
	Args: cobra.RangeArgs(0, 1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSessionFlags(cmd, args)

		if !lo.Must(cmd.Flags().GetBool("schedule")) && len(args) == 0 {
			handleErr(fmt.Errorf("a source url is required"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		policy := acquire.PolicyFromConfig()

		if lo.Must(cmd.Flags().GetBool("schedule")) {
			cmd.Printf("%s, %s window\n", util.Quantify(policy.Attempts, "attempt", "attempts"), policy.ReadyWindow)
			for i, delay := range policy.Delays() {
				cmd.Printf("  %s after attempt %d\n", style.Fg(color.Yellow)(delay.String()), i+1)
			}
			return
		}

		CheckDependencies()

		url := args[0]
		ctx, stop := interruptible()
		defer stop()

		metrics, wait, err := serveMetrics(ctx)
		handleErr(err)

		erase := util.PrintErasable(fmt.Sprintf("%s Acquiring %s...", icon.Get(icon.Progress), url))
		res, err := acquire.New(opener(ctx, url, lo.Must(cmd.Flags().GetBool("headless"))), policy).Acquire(ctx, url)
		erase()

		if metrics != nil {
			metrics.ObserveAcquire(res)
		}

		if err != nil {
			if res.Engine != nil {
				_ = res.Engine.Close()
			}
			handleErr(err)
		}

		switch res.Outcome {
		case acquire.Ready:
			cmd.Printf("%s %s after %s\n",
				icon.Get(icon.Success),
				style.Fg(color.Green)("ready"),
				util.Quantify(res.Attempts, "attempt", "attempts"),
			)
		default:
			cmd.Printf("%s %s after %s: %v\n",
				icon.Get(icon.Warn),
				style.Fg(color.Yellow)("degraded"),
				util.Quantify(res.Attempts, "attempt", "attempts"),
				res.LastErr,
			)
		}

		if res.Engine == nil {
			return
		}

		if lo.Must(cmd.Flags().GetBool("hold")) {
			if metrics != nil {
				go metrics.Follow(ctx, res.Engine.Subscribe())
			}
			select {
			case <-ctx.Done():
			case <-res.Engine.Done():
			}
		}

		handleErr(res.Engine.Close())
		stop()
		handleErr(wait())
	},
}
