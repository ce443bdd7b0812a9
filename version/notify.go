package version

import (
	"fmt"

	"github.com/playstate/playstate/color"
	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/icon"
	"github.com/playstate/playstate/key"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/style"
	"github.com/playstate/playstate/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists and version checks are enabled.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a newer release...", icon.Get(icon.Progress)))
	latest, err := Latest()
	erase()
	if err != nil {
		log.Warnf("version check: %v", err)
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s playstate %s is out %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(you're on %s)", constant.Version)),
		style.Faint("https://github.com/playstate/playstate/releases/tag/v"+latest),
	)
}
