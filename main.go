// Package main is the playstate command.
package main

import (
	"time"

	"github.com/playstate/playstate/cmd"
	"github.com/playstate/playstate/config"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/transport/mpv"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	defer func() { _ = log.Close() }()

	go mpv.SweepSockets(time.Minute)

	cmd.Execute()
}
