package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/orion/internal/buildinfo"
	"github.com/dmitrijs2005/orion/internal/cli"
	"github.com/dmitrijs2005/orion/internal/config"
	"github.com/dmitrijs2005/orion/internal/flagx"
	"github.com/dmitrijs2005/orion/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		// config loading panics on malformed input
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "fatal:", r)
			code = 2
		}
	}()

	args := flagx.StripArgs(os.Args[1:], config.ValueFlags, config.BoolFlags)
	if len(args) == 1 && (args[0] == "-version" || args[0] == "--version") {
		buildinfo.PrintBuildData(os.Stdout)
		return 0
	}

	cfg := config.LoadConfig()
	log := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(cfg, log, os.Stdin, os.Stdout)
	defer func() {
		if err := app.Close(); err != nil {
			log.Error(ctx, "closing database", "error", err)
		}
	}()

	return app.Run(ctx, args)
}
