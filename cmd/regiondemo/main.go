// Command regiondemo runs a synthetic workload through the region runner on
// a simulated host and exposes its metrics over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "regiondemo",
		Usage:   "drive the region runner on a simulated host",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"REGIONDEMO_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the demo workload until interrupted",
				Action: runAction,
				Flags:  runFlags,
			},
			{
				Name:   "detect",
				Usage:  "print the model the runtime selects for the configured host",
				Action: detectAction,
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration",
				Action: configAction,
			},
		},
		DefaultCommand: "run",
	}
}

var runFlags = []cli.Flag{
	&cli.DurationFlag{
		Name:  "duration",
		Usage: "stop after this long; zero runs until interrupted",
	},
	&cli.IntFlag{
		Name:  "entities",
		Usage: "number of wandering entities",
		Value: 16,
	},
	&cli.StringFlag{
		Name:  "report",
		Usage: "cron spec, HH:MM or interval for the status report",
		Value: "@every 10s",
	},
	&cli.StringFlag{
		Name:  "model",
		Usage: "override host.model (legacy or regionized)",
	},
}
