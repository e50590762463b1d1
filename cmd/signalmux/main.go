// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package main is the signalmux entry point: a long-running telemetry
// router daemon. Usage:
//
//	signalmux -C /etc/signalmux/config.yaml
//	signalmux -v -v -v   # increase verbosity (repeatable, 0=error .. 4=trace)
//	signalmux --version
//
// Exit codes per spec.md §6: 0 on a clean exit (not normally reached --
// the process is a daemon), 1 on a configuration error, non-zero on any
// worker panic (via internal/supervisor.Tree.Fatal).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/logging"
	"github.com/tomtom215/signalmux/internal/topology"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	app := &cli.App{
		Name:    "signalmux",
		Usage:   "telemetry router: sources -> filters -> sinks over durable queues",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"C"}, Usage: "path to configuration file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "increase logging verbosity (repeatable)"},
		},
		Action:         run,
		ExitErrHandler: exitErrHandler,
	}

	if err := app.Run(os.Args); err != nil {
		// exitErrHandler already handled the exit for cli.ExitCoder
		// errors; this branch only covers errors it didn't recognize.
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	verbosity := countVerboseFlags(os.Args)
	logging.Init(logging.Config{Level: logging.LevelForVerbosity(verbosity), Format: "console", Output: os.Stderr})
	log := logging.Root()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return cli.Exit(fmt.Sprintf("configuration error: %v", err), 1)
	}

	topo, err := topology.Build(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build topology")
		return cli.Exit(fmt.Sprintf("configuration error: %v", err), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks for the process lifetime. A worker panic is fatal and
	// exits the process directly via supervisor.Tree.Fatal before this
	// call returns, so reaching here normally means a clean shutdown
	// from a received signal.
	return topo.Run(ctx)
}

// countVerboseFlags counts repeated -v/--verbose occurrences directly
// from os.Args: urfave/cli v2's BoolFlag only reports presence, not
// count, so repeated verbosity flags (-v -v -v) need this manual scan
// instead of a library-provided counter.
func countVerboseFlags(args []string) int {
	count := 0
	for _, a := range args {
		switch a {
		case "-v", "--verbose":
			count++
		default:
			if len(a) > 1 && a[0] == '-' && a[1] != '-' {
				for _, r := range a[1:] {
					if r == 'v' {
						count++
					}
				}
			}
		}
	}
	return count
}

func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	var exitCoder cli.ExitCoder
	if ec, ok := err.(cli.ExitCoder); ok {
		exitCoder = ec
		if msg := exitCoder.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exitCoder.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
