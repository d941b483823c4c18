// Package main bootstraps and supervises the local LifeOS dev server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	launchercmd "github.com/louisbranch/lifeos/internal/cmd/launcher"
	"github.com/louisbranch/lifeos/internal/launcher"
	"github.com/louisbranch/lifeos/internal/platform/config"
)

func main() {
	cfg, err := launchercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := launchercmd.Run(ctx, cfg); err != nil {
		config.ExitCodef(launcher.ExitCode(err), "launcher: %v", err)
	}
}
