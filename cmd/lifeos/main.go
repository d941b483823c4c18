// Package main starts the LifeOS dashboard server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	lifeoscmd "github.com/louisbranch/lifeos/internal/cmd/lifeos"
	"github.com/louisbranch/lifeos/internal/platform/config"
)

func main() {
	cfg, err := lifeoscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lifeoscmd.Run(ctx, cfg); err != nil {
		config.Exitf("lifeos: %v", err)
	}
}
