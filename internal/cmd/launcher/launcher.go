// Package launcher parses launcher configuration and runs the bootstrap
// sequence.
package launcher

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/louisbranch/lifeos/internal/launcher"
	entrypoint "github.com/louisbranch/lifeos/internal/platform/cmd"
	"github.com/louisbranch/lifeos/internal/platform/logging"
)

// Config holds launcher command configuration. By default the install step
// builds the LifeOS server into bin/ and the serve step runs that binary.
type Config struct {
	Runtime  string        `env:"LIFEOS_LAUNCHER_RUNTIME" envDefault:"node"`
	MinMajor int           `env:"LIFEOS_LAUNCHER_MIN_MAJOR" envDefault:"18"`
	Dir      string        `env:"LIFEOS_LAUNCHER_DIR" envDefault:"."`
	DepsDir  string        `env:"LIFEOS_LAUNCHER_DEPS_DIR" envDefault:"bin"`
	Install  string        `env:"LIFEOS_LAUNCHER_INSTALL" envDefault:"go build -o bin/lifeos ./cmd/lifeos"`
	Serve    string        `env:"LIFEOS_LAUNCHER_SERVE" envDefault:"bin/lifeos"`
	Port     int           `env:"LIFEOS_LAUNCHER_PORT" envDefault:"3000"`
	Open     bool          `env:"LIFEOS_LAUNCHER_OPEN" envDefault:"true"`
	Grace    time.Duration `env:"LIFEOS_LAUNCHER_GRACE" envDefault:"1s"`
	Logging  logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "Project directory")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Port the dev server listens on")
	fs.BoolVar(&cfg.Open, "open", cfg.Open, "Open the default browser once the server is up")
	fs.StringVar(&cfg.Serve, "serve", cfg.Serve, "Command that starts the dev server")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the launcher. The returned error maps to an exit code with
// launcher.ExitCode.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	l, err := launcher.New(launcher.Config{
		Runtime:  cfg.Runtime,
		MinMajor: cfg.MinMajor,
		Dir:      cfg.Dir,
		DepsDir:  cfg.DepsDir,
		Install:  cfg.Install,
		Serve:    cfg.Serve,
		Port:     cfg.Port,
		Open:     cfg.Open,
		Grace:    cfg.Grace,
	}, launcher.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("configure launcher: %w", err)
	}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceLauncher, entrypoint.RunOptions{Logger: logger}, l.Run)
}
