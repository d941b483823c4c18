// Package lifeos parses server configuration and runs the LifeOS shell.
package lifeos

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"github.com/louisbranch/lifeos/internal/lifeos/records"
	"github.com/louisbranch/lifeos/internal/lifeos/shell"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	entrypoint "github.com/louisbranch/lifeos/internal/platform/cmd"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/platform/metrics"
	"github.com/louisbranch/lifeos/internal/services/web"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/static"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr string `env:"LIFEOS_HTTP_ADDR" envDefault:"localhost:3000"`
	// PublicURL is the origin browsers use; it decides whether background
	// services are available. Defaults to http://<HTTPAddr>.
	PublicURL    string        `env:"LIFEOS_PUBLIC_URL"`
	StoreDriver  string        `env:"LIFEOS_STORE_DRIVER" envDefault:"sqlite"`
	StorePath    string        `env:"LIFEOS_STORE_PATH" envDefault:"data/lifeos.db"`
	StoreQuota   int64         `env:"LIFEOS_STORE_QUOTA_BYTES" envDefault:"5242880"`
	CatalogPath  string        `env:"LIFEOS_CATALOG_PATH"`
	ReminderPoll time.Duration `env:"LIFEOS_REMINDER_POLL" envDefault:"30s"`
	Locale       string        `env:"LIFEOS_LOCALE" envDefault:"en-US"`
	Logging      logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Origin browsers load the shell from")
	fs.StringVar(&cfg.StoreDriver, "store-driver", cfg.StoreDriver, "Store substrate: sqlite, bbolt or memory")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Store database file")
	fs.Int64Var(&cfg.StoreQuota, "store-quota", cfg.StoreQuota, "Store quota in bytes (0 uses the default)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Module catalog YAML (defaults to the embedded catalog)")
	fs.DurationVar(&cfg.ReminderPoll, "reminder-poll", cfg.ReminderPoll, "How often due reminders are checked")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.PublicURL) == "" {
		cfg.PublicURL = "http://" + cfg.HTTPAddr
	}
	return cfg, nil
}

// Run starts the LifeOS server until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceLifeOS, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return serve(ctx, cfg, logger, nil)
	})
}

// serve assembles the shell and serves it on ln, or on cfg.HTTPAddr when ln
// is nil.
func serve(ctx context.Context, cfg Config, logger *zap.Logger, ln net.Listener) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	substrate, err := store.OpenSubstrate(ctx, cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	m := metrics.New()
	sh, err := shell.Assemble(shell.Config{
		Catalog:       cat,
		Substrate:     substrate,
		Quota:         cfg.StoreQuota,
		PublicURL:     cfg.PublicURL,
		ReminderPoll:  cfg.ReminderPoll,
		ScriptPresent: serviceWorkerPresent,
		Formatter:     records.NewFormatter(tag, nil),
		Metrics:       m,
		Logger:        logger,
	})
	if err != nil {
		_ = substrate.Close()
		return fmt.Errorf("assemble shell: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	sh.Start(runCtx)
	defer func() {
		cancel()
		if err := sh.Close(); err != nil {
			logger.Warn("close shell", zap.Error(err))
		}
	}()

	server, err := web.NewServer(web.Config{
		Addr:         cfg.HTTPAddr,
		Dependencies: module.Dependencies{Shell: sh, Metrics: m, Logger: logger},
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	logger.Info("lifeos starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("public_url", cfg.PublicURL),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Int("modules", len(cat.Modules)),
	)
	if ln != nil {
		err = server.Serve(runCtx, ln)
	} else {
		err = server.ListenAndServe(runCtx)
	}
	if err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

func loadCatalog(path string) (catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func serviceWorkerPresent() bool {
	_, err := fs.Stat(static.FS, static.ServiceWorkerFile)
	return err == nil
}
