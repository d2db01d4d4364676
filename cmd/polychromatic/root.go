package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muesli/coral"

	"github.com/polychromatic/polychromatic-core/internal/backends/openrazer"
	"github.com/polychromatic/polychromatic-core/internal/history"
	"github.com/polychromatic/polychromatic-core/internal/infrastructure/config"
	"github.com/polychromatic/polychromatic-core/internal/infrastructure/database"
	"github.com/polychromatic/polychromatic-core/internal/infrastructure/logging"
	"github.com/polychromatic/polychromatic-core/internal/middleman"
	"github.com/polychromatic/polychromatic-core/internal/procpid"
)

var cfgFile string

// RootCmd is the top-level command. Subcommands register themselves in
// their init functions.
var RootCmd = &coral.Command{
	Use:           "polychromatic",
	Short:         "Configure RGB peripheral lighting and hardware settings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yml")
}

// app is the wired core shared by the subcommands: configuration,
// logging, the PID manager, the optional history store and the
// middleman with its registered backends.
type app struct {
	cfg   *config.Config
	log   *logging.Logger
	procs *procpid.Manager
	db    *database.DB
	hist  *history.Repository
	mm    *middleman.Middleman
}

// newApp loads configuration and wires the core. A history database
// that fails to open degrades to no history rather than aborting; a
// backend that fails to initialise is excluded, and only a total
// absence of backends is fatal.
func newApp(ctx context.Context) (*app, error) {
	log := logging.Default()

	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)

	procs, err := procpid.NewManager(cfg.Paths.RuntimeDir)
	if err != nil {
		return nil, fmt.Errorf("preparing runtime directory: %w", err)
	}
	procs.SetLogger(log.With("component", "procpid"))

	a := &app{cfg: cfg, log: log, procs: procs}

	if cfg.History.Enabled {
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			log.Warn("history database unavailable, continuing without", "error", err)
		} else if err := db.Bootstrap(ctx); err != nil {
			log.Warn("history schema bootstrap failed, continuing without", "error", err)
			_ = db.Close()
		} else {
			a.db = db
			a.hist = history.NewRepository(db)
			if retention := cfg.GetHistoryRetention(); retention > 0 {
				if pruned, err := a.hist.Prune(ctx, retention); err != nil {
					log.Warn("history pruning failed", "error", err)
				} else if pruned > 0 {
					log.Debug("pruned history entries", "count", pruned)
				}
			}
		}
	}

	mm := middleman.New(middleman.Options{
		StateDir: cfg.StatesDir(),
		Procs:    procs,
		Helper: &helperLauncher{
			binary:  cfg.Helper.Binary,
			timeout: cfg.GetHelperGracefulTimeout(),
			log:     log.With("component", "helper"),
		},
		History: a.hist,
	})
	mm.SetLogger(log.With("component", "middleman"))

	if cfg.Backends.OpenRazer.Enabled {
		client := openrazer.NewSysfsClient(cfg.Backends.OpenRazer.SysfsRoot)
		adapter, err := openrazer.New(client, openrazer.Options{
			PersistenceDir: cfg.PersistenceDir(openrazer.BackendID),
			SysfsRoot:      cfg.Backends.OpenRazer.SysfsRoot,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("creating openrazer backend: %w", err)
		}
		adapter.SetLogger(log.With("backend", openrazer.BackendID))
		mm.Register(adapter)
	}

	if err := mm.Init(ctx); err != nil {
		if errors.Is(err, middleman.ErrNoBackends) {
			a.close()
			return nil, err
		}
		log.Warn("some backends failed to initialise", "error", err)
	}
	a.mm = mm

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("closing history database", "error", err)
		}
	}
}

// configPath resolves the config file location: the --config flag, the
// POLYCHROMATIC_CONFIG environment variable, then the XDG default.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := os.Getenv("POLYCHROMATIC_CONFIG"); path != "" {
		return path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "polychromatic", "config.yml")
}
