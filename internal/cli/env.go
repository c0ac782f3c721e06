package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/config"
	"github.com/sadopc/habitr/internal/logging"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/tracker"
)

// env is what a command runs against.
type env struct {
	cfg   config.Config
	store *store.Store
	repo  *tracker.Repository
	log   zerolog.Logger
	clock stats.Clock
}

func (e *env) Close() error {
	return e.store.Close()
}

// loadConfig reads --config, or the default config file when unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

// logLevel is --log-level when given, else the configured level.
func logLevel(cmd *cobra.Command, cfg config.Config) string {
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		return lvl
	}
	return cfg.LogLevel
}

// dbPath is --db, then db_path from the config, then the default location.
func dbPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return store.DefaultDBPath()
}

func logFilePath(cfg config.Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	dir, err := store.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "habitr.log"), nil
}

// openStore opens the database without loading the collection.
func openStore(cmd *cobra.Command, cfg config.Config, log zerolog.Logger) (*env, error) {
	path, err := dbPath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	s, err := store.New(path)
	if err != nil {
		return nil, errors.Errorf("open database %s: %w", path, err)
	}
	log.Debug().Str("db", path).Msg("store opened")
	return &env{
		cfg:   cfg,
		store: s,
		repo:  tracker.NewRepository(s, log),
		log:   log,
		clock: stats.SystemClock{},
	}, nil
}

// openEnv prepares a headless command: config, a console logger on
// stderr, and a loaded repository.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.Console(cmd.ErrOrStderr(), logLevel(cmd, cfg))
	if err != nil {
		return nil, err
	}
	e, err := openStore(cmd, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := e.repo.Load(cmd.Context()); err != nil {
		e.Close()
		return nil, errors.Errorf("load trackers: %w", err)
	}
	return e, nil
}

// withEnv wraps a command body that needs an env.
func withEnv(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd, e, args)
	}
}
