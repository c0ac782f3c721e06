// Package cli is the habitr command line. Without a subcommand it starts
// the terminal UI.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/logging"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/tui"
)

// ErrNoTerminal is returned when the TUI is started without a terminal.
var ErrNoTerminal = errors.Base("habitr needs an interactive terminal, see habitr --help for commands")

var rootCmd = &cobra.Command{
	Use:          "habitr",
	Short:        "Track daily habits and moods in the terminal",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !isTerminal() {
			return errors.WithStack(ErrNoTerminal)
		}
		return runTUI(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "path to the database file")
	pf.String("config", "", "path to the config file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		listCmd,
		addCmd,
		removeCmd,
		setCmd,
		unsetCmd,
		statsCmd,
		categoriesCmd,
		exportCmd,
		importCmd,
		configCmd,
		versionCmd,
	)
}

func runTUI(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logPath, err := logFilePath(cfg)
	if err != nil {
		return err
	}
	log, closer, err := logging.Open(logPath, logLevel(cmd, cfg))
	if err != nil {
		return err
	}
	defer closer.Close()

	e, err := openStore(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer e.Close()

	period, err := stats.ParsePeriod(cfg.DefaultPeriod)
	if err != nil {
		period = stats.PeriodWeek
	}

	log.Info().Msg("starting tui")
	ctx := log.WithContext(cmd.Context())
	err = tui.Run(ctx, tui.Deps{
		Store:         e.store,
		Repo:          e.repo,
		Clock:         e.clock,
		Log:           log,
		ExportDir:     cfg.ExportDir,
		DefaultPeriod: period,
	})
	if err != nil {
		log.Error().Err(err).Msg("tui exited")
	}
	return err
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
