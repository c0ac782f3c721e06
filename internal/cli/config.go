package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/habitr/internal/config"
)

var configInitCmd = LeafCommand{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	BoolFlags: []BoolFlag{
		{Name: "force", Usage: "overwrite an existing config file"},
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		return runConfigInit(cmd, path, force)
	},
}.Build()

var configShowCmd = LeafCommand{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runConfigShow(cmd, cfg)
	},
}.Build()

var configCmd = GroupCommand{
	Use:         "config",
	Short:       "Manage the config file",
	Subcommands: []*cobra.Command{configInitCmd, configShowCmd},
}.Build()

func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("%s already exists, pass --force to overwrite", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("config written to %s", Primary(path))))
	return nil
}

func runConfigShow(cmd *cobra.Command, cfg config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Errorf("marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
