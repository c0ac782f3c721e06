package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/habitr/internal/export"
)

var exportCmd = LeafCommand{
	Use:   "export",
	Short: "Export every tracker to a file",
	Example: "  habitr export --format zip\n" +
		"  habitr export --format csv --out - > habits.csv",
	Args: cobra.NoArgs,
	StrFlags: []StringFlag{
		{Name: "format", Shorthand: "f", Usage: "json, zip or csv", Default: string(export.FormatJSON)},
		{Name: "out", Shorthand: "o", Usage: "output file, '-' for stdout (default: dated file in the export dir)"},
	},
	RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		return runExport(cmd, e, format, out)
	}),
}.Build()

func runExport(cmd *cobra.Command, e *env, formatArg, out string) error {
	format, err := export.ParseFormat(formatArg)
	if err != nil {
		return err
	}
	trackers := e.repo.Trackers()

	if out == "-" {
		return export.Write(cmd.OutOrStdout(), format, trackers)
	}
	if out == "" {
		out = filepath.Join(e.cfg.ExportDir, export.FileName(format, e.clock.Now()))
	}
	if err := export.ToFile(out, format, trackers); err != nil {
		return err
	}
	e.log.Info().Str("path", out).Int("trackers", len(trackers)).Msg("exported")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("exported %d trackers to %s", len(trackers), Primary(out))))
	return nil
}
