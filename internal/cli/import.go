package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/export"
	"github.com/sadopc/habitr/internal/tracker"
)

var importCmd = LeafCommand{
	Use:   "import FILE",
	Short: "Merge trackers from a JSON export or a zip of them",
	Args:  cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Errorf("open import file: %w", err)
		}
		defer f.Close()
		return runImport(cmd, e, f, ResolveConfirmFunc(yes))
	}),
}.Build()

func runImport(cmd *cobra.Command, e *env, r io.Reader, confirm ConfirmFunc) error {
	out := cmd.OutOrStdout()
	batch, err := export.ParseImport(r, e.clock.Now())
	if err != nil {
		return err
	}

	plan := tracker.PlanImport(e.repo.Trackers(), batch)
	for _, p := range plan {
		_, _ = fmt.Fprintln(out, describePlanEntry(p))
	}
	if !tracker.ChangesAnything(plan) {
		_, _ = fmt.Fprintln(out, Silent("nothing to import"))
		return nil
	}

	if err := confirmOrAbort(confirm, fmt.Sprintf("Import %d trackers?", len(batch))); err != nil {
		return err
	}
	if err := e.repo.ImportTrackers(batch); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("imported %d trackers", len(batch))))
	return nil
}

func describePlanEntry(p tracker.PlanEntry) string {
	if p.New {
		return fmt.Sprintf("%s %s %s", Info("new"), Primary(p.Name),
			Silent(fmt.Sprintf("%d options, %d dates", len(p.OptionsAdded), p.DatesAdded)))
	}
	parts := []string{
		fmt.Sprintf("%d dates added", p.DatesAdded),
		fmt.Sprintf("%d overwritten", p.DatesOverwritten),
		fmt.Sprintf("%d unchanged", p.DatesUnchanged),
	}
	if len(p.OptionsAdded) > 0 {
		parts = append(parts, "new options: "+strings.Join(p.OptionsAdded, ", "))
	}
	return fmt.Sprintf("%s %s %s", Warning("merge"), Primary(p.Name), Silent(strings.Join(parts, ", ")))
}
