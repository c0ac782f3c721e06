package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = LeafCommand{
	Use:     "remove TRACKER",
	Aliases: []string{"rm"},
	Short:   "Delete a tracker and everything recorded in it",
	Args:    cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return runRemove(cmd, e, args[0], ResolveConfirmFunc(yes))
	}),
}.Build()

func runRemove(cmd *cobra.Command, e *env, identifier string, confirm ConfirmFunc) error {
	t, err := resolveTracker(e.repo.Trackers(), identifier)
	if err != nil {
		return err
	}

	if n := t.EntryCount(); n > 0 {
		prompt := fmt.Sprintf("Tracker '%s' has %d recorded dates. Delete it?", t.Name, n)
		if err := confirmOrAbort(confirm, prompt); err != nil {
			return err
		}
	}

	if err := e.repo.DeleteTracker(t.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("tracker '%s' removed", Primary(t.Name))))
	return nil
}
