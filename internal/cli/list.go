package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = LeafCommand{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List trackers",
	Args:    cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
		return runList(cmd, e)
	}),
}.Build()

func runList(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	ts := e.repo.Trackers()
	if len(ts) == 0 {
		_, _ = fmt.Fprintln(out, Silent("no trackers yet, create one with 'habitr add'"))
		return nil
	}
	for _, t := range ts {
		chips := make([]string, len(t.Options))
		for i, o := range t.Options {
			chips[i] = Chip(o)
		}
		category := ""
		if t.Category != "" {
			category = Info(t.Category) + " "
		}
		_, _ = fmt.Fprintf(out, "%s %s%s %s %s\n",
			Primary(t.Name), category, strings.Join(chips, " "),
			Silent(fmt.Sprintf("%d entries", t.EntryCount())), Silent(t.ID))
	}
	return nil
}
