package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = LeafCommand{
	Use:   "categories",
	Short: "List the categories in use",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
		for _, c := range e.repo.GetCategories() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	}),
}.Build()
