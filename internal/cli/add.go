package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/palette"
	"github.com/sadopc/habitr/internal/tracker"
)

var addCmd = LeafCommand{
	Use:     "add NAME",
	Short:   "Create a tracker",
	Example: `  habitr add Mood --category Health --options "Good,Okay,Bad"`,
	Args:    cobra.ExactArgs(1),
	StrFlags: []StringFlag{
		{Name: "category", Shorthand: "c", Usage: "category to file the tracker under"},
		{Name: "options", Shorthand: "o", Usage: "comma-separated option labels", Default: "Yes,No"},
	},
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		options, _ := cmd.Flags().GetString("options")
		seed := uint64(e.clock.Now().UnixNano())
		return runAdd(cmd, e, args[0], category, options, rand.New(rand.NewPCG(seed, seed>>1)))
	}),
}.Build()

func runAdd(cmd *cobra.Command, e *env, name, category, options string, rnd *rand.Rand) error {
	var opts []tracker.Option
	for _, label := range strings.Split(options, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		color := palette.Suggest(label, rnd)
		opts = append(opts, tracker.Option{Label: label, Color: color, TextColor: palette.ContrastColor(color)})
	}

	t, err := tracker.New(name, category, opts, e.clock.Now())
	if err != nil {
		return err
	}
	if err := e.repo.AddTracker(t); err != nil {
		return errors.Errorf("save tracker: %w", err)
	}
	e.log.Debug().Str("id", t.ID).Msg("tracker created")

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("tracker '%s' created %s", Primary(t.Name), Silent(t.ID))))
	return nil
}
