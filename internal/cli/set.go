package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

var setCmd = LeafCommand{
	Use:     "set TRACKER DATE LABEL",
	Short:   "Record an option for a date",
	Example: "  habitr set Mood today Good\n  habitr set Mood 2024-03-14 Bad",
	Args:    cobra.ExactArgs(3),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return runSet(cmd, e, args[0], args[1], args[2])
	}),
}.Build()

var unsetCmd = LeafCommand{
	Use:   "unset TRACKER DATE",
	Short: "Clear the value recorded for a date",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
		return runUnset(cmd, e, args[0], args[1])
	}),
}.Build()

func runSet(cmd *cobra.Command, e *env, identifier, dateArg, label string) error {
	t, err := resolveTracker(e.repo.Trackers(), identifier)
	if err != nil {
		return err
	}
	date, year, err := resolveDate(e, dateArg)
	if err != nil {
		return err
	}
	o, ok := t.OptionByLabel(label)
	if !ok {
		return errors.Errorf("%w: %q is not one of %v", tracker.ErrUnknownOption, label, t.Labels())
	}

	if err := e.repo.SetTrackerValue(t.ID, year, date, o.Label); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", Primary(t.Name), date, Chip(o))
	return nil
}

func runUnset(cmd *cobra.Command, e *env, identifier, dateArg string) error {
	t, err := resolveTracker(e.repo.Trackers(), identifier)
	if err != nil {
		return err
	}
	date, year, err := resolveDate(e, dateArg)
	if err != nil {
		return err
	}
	if _, ok := t.Value(date); !ok {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Silent(fmt.Sprintf("%s has nothing recorded for %s", t.Name, date)))
		return nil
	}

	if err := e.repo.UnsetTrackerValue(t.ID, year, date); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", Primary(t.Name), date, Silent("cleared"))
	return nil
}
