package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/tracker"
)

var statsCmd = LeafCommand{
	Use:   "stats",
	Short: "Show completion statistics",
	Args:  cobra.NoArgs,
	StrFlags: []StringFlag{
		{Name: "period", Shorthand: "p", Usage: "all, year, month, week or today (default from config)"},
		{Name: "tracker", Shorthand: "t", Usage: "show one tracker in detail"},
	},
	RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
		period, _ := cmd.Flags().GetString("period")
		if period == "" {
			period = e.cfg.DefaultPeriod
		}
		trackerArg, _ := cmd.Flags().GetString("tracker")
		return runStats(cmd, e, period, trackerArg)
	}),
}.Build()

func runStats(cmd *cobra.Command, e *env, periodArg, trackerArg string) error {
	period, err := stats.ParsePeriod(periodArg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	now := e.clock.Now()

	if trackerArg != "" {
		t, err := resolveTracker(e.repo.Trackers(), trackerArg)
		if err != nil {
			return err
		}
		printSummary(out, t, stats.Summarize(t, period, now))
		return nil
	}

	ov := stats.Dashboard(e.repo.Trackers(), period, now)
	_, _ = fmt.Fprintln(out, Primary(period.Label()))
	if len(ov.Trackers) == 0 {
		_, _ = fmt.Fprintln(out, Silent("no trackers on the dashboard"))
		return nil
	}
	for _, s := range ov.Trackers {
		most := Silent("-")
		if s.HasMost {
			most = s.MostCommon
		}
		_, _ = fmt.Fprintf(out, "  %-24s %7s %9s  %s\n",
			s.Name, fmt.Sprintf("%.1f%%", s.Rate), fmt.Sprintf("%d/%d", s.Entries, s.Possible), most)
	}
	_, _ = fmt.Fprintf(out, "  %-24s %7s\n", "Overall", fmt.Sprintf("%.1f%%", ov.Overall))
	return nil
}

func printSummary(out io.Writer, t tracker.Tracker, s stats.Summary) {
	_, _ = fmt.Fprintf(out, "%s %s\n", Primary(t.Name), Silent(s.Period.Label()))
	_, _ = fmt.Fprintf(out, "  completion   %.1f%%\n", s.Rate)
	_, _ = fmt.Fprintf(out, "  entries      %d of %d\n", s.Entries, s.Possible)
	if s.HasMost {
		_, _ = fmt.Fprintf(out, "  most common  %s\n", Chip(t.Appearance(s.MostCommon)))
	} else {
		_, _ = fmt.Fprintf(out, "  most common  %s\n", Silent("-"))
	}
	for _, c := range s.Counts {
		_, _ = fmt.Fprintf(out, "    %-20s %d\n", c.Option.Label, c.Count)
	}
}
