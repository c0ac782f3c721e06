// Package stats computes completion rates and most-common entries over
// tracker data for a time period.
package stats

import (
	"sort"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

var ErrInvalidPeriod = errors.Base("invalid period")

type Period string

const (
	PeriodAll   Period = "all"
	PeriodYear  Period = "year"
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
	PeriodToday Period = "today"
)

// Periods lists every period, widest first.
var Periods = []Period{PeriodAll, PeriodYear, PeriodMonth, PeriodWeek, PeriodToday}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", errors.Errorf("%w: %q", ErrInvalidPeriod, s)
}

func (p Period) Label() string {
	switch p {
	case PeriodAll:
		return "All Time"
	case PeriodYear:
		return "This Year"
	case PeriodMonth:
		return "This Month"
	case PeriodWeek:
		return "Previous 7 days"
	case PeriodToday:
		return "Today"
	}
	return string(p)
}

// Flatten merges every year bucket into one date -> label map.
func Flatten(t tracker.Tracker) map[string]string {
	out := make(map[string]string, t.EntryCount())
	for _, yd := range t.Data {
		for date, label := range yd {
			out[date] = label
		}
	}
	return out
}

// day truncates now to midnight in its own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FilterByPeriod keeps the entries of flat that fall in period as seen
// from now. Keys that are not dates only survive PeriodAll.
func FilterByPeriod(flat map[string]string, period Period, now time.Time) map[string]string {
	out := make(map[string]string)
	if period == PeriodAll {
		for k, v := range flat {
			out[k] = v
		}
		return out
	}

	today := day(now)
	weekStart := today.AddDate(0, 0, -6)
	for k, v := range flat {
		d, err := time.ParseInLocation(tracker.DateLayout, k, now.Location())
		if err != nil {
			continue
		}
		var keep bool
		switch period {
		case PeriodYear:
			keep = d.Year() == today.Year()
		case PeriodMonth:
			keep = d.Year() == today.Year() && d.Month() == today.Month()
		case PeriodWeek:
			keep = !d.Before(weekStart) && !d.After(today)
		case PeriodToday:
			keep = d.Equal(today)
		}
		if keep {
			out[k] = v
		}
	}
	return out
}

// PossibleEntries is the completion-rate denominator for period. For
// PeriodAll it counts the days from the earliest entry through today and
// never drops below 1.
func PossibleEntries(flat map[string]string, period Period, now time.Time) int {
	switch period {
	case PeriodToday:
		return 1
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 28
	case PeriodYear:
		return 365
	}

	var earliest string
	for k := range flat {
		if _, err := time.Parse(tracker.DateLayout, k); err != nil {
			continue
		}
		if earliest == "" || k < earliest {
			earliest = k
		}
	}
	if earliest == "" {
		return 1
	}
	start, _ := time.Parse(tracker.DateLayout, earliest)
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1
	return max(days, 1)
}

// countThrough counts the entries not dated after now. The all-time
// denominator ends today, so later entries stay out of the numerator too.
func countThrough(filtered map[string]string, now time.Time) int {
	today := day(now)
	n := 0
	for k := range filtered {
		d, err := time.ParseInLocation(tracker.DateLayout, k, now.Location())
		if err == nil && d.After(today) {
			continue
		}
		n++
	}
	return n
}

// CompletionRate returns count/possible as a percentage.
func CompletionRate(count, possible int) float64 {
	if possible < 1 {
		possible = 1
	}
	return float64(count) / float64(possible) * 100
}

// MostCommon returns the label that occurs most often in filtered,
// ignoring options excluded from the summary and labels that no longer
// belong to an option. On a tie the label whose last entry is latest wins.
func MostCommon(t tracker.Tracker, filtered map[string]string) (string, bool) {
	dates := make([]string, 0, len(filtered))
	for d := range filtered {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	counts := make(map[string]int)
	last := make(map[string]int)
	for i, d := range dates {
		label := filtered[d]
		o, ok := t.OptionByLabel(label)
		if !ok || o.ExcludeFromSummary {
			continue
		}
		counts[label]++
		last[label] = i
	}

	best, found := "", false
	for label, n := range counts {
		if !found || n > counts[best] || (n == counts[best] && last[label] > last[best]) {
			best, found = label, true
		}
	}
	return best, found
}

type OptionCount struct {
	Option tracker.Option
	Count  int
}

// OptionCounts counts filtered per current option, in option order.
// Excluded options are left out.
func OptionCounts(t tracker.Tracker, filtered map[string]string) []OptionCount {
	counts := make(map[string]int)
	for _, label := range filtered {
		counts[label]++
	}
	out := make([]OptionCount, 0, len(t.Options))
	for _, o := range t.Options {
		if o.ExcludeFromSummary {
			continue
		}
		out = append(out, OptionCount{Option: o, Count: counts[o.Label]})
	}
	return out
}

// Summary is one tracker's statistics for a period.
type Summary struct {
	TrackerID  string
	Name       string
	Category   string
	Period     Period
	Entries    int
	Possible   int
	Rate       float64
	MostCommon string
	HasMost    bool
	Counts     []OptionCount
}

func Summarize(t tracker.Tracker, period Period, now time.Time) Summary {
	flat := Flatten(t)
	filtered := FilterByPeriod(flat, period, now)
	possible := PossibleEntries(flat, period, now)
	counted := len(filtered)
	if period == PeriodAll {
		counted = countThrough(filtered, now)
	}
	most, ok := MostCommon(t, filtered)
	return Summary{
		TrackerID:  t.ID,
		Name:       t.Name,
		Category:   t.Category,
		Period:     period,
		Entries:    len(filtered),
		Possible:   possible,
		Rate:       CompletionRate(counted, possible),
		MostCommon: most,
		HasMost:    ok,
		Counts:     OptionCounts(t, filtered),
	}
}

// Overview is the dashboard: a summary per included tracker and the mean
// completion rate over them.
type Overview struct {
	Period   Period
	Trackers []Summary
	Overall  float64
}

func Dashboard(trackers []tracker.Tracker, period Period, now time.Time) Overview {
	ov := Overview{Period: period}
	var total float64
	for _, t := range trackers {
		if t.ExcludeFromDashboard {
			continue
		}
		s := Summarize(t, period, now)
		ov.Trackers = append(ov.Trackers, s)
		total += s.Rate
	}
	if len(ov.Trackers) > 0 {
		ov.Overall = total / float64(len(ov.Trackers))
	}
	return ov
}
