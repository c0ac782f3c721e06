package tracker

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/palette"
)

// DraftOption is an option inside an edit session. Deleted options stay in
// the list until the draft is committed so the deletion can be undone.
type DraftOption struct {
	Option
	Deleted bool
}

// Draft is a staged edit of a tracker. Nothing in it touches the committed
// tracker; Repository.ApplyEdit turns it into mutations.
type Draft struct {
	Original             Tracker
	Name                 string
	Category             string
	ExcludeFromDashboard bool
	Options              []DraftOption
}

func NewDraft(t Tracker) *Draft {
	d := &Draft{
		Original:             t.Clone(),
		Name:                 t.Name,
		Category:             t.Category,
		ExcludeFromDashboard: t.ExcludeFromDashboard,
		Options:              make([]DraftOption, len(t.Options)),
	}
	for i, o := range t.Options {
		d.Options[i] = DraftOption{Option: o}
	}
	return d
}

func (d *Draft) index(label string) int {
	for i, o := range d.Options {
		if o.Label == label {
			return i
		}
	}
	return -1
}

// AddOption appends opt. Adding the label of a soft-deleted option
// restores that option with opt's colors instead.
func (d *Draft) AddOption(opt Option) error {
	opt.Label = strings.TrimSpace(opt.Label)
	if opt.Label == "" {
		return errors.Errorf("%w: option label is required", ErrInvalidTracker)
	}
	if opt.TextColor == "" {
		opt.TextColor = palette.ContrastColor(opt.Color)
	}
	if i := d.index(opt.Label); i >= 0 {
		if !d.Options[i].Deleted {
			return errors.Errorf("%w: %q", ErrDuplicateLabel, opt.Label)
		}
		d.Options[i] = DraftOption{Option: opt}
		return nil
	}
	d.Options = append(d.Options, DraftOption{Option: opt})
	return nil
}

func (d *Draft) ToggleDeleted(i int) {
	if i >= 0 && i < len(d.Options) {
		d.Options[i].Deleted = !d.Options[i].Deleted
	}
}

// Recolor sets a new color and derives the text color from it.
func (d *Draft) Recolor(i int, color string) {
	if i < 0 || i >= len(d.Options) || d.Options[i].Deleted {
		return
	}
	d.Options[i].Color = color
	d.Options[i].TextColor = palette.ContrastColor(color)
}

func (d *Draft) ToggleExclusion(i int) {
	if i >= 0 && i < len(d.Options) {
		d.Options[i].ExcludeFromSummary = !d.Options[i].ExcludeFromSummary
	}
}

// Swap exchanges the options labelled a and b.
func (d *Draft) Swap(a, b string) {
	i, j := d.index(a), d.index(b)
	if i < 0 || j < 0 || i == j {
		return
	}
	d.Options[i], d.Options[j] = d.Options[j], d.Options[i]
}

// Move shifts option i by delta places and returns where it ended up.
func (d *Draft) Move(i, delta int) int {
	j := i + delta
	if i < 0 || i >= len(d.Options) || j < 0 || j >= len(d.Options) {
		return i
	}
	d.Swap(d.Options[i].Label, d.Options[j].Label)
	return j
}

// LiveOptions is the option list the draft would commit.
func (d *Draft) LiveOptions() []Option {
	out := make([]Option, 0, len(d.Options))
	for _, o := range d.Options {
		if !o.Deleted {
			out = append(out, o.Option)
		}
	}
	return out
}

type OptionChange struct {
	Old Option
	New Option
}

type Reorder struct {
	Old []Option
	New []Option
}

// Changes is the difference between a draft and its original tracker.
// Pointer fields are nil when unchanged.
type Changes struct {
	Name                 *string
	Category             *string
	ExcludeFromDashboard *bool
	AddedOptions         []Option
	RemovedOptions       []Option
	ChangedOptions       []OptionChange
	ReorderedOptions     *Reorder
	UpdatedExclusions    []Option

	// DatesAffected lists, per removed label that has any, the dates that
	// will lose their value on commit.
	DatesAffected map[string][]string
}

func (d *Draft) Diff() Changes {
	orig := d.Original
	c := Changes{DatesAffected: map[string][]string{}}

	if d.Name != orig.Name {
		name := d.Name
		c.Name = &name
	}
	if d.Category != orig.Category {
		cat := d.Category
		c.Category = &cat
	}
	if d.ExcludeFromDashboard != orig.ExcludeFromDashboard {
		v := d.ExcludeFromDashboard
		c.ExcludeFromDashboard = &v
	}

	live := d.LiveOptions()
	liveLabels := make(map[string]bool, len(live))
	for _, o := range live {
		liveLabels[o.Label] = true
	}

	for _, o := range d.Options {
		if o.Deleted {
			c.RemovedOptions = append(c.RemovedOptions, o.Option)
			continue
		}
		old, ok := orig.OptionByLabel(o.Label)
		if !ok {
			c.AddedOptions = append(c.AddedOptions, o.Option)
			continue
		}
		if old.Color != o.Color || old.TextColor != o.TextColor {
			c.ChangedOptions = append(c.ChangedOptions, OptionChange{Old: old, New: o.Option})
		}
		if old.ExcludeFromSummary != o.ExcludeFromSummary {
			c.UpdatedExclusions = append(c.UpdatedExclusions, o.Option)
		}
	}

	var before []Option
	for _, o := range orig.Options {
		if liveLabels[o.Label] {
			before = append(before, o)
		}
	}
	var after []Option
	for _, o := range live {
		if _, ok := orig.OptionByLabel(o.Label); ok {
			after = append(after, o)
		}
	}
	if !sameLabelOrder(before, after) {
		c.ReorderedOptions = &Reorder{Old: before, New: live}
	}

	for _, o := range c.RemovedOptions {
		if dates := datesWithLabel(orig, o.Label); len(dates) > 0 {
			c.DatesAffected[o.Label] = dates
		}
	}
	return c
}

func sameLabelOrder(a, b []Option) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			return false
		}
	}
	return true
}

func datesWithLabel(t Tracker, label string) []string {
	var out []string
	for _, yd := range t.Data {
		for date, v := range yd {
			if v == label {
				out = append(out, date)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Empty reports whether committing would change nothing.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Category == nil && c.ExcludeFromDashboard == nil &&
		len(c.AddedOptions) == 0 && len(c.RemovedOptions) == 0 &&
		len(c.ChangedOptions) == 0 && c.ReorderedOptions == nil &&
		len(c.UpdatedExclusions) == 0
}

func (c Changes) AffectedDateCount() int {
	n := 0
	for _, dates := range c.DatesAffected {
		n += len(dates)
	}
	return n
}

// AffectedLabels returns the keys of DatesAffected, sorted.
func (c Changes) AffectedLabels() []string {
	out := make([]string, 0, len(c.DatesAffected))
	for l := range c.DatesAffected {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

type DateGroup struct {
	Year  string
	Dates []string
}

// GroupDatesByYear buckets ISO dates by their year prefix, oldest first.
func GroupDatesByYear(dates []string) []DateGroup {
	byYear := make(map[string][]string)
	for _, d := range dates {
		year, _, _ := strings.Cut(d, "-")
		byYear[year] = append(byYear[year], d)
	}
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)

	out := make([]DateGroup, len(years))
	for i, y := range years {
		ds := byYear[y]
		sort.Strings(ds)
		out[i] = DateGroup{Year: y, Dates: ds}
	}
	return out
}

// SwapOptions returns a copy of opts with the options labelled a and b
// exchanged. Unknown labels leave the order as is.
func SwapOptions(opts []Option, a, b string) []Option {
	out := cloneOptions(opts)
	i, j := -1, -1
	for k, o := range out {
		switch o.Label {
		case a:
			i = k
		case b:
			j = k
		}
	}
	if i >= 0 && j >= 0 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// MoveOption swaps label with its neighbour delta places away.
func MoveOption(opts []Option, label string, delta int) []Option {
	for i, o := range opts {
		if o.Label != label {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(opts) {
			return cloneOptions(opts)
		}
		return SwapOptions(opts, label, opts[j].Label)
	}
	return cloneOptions(opts)
}
