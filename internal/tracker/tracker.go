// Package tracker holds the tracker data model and every operation that
// changes it: the repository mutations, import merging and option editing.
package tracker

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// DateLayout is the layout of the date keys inside a year bucket.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTracker = errors.Base("invalid tracker")
	ErrNotFound       = errors.Base("tracker not found")
	ErrUnknownOption  = errors.Base("unknown option")
	ErrInvalidDate    = errors.Base("invalid date")
	ErrDuplicateLabel = errors.Base("duplicate option label")
)

// Option is one of a tracker's mutually exclusive choices. Label is both
// the display text and the value stored against a date.
type Option struct {
	Label              string `json:"label"`
	Color              string `json:"color"`
	TextColor          string `json:"textColor"`
	ExcludeFromSummary bool   `json:"excludeFromSummary"`
}

// NeutralOption is how a date whose label no longer matches any option is
// shown.
var NeutralOption = Option{Color: "#414868", TextColor: "#C0CAF5"}

// YearData maps a date to the label assigned to it. An absent date is
// unset.
type YearData map[string]string

// Data holds one YearData per year.
type Data map[int]YearData

type Tracker struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Category             string   `json:"category"`
	Options              []Option `json:"options"`
	Data                 Data     `json:"data"`
	CurrentDate          int      `json:"currentDate"`
	ExcludeFromDashboard bool     `json:"excludeFromDashboard"`
}

// New builds a tracker with a fresh id and an empty bucket for now's year.
func New(name, category string, options []Option, now time.Time) (Tracker, error) {
	if strings.TrimSpace(name) == "" {
		return Tracker{}, errors.Errorf("%w: name is required", ErrInvalidTracker)
	}
	if len(options) == 0 {
		return Tracker{}, errors.Errorf("%w: at least one option is required", ErrInvalidTracker)
	}
	if err := ValidateOptions(options); err != nil {
		return Tracker{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Tracker{}, errors.Errorf("generate tracker id: %w", err)
	}

	year := now.Year()
	return Tracker{
		ID:          id.String(),
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(category),
		Options:     cloneOptions(options),
		Data:        Data{year: YearData{}},
		CurrentDate: year,
	}, nil
}

// ValidateOptions checks that every label is non-blank and unique.
func ValidateOptions(options []Option) error {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if strings.TrimSpace(o.Label) == "" {
			return errors.Errorf("%w: option label is required", ErrInvalidTracker)
		}
		if seen[o.Label] {
			return errors.Errorf("%w: %q", ErrDuplicateLabel, o.Label)
		}
		seen[o.Label] = true
	}
	return nil
}

// Clone returns a deep copy.
func (t Tracker) Clone() Tracker {
	c := t
	c.Options = cloneOptions(t.Options)
	c.Data = t.Data.Clone()
	return c
}

// OptionByLabel finds the option for label. Dangling labels from deleted
// options report false.
func (t Tracker) OptionByLabel(label string) (Option, bool) {
	for _, o := range t.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// Appearance returns the option to render label with, falling back to
// NeutralOption.
func (t Tracker) Appearance(label string) Option {
	if o, ok := t.OptionByLabel(label); ok {
		return o
	}
	n := NeutralOption
	n.Label = label
	return n
}

// Labels returns the option labels in order.
func (t Tracker) Labels() []string {
	out := make([]string, len(t.Options))
	for i, o := range t.Options {
		out[i] = o.Label
	}
	return out
}

// Value returns the label assigned to date, if any.
func (t Tracker) Value(date string) (string, bool) {
	year, err := YearOf(date)
	if err != nil {
		return "", false
	}
	v, ok := t.Data[year][date]
	return v, ok
}

// EntryCount counts assigned dates over all years.
func (t Tracker) EntryCount() int {
	n := 0
	for _, yd := range t.Data {
		n += len(yd)
	}
	return n
}

// Years returns the years that have a bucket, ascending.
func (t Tracker) Years() []int {
	years := make([]int, 0, len(t.Data))
	for y := range t.Data {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Clone returns a deep copy. A nil Data clones to an empty one.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for y, yd := range d {
		out[y] = yd.Clone()
	}
	return out
}

func (yd YearData) Clone() YearData {
	out := make(YearData, len(yd))
	for k, v := range yd {
		out[k] = v
	}
	return out
}

// YearOf returns the year encoded in an ISO date key.
func YearOf(date string) (int, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, errors.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return d.Year(), nil
}

func cloneOptions(opts []Option) []Option {
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}

func cloneAll(trackers []Tracker) []Tracker {
	out := make([]Tracker, len(trackers))
	for i, t := range trackers {
		out[i] = t.Clone()
	}
	return out
}

func indexByID(trackers []Tracker, id string) int {
	for i := range trackers {
		if trackers[i].ID == id {
			return i
		}
	}
	return -1
}
