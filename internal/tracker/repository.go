package tracker

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/store"
)

// StorageKey is the single key the whole collection is persisted under.
const StorageKey = "trackers"

// Repository owns the tracker collection. Every mutation replaces the
// whole collection with one store write. Mutations made before Load has
// finished are dropped with a warning.
type Repository struct {
	value *store.Value[[]Tracker]
	log   zerolog.Logger
}

func NewRepository(backend store.Backend, log zerolog.Logger) *Repository {
	return &Repository{
		value: store.NewValue[[]Tracker](backend, StorageKey, []Tracker{}, log),
		log:   log.With().Str("component", "repository").Logger(),
	}
}

func (r *Repository) Load(ctx context.Context) error {
	return r.value.Load(ctx)
}

func (r *Repository) Loaded() bool {
	return r.value.Loaded()
}

// Subscribe calls fn with a snapshot after every change.
func (r *Repository) Subscribe(fn func([]Tracker)) func() {
	return r.value.Subscribe(func(ts []Tracker) { fn(cloneAll(ts)) })
}

// Trackers returns a snapshot of the collection.
func (r *Repository) Trackers() []Tracker {
	return cloneAll(r.value.Get())
}

func (r *Repository) Get(id string) (Tracker, error) {
	ts := r.value.Get()
	i := indexByID(ts, id)
	if i < 0 {
		return Tracker{}, errors.Errorf("%w: %s", ErrNotFound, id)
	}
	return ts[i].Clone(), nil
}

func (r *Repository) mutate(op string, fn func([]Tracker) []Tracker) error {
	applied, err := r.value.TryUpdate(fn)
	if !applied {
		r.log.Warn().Str("op", op).Msg("store not loaded yet, ignoring mutation")
		return nil
	}
	if err != nil {
		return errors.Errorf("%s: %w", op, err)
	}
	return nil
}

// mapTracker applies fn to the tracker with id and leaves the rest alone.
func mapTracker(id string, fn func(t Tracker) Tracker) func([]Tracker) []Tracker {
	return func(cur []Tracker) []Tracker {
		out := make([]Tracker, len(cur))
		for i, t := range cur {
			if t.ID == id {
				out[i] = fn(t.Clone())
			} else {
				out[i] = t
			}
		}
		return out
	}
}

// AddTracker appends t. Callers are expected to hand in a fresh id.
func (r *Repository) AddTracker(t Tracker) error {
	added := t.Clone()
	return r.mutate("add tracker", func(cur []Tracker) []Tracker {
		out := make([]Tracker, 0, len(cur)+1)
		out = append(out, cur...)
		return append(out, added)
	})
}

// UpdateTracker replaces the tracker with the same id.
func (r *Repository) UpdateTracker(updated Tracker) error {
	u := updated.Clone()
	return r.mutate("update tracker", mapTracker(u.ID, func(Tracker) Tracker { return u }))
}

func (r *Repository) DeleteTracker(id string) error {
	return r.mutate("delete tracker", func(cur []Tracker) []Tracker {
		out := make([]Tracker, 0, len(cur))
		for _, t := range cur {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
}

// SetTrackerValue assigns label to date, creating the year bucket if
// needed and overwriting any previous value.
func (r *Repository) SetTrackerValue(trackerID string, year int, date, label string) error {
	return r.mutate("set value", mapTracker(trackerID, func(t Tracker) Tracker {
		if t.Data == nil {
			t.Data = Data{}
		}
		yd := t.Data[year]
		if yd == nil {
			yd = YearData{}
			t.Data[year] = yd
		}
		yd[date] = label
		return t
	}))
}

// UnsetTrackerValue removes date from the year bucket entirely.
func (r *Repository) UnsetTrackerValue(trackerID string, year int, date string) error {
	return r.mutate("unset value", mapTracker(trackerID, func(t Tracker) Tracker {
		delete(t.Data[year], date)
		return t
	}))
}

// SwitchYear makes year the displayed year of the tracker with t's id and
// makes sure it has a bucket. Other years are kept.
func (r *Repository) SwitchYear(t Tracker, year int) error {
	return r.mutate("switch year", mapTracker(t.ID, func(cur Tracker) Tracker {
		cur.CurrentDate = year
		if cur.Data == nil {
			cur.Data = Data{}
		}
		if _, ok := cur.Data[year]; !ok {
			cur.Data[year] = YearData{}
		}
		return cur
	}))
}

// UpdateTrackerOptions replaces the option list. Dates holding the label
// of an option that is in the old list but not the new one are deleted
// from every year.
func (r *Repository) UpdateTrackerOptions(trackerID string, options []Option) error {
	next := cloneOptions(options)
	return r.mutate("update options", mapTracker(trackerID, func(t Tracker) Tracker {
		removed := removedLabels(t.Options, next)
		for _, yd := range t.Data {
			for date, label := range yd {
				if removed[label] {
					delete(yd, date)
				}
			}
		}
		t.Options = next
		return t
	}))
}

func removedLabels(old, next []Option) map[string]bool {
	kept := make(map[string]bool, len(next))
	for _, o := range next {
		kept[o.Label] = true
	}
	removed := make(map[string]bool)
	for _, o := range old {
		if !kept[o.Label] {
			removed[o.Label] = true
		}
	}
	return removed
}

// ImportTrackers merges a parsed import batch into the collection.
func (r *Repository) ImportTrackers(imported []Tracker) error {
	batch := cloneAll(imported)
	err := r.mutate("import trackers", func(cur []Tracker) []Tracker {
		return Merge(cur, batch)
	})
	if err == nil && r.Loaded() {
		r.log.Info().Int("trackers", len(batch)).Msg("import merged")
	}
	return err
}

// ApplyEdit commits a draft: first the metadata, then the option list so
// that dates of removed options are cascaded away.
func (r *Repository) ApplyEdit(d *Draft) error {
	live := d.LiveOptions()
	if len(live) == 0 {
		return errors.Errorf("%w: at least one option is required", ErrInvalidTracker)
	}
	if err := ValidateOptions(live); err != nil {
		return err
	}
	if !r.Loaded() {
		r.log.Warn().Str("op", "apply edit").Msg("store not loaded yet, ignoring mutation")
		return nil
	}
	current, err := r.Get(d.Original.ID)
	if err != nil {
		return err
	}
	current.Name = d.Name
	current.Category = d.Category
	current.ExcludeFromDashboard = d.ExcludeFromDashboard
	if err := r.UpdateTracker(current); err != nil {
		return err
	}
	return r.UpdateTrackerOptions(current.ID, live)
}

// GetCategories returns the distinct non-empty categories in first-seen
// order.
func (r *Repository) GetCategories() []string {
	return Categories(r.value.Get())
}

func Categories(trackers []Tracker) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range trackers {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}
