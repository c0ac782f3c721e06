package tracker

// Merge folds an imported batch into existing and returns the new
// collection. Neither input is modified.
//
// An imported tracker whose id is unknown is appended as is. One whose id
// matches is merged into the existing tracker: options are unioned by
// label with the existing ones first (an existing option wins over an
// imported one with the same label), imported dates overwrite existing
// dates year by year, a blank category is filled in from the import, and
// id, name, currentDate and excludeFromDashboard are kept.
func Merge(existing, imported []Tracker) []Tracker {
	out := cloneAll(existing)
	for _, in := range imported {
		i := indexByID(out, in.ID)
		if i < 0 {
			out = append(out, in.Clone())
			continue
		}
		out[i] = mergeOne(out[i], in)
	}
	return out
}

func mergeOne(e, in Tracker) Tracker {
	m := e.Clone()

	have := make(map[string]bool, len(m.Options))
	for _, o := range m.Options {
		have[o.Label] = true
	}
	for _, o := range in.Options {
		if !have[o.Label] {
			have[o.Label] = true
			m.Options = append(m.Options, o)
		}
	}

	for year, yd := range in.Data {
		target := m.Data[year]
		if target == nil {
			target = YearData{}
			m.Data[year] = target
		}
		for date, label := range yd {
			target[date] = label
		}
	}

	if m.Category == "" {
		m.Category = in.Category
	}
	return m
}

// PlanEntry describes what importing one tracker would do.
type PlanEntry struct {
	ID               string
	Name             string
	New              bool
	OptionsAdded     []string
	DatesAdded       int
	DatesOverwritten int
	DatesUnchanged   int
	Years            []int
}

// PlanImport previews Merge(existing, imported) tracker by tracker without
// changing anything.
func PlanImport(existing, imported []Tracker) []PlanEntry {
	work := cloneAll(existing)
	plan := make([]PlanEntry, 0, len(imported))

	for _, in := range imported {
		entry := PlanEntry{ID: in.ID, Name: in.Name, Years: in.Years()}
		i := indexByID(work, in.ID)
		if i < 0 {
			entry.New = true
			entry.OptionsAdded = in.Labels()
			entry.DatesAdded = in.EntryCount()
			work = append(work, in.Clone())
			plan = append(plan, entry)
			continue
		}

		e := work[i]
		entry.Name = e.Name
		seen := make(map[string]bool)
		for _, o := range e.Options {
			seen[o.Label] = true
		}
		for _, o := range in.Options {
			if !seen[o.Label] {
				seen[o.Label] = true
				entry.OptionsAdded = append(entry.OptionsAdded, o.Label)
			}
		}
		for year, yd := range in.Data {
			for date, label := range yd {
				old, ok := e.Data[year][date]
				switch {
				case !ok:
					entry.DatesAdded++
				case old != label:
					entry.DatesOverwritten++
				default:
					entry.DatesUnchanged++
				}
			}
		}
		work[i] = mergeOne(e, in)
		plan = append(plan, entry)
	}
	return plan
}

// ChangesAnything reports whether applying the plan would modify the
// collection at all.
func ChangesAnything(plan []PlanEntry) bool {
	for _, p := range plan {
		if p.New || len(p.OptionsAdded) > 0 || p.DatesAdded > 0 || p.DatesOverwritten > 0 {
			return true
		}
	}
	return false
}
