package cli

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

var ErrAmbiguousTracker = errors.Base("more than one tracker matches")

// resolveTracker finds a tracker by its id, by a prefix of its id or by
// its exact name. A reference matching more than one tracker is an error.
func resolveTracker(ts []tracker.Tracker, identifier string) (tracker.Tracker, error) {
	identifier = strings.TrimSpace(identifier)
	for _, t := range ts {
		if t.ID == identifier {
			return t, nil
		}
	}
	var matches []tracker.Tracker
	if identifier != "" {
		for _, t := range ts {
			if strings.HasPrefix(t.ID, identifier) || t.Name == identifier {
				matches = append(matches, t)
			}
		}
	}
	switch len(matches) {
	case 0:
		return tracker.Tracker{}, errors.Errorf("%w: %s", tracker.ErrNotFound, identifier)
	case 1:
		return matches[0], nil
	}
	return tracker.Tracker{}, errors.Errorf("%w: %q, use a longer id", ErrAmbiguousTracker, identifier)
}

// resolveDate accepts an ISO date or "today".
func resolveDate(e *env, s string) (string, int, error) {
	if strings.EqualFold(s, "today") {
		s = e.clock.Now().Format(tracker.DateLayout)
	}
	year, err := tracker.YearOf(s)
	if err != nil {
		return "", 0, err
	}
	return s, year, nil
}
