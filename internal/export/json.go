package export

import (
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

// WriteJSON writes trackers as one indented JSON array.
func WriteJSON(w io.Writer, trackers []tracker.Tracker) error {
	if trackers == nil {
		trackers = []tracker.Tracker{}
	}
	data, err := json.MarshalIndent(trackers, "", "  ")
	if err != nil {
		return errors.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Errorf("write json: %w", err)
	}
	return nil
}
