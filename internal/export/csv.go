package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

var csvHeader = []string{"Tracker", "Category", "Date", "Label", "Excluded"}

// WriteCSV writes one row per recorded date, trackers in collection order
// and dates ascending.
func WriteCSV(w io.Writer, trackers []tracker.Tracker) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Errorf("write csv header: %w", err)
	}

	for _, t := range trackers {
		flat := make(map[string]string, t.EntryCount())
		for _, yd := range t.Data {
			for date, label := range yd {
				flat[date] = label
			}
		}
		dates := make([]string, 0, len(flat))
		for d := range flat {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		for _, d := range dates {
			label := flat[d]
			opt, _ := t.OptionByLabel(label)
			row := []string{t.Name, t.Category, d, label, strconv.FormatBool(opt.ExcludeFromSummary)}
			if err := cw.Write(row); err != nil {
				return errors.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
