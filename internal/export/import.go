package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/palette"
	"github.com/sadopc/habitr/internal/tracker"
)

// ErrInvalidImport is returned for any file ParseImport can not turn into
// trackers. Its message is meant for the user.
var ErrInvalidImport = errors.Base("file is not valid JSON")

const maxImportSize = 32 << 20

var zipMagic = []byte("PK\x03\x04")

// importTracker mirrors tracker.Tracker with every field optional.
type importTracker struct {
	ID                   json.RawMessage   `json:"id"`
	Name                 string            `json:"name"`
	Category             string            `json:"category"`
	Options              []tracker.Option  `json:"options"`
	Data                 map[string]yearIn `json:"data"`
	CurrentDate          int               `json:"currentDate"`
	ExcludeFromDashboard bool              `json:"excludeFromDashboard"`
}

type yearIn map[string]string

// ParseImport reads an export file: a JSON array of trackers, a single
// tracker object, or a zip of single-tracker files. Missing optional
// fields are defaulted; now supplies currentDate when there is no data.
func ParseImport(r io.Reader, now time.Time) ([]tracker.Tracker, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return nil, errors.Errorf("read import: %w", err)
	}

	if bytes.HasPrefix(raw, zipMagic) {
		return parseArchive(raw, now)
	}
	return parseDocument(raw, now)
}

func parseArchive(raw []byte, now time.Time) ([]tracker.Tracker, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, invalid(err)
	}

	var out []tracker.Tracker
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, invalid(err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxImportSize))
		rc.Close()
		if err != nil {
			return nil, invalid(err)
		}
		ts, err := parseDocument(data, now)
		if err != nil {
			return nil, errors.Errorf("%s: %w", f.Name, err)
		}
		out = append(out, ts...)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("%w: archive holds no trackers", ErrInvalidImport)
	}
	return out, nil
}

func parseDocument(raw []byte, now time.Time) ([]tracker.Tracker, error) {
	trimmed := bytes.TrimSpace(raw)
	var in []importTracker
	switch {
	case len(trimmed) == 0:
		return nil, errors.Errorf("%w: empty file", ErrInvalidImport)
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return nil, invalid(err)
		}
	case trimmed[0] == '{':
		var one importTracker
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, invalid(err)
		}
		in = []importTracker{one}
	default:
		return nil, errors.Errorf("%w: expected an array or object", ErrInvalidImport)
	}

	out := make([]tracker.Tracker, 0, len(in))
	for i, it := range in {
		t, err := it.normalize(now)
		if err != nil {
			return nil, errors.Errorf("%w: tracker %d: %s", ErrInvalidImport, i+1, err.Error())
		}
		out = append(out, t)
	}
	return out, nil
}

func (it importTracker) normalize(now time.Time) (tracker.Tracker, error) {
	id, err := parseID(it.ID)
	if err != nil {
		return tracker.Tracker{}, err
	}

	t := tracker.Tracker{
		ID:                   id,
		Name:                 it.Name,
		Category:             it.Category,
		Options:              make([]tracker.Option, 0, len(it.Options)),
		Data:                 tracker.Data{},
		CurrentDate:          it.CurrentDate,
		ExcludeFromDashboard: it.ExcludeFromDashboard,
	}
	for _, o := range it.Options {
		if o.TextColor == "" {
			o.TextColor = palette.ContrastColor(o.Color)
		}
		t.Options = append(t.Options, o)
	}

	for key, yd := range it.Data {
		year, err := strconv.Atoi(key)
		if err != nil {
			return tracker.Tracker{}, errors.Errorf("year %q is not a number", key)
		}
		bucket := make(tracker.YearData, len(yd))
		for date, label := range yd {
			bucket[date] = label
		}
		t.Data[year] = bucket
	}

	if t.CurrentDate == 0 {
		t.CurrentDate = now.Year()
		if years := t.Years(); len(years) > 0 {
			t.CurrentDate = years[len(years)-1]
		}
	}
	return t, nil
}

// parseID accepts string ids and the numeric ids older exports used.
func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", errors.New("missing id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("id must be a string or number")
	}
	return n.String(), nil
}

func invalid(err error) error {
	return errors.Errorf("%w: %s", ErrInvalidImport, err.Error())
}
