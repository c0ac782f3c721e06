// Package export reads and writes the tracker file formats: a JSON array,
// a zip of per-tracker JSON files, and a flat CSV.
package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatZip  Format = "zip"
	FormatCSV  Format = "csv"
)

var Formats = []Format{FormatJSON, FormatZip, FormatCSV}

var ErrUnknownFormat = errors.Base("unknown export format")

const filePerms = 0o644

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName is the default export file name for format on day now.
func FileName(format Format, now time.Time) string {
	return "habitr-" + now.Format(tracker.DateLayout) + "." + string(format)
}

// Write encodes trackers in format to w.
func Write(w io.Writer, format Format, trackers []tracker.Tracker) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, trackers)
	case FormatZip:
		return WriteArchive(w, trackers)
	case FormatCSV:
		return WriteCSV(w, trackers)
	}
	return errors.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ToFile writes the export to path atomically, so an interrupted export
// never leaves a truncated file behind.
func ToFile(path string, format Format, trackers []tracker.Tracker) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, trackers); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("create export dir: %w", err)
		}
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return errors.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, filePerms); err != nil {
		return errors.Errorf("set file permissions: %w", err)
	}
	return nil
}
