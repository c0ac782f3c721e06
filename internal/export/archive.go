package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/sadopc/habitr/internal/tracker"
)

// WriteArchive writes a zip holding one <name>.json per tracker.
func WriteArchive(w io.Writer, trackers []tracker.Tracker) error {
	zw := zip.NewWriter(w)
	used := make(map[string]bool)

	for _, t := range trackers {
		name := archiveName(t, used)
		f, err := zw.Create(name)
		if err != nil {
			return errors.Errorf("create %s: %w", name, err)
		}
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return errors.Errorf("marshal %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			return errors.Errorf("write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("close archive: %w", err)
	}
	return nil
}

// archiveName picks a unique file name for t and records it in used.
func archiveName(t tracker.Tracker, used map[string]bool) string {
	base := strings.TrimSpace(strings.NewReplacer("/", "_", "\\", "_").Replace(t.Name))
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = t.ID
	}

	name := base + ".json"
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s (%d).json", base, n)
	}
	used[strings.ToLower(name)] = true
	return name
}
