package store

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const settingPrefix = "setting."

// Setting names.
const (
	SettingDashboardPeriod = "dashboard_period"
	SettingWeekStart       = "week_start"
	SettingExportDir       = "export_dir"
)

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	value, ok, err := s.Get(ctx, settingPrefix+key)
	if err != nil {
		return "", errors.Errorf("get setting %q: %w", key, err)
	}
	if !ok {
		return "", errors.Errorf("get setting %q: %w", key, ErrNoSetting)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return s.Put(ctx, settingPrefix+key, value)
}

func (s *Store) AllSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE key LIKE ? ORDER BY key`, settingPrefix+"%")
	if err != nil {
		return nil, errors.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		st.Key = strings.TrimPrefix(st.Key, settingPrefix)
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// ErrNoSetting is returned for a setting key that was never written.
var ErrNoSetting = errors.Base("no such setting")
