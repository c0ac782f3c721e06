// Package config loads the optional YAML config file.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

const FileName = "config.yaml"

var ErrInvalidConfig = errors.Base("invalid config")

type Config struct {
	DBPath        string `yaml:"db_path"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
	DefaultPeriod string `yaml:"default_period"`
	ExportDir     string `yaml:"export_dir"`
}

// Default returns the built-in configuration. Paths are left empty and
// resolved by the caller so that a missing home directory is not fatal
// here.
func Default() Config {
	return Config{
		LogLevel:      zerolog.LevelInfoValue,
		DefaultPeriod: string(stats.PeriodWeek),
	}
}

// DefaultPath returns ~/.config/habitr/config.yaml
func DefaultPath() (string, error) {
	dir, err := store.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Errorf("%w: %s: %s", ErrInvalidConfig, path, err.Error())
	}

	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.ExportDir = expandHome(cfg.ExportDir)

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if _, err := stats.ParsePeriod(c.DefaultPeriod); err != nil {
		return errors.Errorf("%w: default_period %q", ErrInvalidConfig, c.DefaultPeriod)
	}
	return nil
}

// Save writes c to path as YAML.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("write config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
