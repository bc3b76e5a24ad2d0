// Package config loads the viewer configuration from .treegrid/config.yaml
// and locates the .treegrid state directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// StateDirName is the per-project directory holding config and persisted
// grid state.
const StateDirName = ".treegrid"

// Config is the viewer configuration. Zero values fall back to defaults.
type Config struct {
	DataPath   string         `yaml:"data_path,omitempty"`
	DBPath     string         `yaml:"db_path,omitempty"`
	DebounceMS int            `yaml:"debounce_ms,omitempty"`
	Lookahead  int            `yaml:"lookahead,omitempty"`
	Columns    []model.Column `yaml:"columns,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DebounceMS: 30,
		Lookahead:  3,
	}
}

// Load reads a config file. A missing file is not an error; the defaults
// are returned. A present but invalid file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = Default().DebounceMS
	}
	if cfg.Lookahead < 0 {
		cfg.Lookahead = Default().Lookahead
	}
	if len(cfg.Columns) > 0 {
		if err := cfg.Schema().Validate(); err != nil {
			return Default(), fmt.Errorf("%s: %w", path, err)
		}
	}
	return cfg, nil
}

// Schema returns the configured column layout, falling back to the default
// nine-column schema.
func (c Config) Schema() model.Schema {
	if len(c.Columns) > 0 {
		return model.Schema{Columns: c.Columns}
	}
	return model.DefaultSchema()
}

// Debounce returns the materialization debounce window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ConfigPath returns the config file path inside a state directory.
func ConfigPath(stateDir string) string {
	return filepath.Join(stateDir, "config.yaml")
}

// Discover walks up from the current directory looking for a .treegrid
// directory and returns its path. The search stops at the home directory.
func Discover() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return findStateDir(dir)
}

func findStateDir(dir string) (string, bool) {
	home, _ := os.UserHomeDir()
	for {
		candidate := filepath.Join(dir, StateDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}
