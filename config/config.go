// Package config loads and saves vscroll settings stored at
// <profileDir>/vscroll.yaml.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miosa/vscroll/style"
)

// Filename is the config file name inside the profile directory.
const Filename = "vscroll.yaml"

// Config holds every persistent setting.
type Config struct {
	Theme  string       `yaml:"theme"` // empty follows the terminal background
	Items  ItemsConfig  `yaml:"items"`
	List   ListConfig   `yaml:"list"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// ItemsConfig controls the dataset. With Repo set, the list shows that
// repository's commit log (at most Count commits) instead of generated items.
type ItemsConfig struct {
	Count int    `yaml:"count"`
	Seed  uint64 `yaml:"seed"`
	Repo  string `yaml:"repo,omitempty"`
}

// ListConfig controls windowing.
type ListConfig struct {
	ItemSize float64 `yaml:"item_size"` // estimated rows per item
	Overscan int     `yaml:"overscan"`
	Measure  bool    `yaml:"measure"` // measure real row heights instead of trusting item_size
}

// SearchConfig controls the deferred search box.
type SearchConfig struct {
	DeferDelay string `yaml:"defer_delay"` // Go duration, e.g. "120ms"
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"` // debug, info, warn, error
	File    string `yaml:"file"`  // relative paths resolve against the profile dir
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Items: ItemsConfig{Count: 10000, Seed: 42},
		List:  ListConfig{ItemSize: 1, Overscan: 5},
		Search: SearchConfig{
			DeferDelay: "120ms",
		},
		Log: LogConfig{Enabled: true, Level: "info", File: "vscroll.log"},
	}
}

// Path returns the config file path for profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, Filename)
}

// Load reads <profileDir>/vscroll.yaml over the defaults. A missing file is
// not an error. Malformed YAML and invalid values are.
func Load(profileDir string) (Config, error) {
	return LoadFile(Path(profileDir))
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to <profileDir>/vscroll.yaml, creating the directory if
// needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(Path(profileDir), data, 0o644)
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Items.Count < 0 {
		errs = append(errs, fmt.Errorf("items.count must be >= 0, got %d", c.Items.Count))
	}
	if !(c.List.ItemSize > 0) || math.IsInf(c.List.ItemSize, 0) {
		errs = append(errs, fmt.Errorf("list.item_size must be a finite number > 0, got %g", c.List.ItemSize))
	}
	if c.List.Overscan < 0 {
		errs = append(errs, fmt.Errorf("list.overscan must be >= 0, got %d", c.List.Overscan))
	}
	if d, err := time.ParseDuration(c.Search.DeferDelay); err != nil {
		errs = append(errs, fmt.Errorf("search.defer_delay: %w", err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("search.defer_delay must be >= 0, got %s", d))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Theme != "" && !style.HasTheme(c.Theme) {
		errs = append(errs, fmt.Errorf("theme %q is not one of %s", c.Theme, strings.Join(style.ThemeNames, ", ")))
	}
	return errors.Join(errs...)
}

// DeferDelay returns the parsed search delay. Call after Validate.
func (c Config) DeferDelay() time.Duration {
	d, err := time.ParseDuration(c.Search.DeferDelay)
	if err != nil || d < 0 {
		return 120 * time.Millisecond
	}
	return d
}
