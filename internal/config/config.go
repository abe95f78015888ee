// Package config loads ponto's YAML configuration and applies environment
// overrides on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/ponto/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultExpectedMinutes is the expected daily workload (8h30).
	DefaultExpectedMinutes = 510
	// DefaultMinBreakMinutes is the lunch break that is not charged to the bank.
	DefaultMinBreakMinutes = 60
)

type Config struct {
	Storage Storage `yaml:"storage"`
	Workday Workday `yaml:"workday"`
	Log     Log     `yaml:"log"`
}

type Storage struct {
	Driver string `yaml:"driver"` // "json" or "sqlite"
	Path   string `yaml:"path,omitempty"`
}

type Workday struct {
	ExpectedMinutes int `yaml:"expected_minutes"`
	MinBreakMinutes int `yaml:"min_break_minutes"`
}

type Log struct {
	File  string `yaml:"file,omitempty"` // empty disables logging
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage: Storage{Driver: store.DriverJSON},
		Workday: Workday{
			ExpectedMinutes: DefaultExpectedMinutes,
			MinBreakMinutes: DefaultMinBreakMinutes,
		},
		Log: Log{Level: "info"},
	}
}

// Dir returns ~/.config/ponto.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "ponto"), nil
}

// DefaultPath returns ~/.config/ponto/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (a missing file yields the defaults), applies PONTO_DATA,
// PONTO_DRIVER and PONTO_LOG, fills the storage path and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("PONTO_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("PONTO_DATA"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("PONTO_LOG"); v != "" {
		cfg.Log.File = v
	}

	if err := cfg.resolvePath(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply overrides the storage driver and path with the non-empty values
// given on the command line. A path that was only the old driver's default
// follows the driver change.
func (c *Config) Apply(driver, path string) error {
	if driver != "" && driver != c.Storage.Driver {
		if def, err := store.DefaultPath(c.Storage.Driver); err == nil && def == c.Storage.Path {
			c.Storage.Path = ""
		}
		c.Storage.Driver = driver
	}
	if path != "" {
		c.Storage.Path = path
	}
	if err := c.resolvePath(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) resolvePath() error {
	if c.Storage.Path != "" {
		return nil
	}
	p, err := store.DefaultPath(c.Storage.Driver)
	if err != nil {
		return fmt.Errorf("resolve storage path: %w", err)
	}
	c.Storage.Path = p
	return nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case store.DriverJSON, store.DriverSQLite:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q (want %q or %q)",
			c.Storage.Driver, store.DriverJSON, store.DriverSQLite)
	}
	if c.Workday.ExpectedMinutes <= 0 {
		return fmt.Errorf("workday.expected_minutes must be positive, got %d", c.Workday.ExpectedMinutes)
	}
	if c.Workday.MinBreakMinutes < 0 {
		return fmt.Errorf("workday.min_break_minutes must not be negative, got %d", c.Workday.MinBreakMinutes)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

func (w Workday) Expected() time.Duration {
	return time.Duration(w.ExpectedMinutes) * time.Minute
}

func (w Workday) MinBreak() time.Duration {
	return time.Duration(w.MinBreakMinutes) * time.Minute
}

// Write saves c to path as YAML, creating the directory if needed.
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
