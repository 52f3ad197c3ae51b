// Package config loads the global arbor configuration and builds the logger.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"arbor/internal/drag"

	"go.uber.org/multierr"
)

const (
	DefaultDebounceMs       = 150
	DefaultCanvasAxisMargin = drag.DefaultMargin
	DefaultOutlineRowHeight = 3
	maxDebounceMs           = 1000
)

type Config struct {
	// DebounceMs is the coalescing window for re-render and change sinks.
	DebounceMs *int `json:"debounceMs,omitempty"`
	// HistoryLimit caps the undo stack; 0 keeps everything.
	HistoryLimit int `json:"historyLimit,omitempty"`
	// CanvasAxisMargin is the resolver's vertical preference window in cells.
	CanvasAxisMargin *float64 `json:"canvasAxisMargin,omitempty"`
	OutlineRowHeight int      `json:"outlineRowHeight,omitempty"`

	Canvas CanvasConfig `json:"canvas,omitempty"`

	// Catalog is a .yaml or .sqlite template catalog; empty means built-ins.
	Catalog       string `json:"catalog,omitempty"`
	ConfirmDelete *bool  `json:"confirmDelete,omitempty"`

	Logging LoggingConfig `json:"logging,omitempty"`
}

type CanvasConfig struct {
	Borders *bool `json:"borders,omitempty"`
	Padding *bool `json:"padding,omitempty"`
}

// Defaults returns a config with every field set.
func Defaults() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func floatPtr(f float64) *float64 { return &f }

func (c *Config) applyDefaults() {
	if c.DebounceMs == nil {
		c.DebounceMs = intPtr(DefaultDebounceMs)
	}
	if c.CanvasAxisMargin == nil {
		c.CanvasAxisMargin = floatPtr(DefaultCanvasAxisMargin)
	}
	if c.OutlineRowHeight == 0 {
		c.OutlineRowHeight = DefaultOutlineRowHeight
	}
	if c.Canvas.Borders == nil {
		c.Canvas.Borders = boolPtr(true)
	}
	if c.Canvas.Padding == nil {
		c.Canvas.Padding = boolPtr(true)
	}
	if c.ConfirmDelete == nil {
		c.ConfirmDelete = boolPtr(true)
	}
	if c.Logging.File.Level == "" {
		c.Logging.File.Level = "none"
	}
	if c.Logging.Console.Level == "" {
		c.Logging.Console.Level = "none"
	}
}

// Debounce is the coalescing window.
func (c *Config) Debounce() time.Duration {
	if c.DebounceMs == nil {
		return DefaultDebounceMs * time.Millisecond
	}
	return time.Duration(*c.DebounceMs) * time.Millisecond
}

// AxisMargin is the canvas resolver margin; an explicit 0 is kept.
func (c *Config) AxisMargin() float64 {
	if c.CanvasAxisMargin == nil {
		return DefaultCanvasAxisMargin
	}
	return *c.CanvasAxisMargin
}

func (c *Config) BordersOn() bool       { return c.Canvas.Borders == nil || *c.Canvas.Borders }
func (c *Config) PaddingOn() bool       { return c.Canvas.Padding == nil || *c.Canvas.Padding }
func (c *Config) ConfirmDeleteOn() bool { return c.ConfirmDelete == nil || *c.ConfirmDelete }

// Validate reports every out-of-range field.
func (c *Config) Validate() error {
	var errs error
	if c.DebounceMs != nil && (*c.DebounceMs < 0 || *c.DebounceMs > maxDebounceMs) {
		errs = multierr.Append(errs, fmt.Errorf("debounceMs must be within 0..%d, got %d", maxDebounceMs, *c.DebounceMs))
	}
	if c.HistoryLimit < 0 {
		errs = multierr.Append(errs, fmt.Errorf("historyLimit must not be negative, got %d", c.HistoryLimit))
	}
	if c.HistoryLimit == 1 {
		errs = multierr.Append(errs, errors.New("historyLimit of 1 leaves nothing to undo; use 0 or at least 2"))
	}
	if c.CanvasAxisMargin != nil && *c.CanvasAxisMargin < 0 {
		errs = multierr.Append(errs, fmt.Errorf("canvasAxisMargin must not be negative, got %v", *c.CanvasAxisMargin))
	}
	if c.OutlineRowHeight < 0 {
		errs = multierr.Append(errs, fmt.Errorf("outlineRowHeight must be positive, got %d", c.OutlineRowHeight))
	}
	errs = multierr.Append(errs, c.Logging.Validate())
	return errs
}

// ConfigDir is ~/.arbor unless ARBOR_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("ARBOR_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".arbor"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads path (the default location when empty). A missing file yields
// defaults. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ARBOR_CATALOG")); v != "" {
		c.Catalog = v
	}
	if v := strings.TrimSpace(os.Getenv("ARBOR_LOG_LEVEL")); v != "" {
		c.Logging.File.Level = v
		if c.Logging.File.Destination == "" {
			c.Logging.File.Destination = filepath.Join(os.TempDir(), "arbor.log")
		}
	}
}

// Save writes cfg to path (the default location when empty) atomically.
func Save(cfg *Config, path string) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	f, err := os.CreateTemp(dir, "config.json.*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, 0o600)
	return os.Rename(tmp, path)
}
