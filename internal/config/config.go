// Package config holds the gallery's tunables and reads them from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Zero or invalid values are replaced by
// defaults in Normalize.
type Config struct {
	Catalog           string        `yaml:"catalog"`
	ProximityMargin   float32       `yaml:"proximity_margin"`
	RescanDelay       time.Duration `yaml:"rescan_delay"`
	SwipeThreshold    float32       `yaml:"swipe_threshold"`
	ThumbnailSize     int           `yaml:"thumbnail_size"`
	SlideshowInterval time.Duration `yaml:"slideshow_interval"`
	FetchRetries      int           `yaml:"fetch_retries"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	LogLevel          string        `yaml:"log_level"`
	StrictCategories  bool          `yaml:"strict_categories"`
	DBPath            string        `yaml:"db_path,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog:           "photos.json",
		ProximityMargin:   50,
		RescanDelay:       100 * time.Millisecond,
		SwipeThreshold:    50,
		ThumbnailSize:     200,
		SlideshowInterval: 3 * time.Second,
		FetchRetries:      3,
		FetchTimeout:      15 * time.Second,
		LogLevel:          "info",
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Normalize resets out-of-range values to their defaults and returns one
// message per value it changed.
func (c *Config) Normalize() []string {
	d := Default()
	var fixed []string
	fix := func(name string, bad bool, reset func()) {
		if bad {
			reset()
			fixed = append(fixed, fmt.Sprintf("invalid %s, using default", name))
		}
	}
	fix("catalog", strings.TrimSpace(c.Catalog) == "", func() { c.Catalog = d.Catalog })
	fix("proximity_margin", c.ProximityMargin < 0, func() { c.ProximityMargin = d.ProximityMargin })
	fix("rescan_delay", c.RescanDelay <= 0, func() { c.RescanDelay = d.RescanDelay })
	fix("swipe_threshold", c.SwipeThreshold <= 0, func() { c.SwipeThreshold = d.SwipeThreshold })
	fix("thumbnail_size", c.ThumbnailSize <= 0, func() { c.ThumbnailSize = d.ThumbnailSize })
	fix("slideshow_interval", c.SlideshowInterval < 100*time.Millisecond, func() { c.SlideshowInterval = d.SlideshowInterval })
	fix("fetch_retries", c.FetchRetries < 0, func() { c.FetchRetries = d.FetchRetries })
	fix("fetch_timeout", c.FetchTimeout <= 0, func() { c.FetchTimeout = d.FetchTimeout })
	return fixed
}

// Write saves c to path as YAML with a short header.
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	header := "# fygallery configuration\n\n"
	return os.WriteFile(path, []byte(header+string(data)), 0o644)
}
