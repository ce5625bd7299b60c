// Package config assembles bundler settings from defaults, rsbundle.toml,
// RSBUNDLE_* environment variables (optionally from a .env file) and flags,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"rsbundle/internal/bundle"
	"rsbundle/internal/minify"
)

const (
	FileName        = "rsbundle.toml"
	EnvPrefix       = "RSBUNDLE_"
	DefaultDebounce = 500 * time.Millisecond
)

type Config struct {
	StripTests    bool         `toml:"strip_tests"`
	StripDocs     bool         `toml:"strip_docs"`
	ExpandModules bool         `toml:"expand_modules"`
	Minify        minify.Level `toml:"minify"`
	Bin           string       `toml:"bin"`
	Output        string       `toml:"output"`
	Watch         WatchConfig  `toml:"watch"`
	Cache         CacheConfig  `toml:"cache"`
}

type WatchConfig struct {
	Dir      string   `toml:"dir"` // пусто: <root>/src
	Debounce Duration `toml:"debounce"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // пусто: пользовательский кэш-каталог
}

// Duration decodes "250ms" / "1s" style values.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default mirrors the behaviour of a bare `rsbundle` run: tests and docs
// stripped, modules expanded, single-line output.
func Default() Config {
	return Config{
		StripTests:    true,
		StripDocs:     true,
		ExpandModules: true,
		Minify:        minify.SingleLine,
		Watch:         WatchConfig{Debounce: Duration{DefaultDebounce}},
	}
}

// Load layers rsbundle.toml and the environment over the defaults. Process
// environment wins over values from <root>/.env.
func Load(root string) (Config, error) {
	cfg := Default()
	if _, err := LoadFile(filepath.Join(root, FileName), &cfg); err != nil {
		return cfg, err
	}
	dotenv, err := godotenv.Read(filepath.Join(root, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("%s: %w", filepath.Join(root, ".env"), err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile decodes path over cfg. A missing file is not an error.
func LoadFile(path string, cfg *Config) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return true, nil
}

// ApplyEnv overrides cfg with RSBUNDLE_* variables found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	bools := []struct {
		key string
		dst *bool
	}{
		{"STRIP_TESTS", &cfg.StripTests},
		{"STRIP_DOCS", &cfg.StripDocs},
		{"EXPAND_MODULES", &cfg.ExpandModules},
		{"CACHE", &cfg.Cache.Enabled},
	}
	for _, b := range bools {
		raw, ok := lookup(EnvPrefix + b.key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
		*b.dst = v
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"BIN", &cfg.Bin},
		{"OUTPUT", &cfg.Output},
		{"WATCH_DIR", &cfg.Watch.Dir},
		{"CACHE_DIR", &cfg.Cache.Dir},
	}
	for _, s := range strs {
		if raw, ok := lookup(EnvPrefix + s.key); ok && strings.TrimSpace(raw) != "" {
			*s.dst = strings.TrimSpace(raw)
		}
	}

	if raw, ok := lookup(EnvPrefix + "MINIFY"); ok && strings.TrimSpace(raw) != "" {
		if err := cfg.Minify.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
			return fmt.Errorf("%sMINIFY: %w", EnvPrefix, err)
		}
	}
	if raw, ok := lookup(EnvPrefix + "WATCH_DEBOUNCE"); ok && strings.TrimSpace(raw) != "" {
		if err := cfg.Watch.Debounce.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("%sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.Watch.Debounce.Duration <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce)
	}
	if c.Minify > minify.Aggressive {
		return fmt.Errorf("unknown minify level %d", c.Minify)
	}
	return nil
}

// WatchDir resolves the directory watched for root.
func (c Config) WatchDir(root string) string {
	if c.Watch.Dir == "" {
		return filepath.Join(root, "src")
	}
	if filepath.IsAbs(c.Watch.Dir) {
		return c.Watch.Dir
	}
	return filepath.Join(root, c.Watch.Dir)
}

// CacheDir resolves the disk cache directory.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "rsbundle"), nil
}

// Bundle returns the pipeline part of the configuration.
func (c Config) Bundle() bundle.Config {
	return bundle.Config{
		StripTests:    c.StripTests,
		StripDocs:     c.StripDocs,
		ExpandModules: c.ExpandModules,
		Minify:        c.Minify,
	}
}
