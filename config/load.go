package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default builds a Config from MYSTIC_* environment variables, falling
// back to the documented defaults for anything unset. This is the
// config.Environment in spec.md §4.A before any mystic.yaml is applied.
func Default() *Config {
	cfg := &Config{
		Environment:     EnvDevelopment,
		CacheDir:        "./.mystic/cache",
		LogDir:          "./.mystic/logs",
		DataDir:         "./.mystic/data",
		MaxCacheEntries: 1000,
		MaxSnapshots:    500,
		LogFormat:       "console",
		FilterSensitive: true,
		ProfileMode:     false,
	}

	if v, ok := os.LookupEnv("MYSTIC_ENVIRONMENT"); ok && v != "" {
		cfg.Environment = Environment(v)
	}
	if v, ok := os.LookupEnv("MYSTIC_CACHE_DIR"); ok && v != "" {
		cfg.CacheDir = v
	}
	if v, ok := os.LookupEnv("MYSTIC_LOG_DIR"); ok && v != "" {
		cfg.LogDir = v
	}
	if v, ok := os.LookupEnv("MYSTIC_DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("MYSTIC_FILTER_SENSITIVE"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FilterSensitive = b
		}
	}

	return cfg
}

// Load reads a mystic.yaml config file on top of Default, expanding
// environment variables and rejecting unknown keys to catch typos early.
// A missing path is not an error: Default alone is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
