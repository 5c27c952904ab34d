// Package config holds the process-wide Config for mystic: the
// enumerated options spec.md §4.A names, defaulted from environment
// variables and overridable programmatically or via mystic.yaml.
package config

import (
	"fmt"

	"github.com/kordless/mystic/types"
)

// Environment is the deployment mode gate strategies like Mock read.
type Environment string

// Environment values per spec.md §4.A.
const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

func (e Environment) valid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvProduction:
		return true
	default:
		return false
	}
}

// Config is the process-wide configuration shared by every Mystic
// subsystem. Zero value is not usable directly; call Load or Default.
type Config struct {
	Environment     Environment `yaml:"environment"`
	CacheDir        string      `yaml:"cache_dir"`
	LogDir          string      `yaml:"log_dir"`
	DataDir         string      `yaml:"data_dir"`
	MaxCacheEntries int         `yaml:"max_cache_entries"`
	MaxSnapshots    int         `yaml:"max_snapshots"`
	LogFormat       string      `yaml:"log_format"`
	FilterSensitive bool        `yaml:"filter_sensitive"`
	ProfileMode     bool        `yaml:"profile_mode"`
}

// Validate rejects configuration a careful caller would never want to run
// with; it does not touch the filesystem (directory creation happens
// lazily at first use, same as the teacher's storage backends).
func (c *Config) Validate() error {
	if !c.Environment.valid() {
		return &types.ConfigError{Field: "environment", Reason: fmt.Sprintf("unknown environment %q", c.Environment)}
	}
	if c.MaxCacheEntries < 0 {
		return &types.ConfigError{Field: "max_cache_entries", Reason: "must be >= 0"}
	}
	if c.MaxSnapshots < 0 {
		return &types.ConfigError{Field: "max_snapshots", Reason: "must be >= 0"}
	}
	switch c.LogFormat {
	case "console", "file", "json_rpc", "structured", "mcp_debug":
	default:
		return &types.ConfigError{Field: "log_format", Reason: fmt.Sprintf("unknown log_format %q", c.LogFormat)}
	}
	return nil
}

// FunctionIdentity is the canonical identity lookup used throughout
// Mystic; it is re-exported here so callers configuring a process only
// need to import config, not types, for the common case. Per spec.md
// §4.A callers must never key by object identity, only by this pair.
func FunctionIdentity(fn any) (types.FunctionIdentity, error) {
	return types.IdentityOf(fn)
}
