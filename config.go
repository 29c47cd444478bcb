package gencache

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the file-driven subset of Options. Providers, codecs and key
// accessors are code, so they stay in Options.
//
//	prefix: "#Repo"
//	ttl: 10m
//	max_results: 500
//	types:
//	  Contact:
//	    max_results: 50
//	  AuditLog:
//	    disabled: true
type Config struct {
	Prefix              string                `yaml:"prefix"`
	Disabled            bool                  `yaml:"disabled"`
	DisableWriteThrough bool                  `yaml:"disable_write_through"`
	DisableGenerational bool                  `yaml:"disable_generational"`
	MaxResults          int                   `yaml:"max_results"`
	TTL                 time.Duration         `yaml:"ttl"`
	Types               map[string]TypeConfig `yaml:"types"`
}

// TypeConfig overrides Config for one TypeName. Pointer fields distinguish
// "unset" from an explicit zero.
type TypeConfig struct {
	Disabled            *bool          `yaml:"disabled"`
	DisableWriteThrough *bool          `yaml:"disable_write_through"`
	DisableGenerational *bool          `yaml:"disable_generational"`
	MaxResults          *int           `yaml:"max_results"`
	TTL                 *time.Duration `yaml:"ttl"`
}

// LoadConfig parses YAML and validates the result.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("gencache: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("gencache: read config: %w", err)
	}
	return LoadConfig(data)
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	if strings.Contains(c.Prefix, "/") {
		return &ConfigError{Field: "prefix", Reason: "must not contain '/'"}
	}
	if c.MaxResults < 0 {
		return &ConfigError{Field: "max_results", Reason: "must be >= 0"}
	}
	if c.TTL < 0 {
		return &ConfigError{Field: "ttl", Reason: "must be >= 0"}
	}
	for name, t := range c.Types {
		if name == "" {
			return &ConfigError{Field: "types", Reason: "type name must not be empty"}
		}
		if t.MaxResults != nil && *t.MaxResults < 0 {
			return &ConfigError{Field: "types." + name + ".max_results", Reason: "must be >= 0"}
		}
		if t.TTL != nil && *t.TTL < 0 {
			return &ConfigError{Field: "types." + name + ".ttl", Reason: "must be >= 0"}
		}
	}
	return nil
}

// typeConfig matches "pkg.Type" first, then the bare "Type".
func (c Config) typeConfig(name string) (TypeConfig, bool) {
	if t, ok := c.Types[name]; ok {
		return t, true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		t, ok := c.Types[name[i+1:]]
		return t, ok
	}
	return TypeConfig{}, false
}

// ApplyConfig copies cfg onto opts: global values first, then the override
// for opts' type name. Fields cfg leaves at zero keep opts' values.
func ApplyConfig[T any](cfg Config, opts *Options[T]) {
	if cfg.Prefix != "" {
		opts.Prefix = cfg.Prefix
	}
	opts.Disabled = opts.Disabled || cfg.Disabled
	opts.DisableWriteThrough = opts.DisableWriteThrough || cfg.DisableWriteThrough
	opts.DisableGenerational = opts.DisableGenerational || cfg.DisableGenerational
	if cfg.MaxResults > 0 {
		opts.MaxResults = cfg.MaxResults
	}
	if cfg.TTL > 0 {
		opts.TTL = cfg.TTL
	}

	t, ok := cfg.typeConfig(coalesce(opts.TypeName, typeNameOf[T]()))
	if !ok {
		return
	}
	if t.Disabled != nil {
		opts.Disabled = *t.Disabled
	}
	if t.DisableWriteThrough != nil {
		opts.DisableWriteThrough = *t.DisableWriteThrough
	}
	if t.DisableGenerational != nil {
		opts.DisableGenerational = *t.DisableGenerational
	}
	if t.MaxResults != nil {
		opts.MaxResults = *t.MaxResults
	}
	if t.TTL != nil {
		opts.TTL = *t.TTL
	}
}
