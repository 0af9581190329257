// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for attrspec.
type Config struct {
	// Root is the base directory for attrspec data. ${ATTRSPEC_ROOT}
	// in other path fields expands to it.
	Root string `yaml:"root"`

	// Types configures type resolution.
	Types TypesConfig `yaml:"types"`

	// Decode configures blob decoding.
	Decode DecodeConfig `yaml:"decode"`

	// Cache configures the decoded-spec cache.
	Cache CacheConfig `yaml:"cache"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log"`
}

// TypesConfig configures the resolution context.
type TypesConfig struct {
	// DefaultModule is the module whose types resolve without an
	// assembly name. It must be the module of one of the manifests,
	// or empty for a context that knows only core types.
	DefaultModule string `yaml:"default_module"`

	// Manifests lists module manifest files (YAML or JSONC).
	Manifests []string `yaml:"manifests"`

	// Fallback controls lookups of unqualified names that are neither
	// core types nor in the default module.
	// Values: "none", "unique", "first"
	// Default: unique
	Fallback string `yaml:"fallback"`
}

// DecodeConfig configures blob decoding.
type DecodeConfig struct {
	// Workers bounds the decode worker pool for capture files. Zero
	// means one worker per CPU.
	Workers int `yaml:"workers"`

	// MaxBlobSize rejects inputs larger than this many bytes before
	// decoding. Default: 16 MiB
	MaxBlobSize int64 `yaml:"max_blob_size"`
}

// CacheConfig configures the decoded-spec cache.
type CacheConfig struct {
	// Enabled turns the cache on for capture decoding.
	Enabled bool `yaml:"enabled"`

	// Path is the bbolt database file.
	// Default: ${ATTRSPEC_ROOT}/specs.db
	Path string `yaml:"path"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	// Level is the minimum level logged.
	// Values: "debug", "info", "warn", "error"
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration. These defaults are the
// base the config file is loaded onto; they exist so that every field
// has a sensible value, not as a substitute for the file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "attrspec")

	return &Config{
		Root: defaultRoot,
		Types: TypesConfig{
			Fallback: "unique",
		},
		Decode: DecodeConfig{
			MaxBlobSize: 16 << 20,
		},
		Cache: CacheConfig{
			Path: "${ATTRSPEC_ROOT}/specs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the ATTRSPEC_CONFIG environment
// variable. There are no fallbacks: if ATTRSPEC_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("ATTRSPEC_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("ATTRSPEC_CONFIG environment variable not set; " +
			"set it to the path of your attrspec.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadOrDefault loads path when it is set, then ATTRSPEC_CONFIG when
// that is set, and otherwise returns the defaults with their path
// variables expanded. Commands use it so that a config file is
// optional; when one is named it must load.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv("ATTRSPEC_CONFIG") != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path.
//
// Environment variables do not override config values. The only
// expansion performed is ${VAR} and ${VAR:-default} in path fields.
// Relative manifest paths are taken relative to the config file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	base := filepath.Dir(path)
	for i, manifest := range cfg.Types.Manifests {
		if manifest != "" && !filepath.IsAbs(manifest) {
			cfg.Types.Manifests[i] = filepath.Join(base, manifest)
		}
	}

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"ATTRSPEC_ROOT": c.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["ATTRSPEC_ROOT"] = c.Root // Update for dependent paths.

	c.Cache.Path = expandVars(c.Cache.Path, vars)
	for i, manifest := range c.Types.Manifests {
		c.Types.Manifests[i] = expandVars(manifest, vars)
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root is required"))
	}

	fallbackValues := []string{"none", "unique", "first"}
	if !contains(fallbackValues, c.Types.Fallback) {
		errs = append(errs, fmt.Errorf("types.fallback must be one of: %v", fallbackValues))
	}
	if c.Types.DefaultModule != "" && len(c.Types.Manifests) == 0 {
		errs = append(errs, fmt.Errorf("types.default_module %q names a module but types.manifests is empty", c.Types.DefaultModule))
	}
	for i, manifest := range c.Types.Manifests {
		if manifest == "" {
			errs = append(errs, fmt.Errorf("types.manifests[%d] is empty", i))
		}
	}

	if c.Decode.Workers < 0 {
		errs = append(errs, fmt.Errorf("decode.workers must not be negative, got %d", c.Decode.Workers))
	}
	if c.Decode.MaxBlobSize <= 0 {
		errs = append(errs, fmt.Errorf("decode.max_blob_size must be positive, got %d", c.Decode.MaxBlobSize))
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, fmt.Errorf("cache.path is required when the cache is enabled"))
	}

	levelValues := []string{"debug", "info", "warn", "error"}
	if !contains(levelValues, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levelValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel returns Log.Level as a slog level. Unknown values map to
// info; Validate reports them.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// EnsurePaths creates the root directory and the cache's parent
// directory if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Root}
	if c.Cache.Enabled && c.Cache.Path != "" {
		paths = append(paths, filepath.Dir(c.Cache.Path))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
