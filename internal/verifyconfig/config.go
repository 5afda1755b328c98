// Package verifyconfig loads the `.orizonverify.yaml` project file that
// tells `orizon-verify check`/`watch`/`serve` which sources to check and
// how to run.
package verifyconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project config file `orizon-verify` looks for in
// the current directory when no `--config` flag is given.
const DefaultFileName = ".orizonverify.yaml"

// Config is the project file's schema.
type Config struct {
	// VerifierVersion is the `orizon-verify: <constraint>` pragma applied
	// to every source file that doesn't declare its own, resolved the same
	// way against this build's version (internal/verifyversion).
	VerifierVersion string `yaml:"verifierVersion,omitempty"`

	// Include/Exclude are glob patterns (matched with path/filepath.Match
	// semantics per path segment) selecting which source files `check`
	// walks; Exclude is applied after Include.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`

	Cache  CacheConfig  `yaml:"cache,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

// CacheConfig configures internal/verifycache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// ServerConfig configures internal/verifyserver / cmd/verifyd.
type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
}

// Default returns the configuration `orizon-verify` uses when no project
// file is present.
func Default() *Config {
	return &Config{
		VerifierVersion: "^1.0",
		Include:         []string{"**/*.oriz"},
		Cache: CacheConfig{
			Enabled: true,
			Path:    ".orizonverify-cache.db",
		},
		Server: ServerConfig{
			Address: "localhost:4433",
		},
	}
}

// Load reads and strictly parses a project file at path, rejecting
// unknown fields (a typo'd key would otherwise fail silently) the same
// way the teacher's scenario loader validates its own YAML fixtures.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, or returns Default() if the file
// is simply absent — a missing project file is not an error, only a
// malformed one is.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func validate(cfg *Config) error {
	if len(cfg.Include) == 0 {
		return fmt.Errorf("include must name at least one pattern")
	}
	if cfg.Cache.Enabled && cfg.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when cache.enabled is true")
	}
	return nil
}
