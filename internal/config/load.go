package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
)

// DefaultFile is the configuration file name looked up in the project root.
const DefaultFile = "siteforge.yml"

// envFiles are loaded from the config directory before parsing. Variables
// already present in the environment are never overridden.
var envFiles = []string{".env", ".env.local"}

// Load reads, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "resolve config path").
			WithContext("path", configPath).Build()
	}
	baseDir := filepath.Dir(abs)

	loadEnvFiles(baseDir)

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, foundationerrors.ConfigError("configuration file not found").
				WithContext("path", abs).Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "read config file").
			WithContext("path", abs).Fatal().Build()
	}
	return Parse(data, baseDir)
}

// Parse builds a configuration from YAML bytes. Environment variables are
// expanded first; baseDir anchors relative directories.
func Parse(data []byte, baseDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to parse config").
			Fatal().Build()
	}
	cfg.BaseDir = baseDir

	nres, err := NormalizeConfig(cfg)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "normalize config").Fatal().Build()
	}
	for _, w := range nres.Warnings {
		slog.Warn("config normalization", "detail", w)
	}
	cfg.Warnings = append(cfg.Warnings, nres.Warnings...)

	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "apply defaults").Fatal().Build()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("loaded environment file", "path", p)
	}
}

// Resolve returns dir anchored at the config directory unless it is absolute.
func (c *Config) Resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.BaseDir, dir)
}

// String renders the configuration as YAML, mainly for debugging.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config<%v>", err)
	}
	return string(out)
}
