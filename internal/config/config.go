// Package config loads bridge settings from an optional YAML file and CLAY_*
// environment variables, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CLAY_MODULE_PATH.
const EnvPrefix = "CLAY_"

// DefaultModulePath is where the script module is looked for, relative to
// the base directory.
const DefaultModulePath = "GameScripts.lua"

type Config struct {
	Module Module `yaml:"module" envPrefix:"MODULE_"`
	Log    Log    `yaml:"log" envPrefix:"LOG_"`
	Watch  Watch  `yaml:"watch" envPrefix:"WATCH_"`
}

type Module struct {
	// Path is a module file or a builtin:<catalog> name.
	Path string `yaml:"path" env:"PATH"`
	// BaseDir resolves relative paths. Empty means the executable's directory.
	BaseDir string `yaml:"base_dir" env:"BASE_DIR"`
}

type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	// Native also sends log lines to the host console once the input table
	// is bound.
	Native bool `yaml:"native" env:"NATIVE"`
}

type Watch struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Module: Module{Path: DefaultModulePath},
		Log:    Log{Level: "info", Format: "console"},
		Watch:  Watch{Debounce: 250 * time.Millisecond},
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Module.Path) == "" {
		return errors.New("config: module.path is empty")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q, want json or console", c.Log.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("config: watch.debounce %s is negative", c.Watch.Debounce)
	}
	return nil
}

// ModulePath returns the module path with relative file paths resolved
// against the base directory. builtin: paths are returned unchanged.
func (c *Config) ModulePath() string {
	return c.Resolve(c.Module.Path)
}

// Resolve resolves p like ModulePath does.
func (c *Config) Resolve(p string) string {
	if strings.HasPrefix(p, "builtin:") || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.baseDir(), p)
}

func (c *Config) baseDir() string {
	if c.Module.BaseDir != "" {
		return c.Module.BaseDir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
