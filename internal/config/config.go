// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/toastreg/notification"
)

// Config holds all toastreg configuration.
type Config struct {
	Identity     notification.Identity `yaml:"identity"`
	Registration notification.Options  `yaml:"registration"`
	Logging      LoggingConfig         `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration. The identity has no
// defaults: an AUMID and CLSID belong to the application being registered.
func DefaultConfig() *Config {
	return &Config{
		Registration: notification.Options{
			RollbackOnFailure: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeYAML(cfg, data, "config data"); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	AUMID    string
	CLSID    string
	AppName  string
	LogLevel string
	// Rollback is nil when the flag was not given.
	Rollback *bool
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered resolves configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
//
// A missing external file is not an error; an unreadable or malformed one is.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeYAML(cfg, embedded, "embedded config"); err != nil {
		return nil, err
	}

	filePath := Locate()
	if len(configPath) > 0 {
		filePath = configPath[0]
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", filePath, err)
		default:
			if err := mergeYAML(cfg, data, "config file "+filePath); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)
	cli.apply(cfg)

	return cfg, nil
}

// mergeYAML unmarshals data over cfg, leaving fields it does not mention.
func mergeYAML(cfg *Config, data []byte, source string) error {
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	return nil
}

func (o CLIOverrides) apply(cfg *Config) {
	setIfNonEmpty(&cfg.Identity.AUMID, o.AUMID)
	setIfNonEmpty(&cfg.Identity.CLSID, o.CLSID)
	setIfNonEmpty(&cfg.Identity.AppName, o.AppName)
	setIfNonEmpty(&cfg.Logging.Level, o.LogLevel)
	if o.Rollback != nil {
		cfg.Registration.RollbackOnFailure = *o.Rollback
	}
}

func setIfNonEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// ErrNoUserConfigDir is returned by DefaultPath when no per-user directory
// can be resolved from the environment.
var ErrNoUserConfigDir = errors.New("no per-user config directory (pass --config)")

// DefaultPath returns the preferred per-user location for a new config file.
func DefaultPath() (string, error) {
	paths := userConfigPaths()
	if len(paths) == 0 {
		return "", ErrNoUserConfigDir
	}
	return paths[0], nil
}

func applyEnvOverrides(cfg *Config) {
	setIfNonEmpty(&cfg.Identity.AUMID, os.Getenv("TOASTREG_AUMID"))
	setIfNonEmpty(&cfg.Identity.CLSID, os.Getenv("TOASTREG_CLSID"))
	setIfNonEmpty(&cfg.Identity.AppName, os.Getenv("TOASTREG_APP_NAME"))
	setIfNonEmpty(&cfg.Logging.Level, os.Getenv("TOASTREG_LOG_LEVEL"))
}

// Validate checks that an identity is configured.
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("%w (set it with a flag, TOASTREG_* or the config file)", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}
