// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Darkroom.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Tool configures the external metadata tool.
	Tool ToolConfig `yaml:"tool"`

	// Scan configures directory scans.
	Scan ScanConfig `yaml:"scan"`

	// Snapshot configures snapshot archive storage.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Service configures the HTTP service.
	Service ServiceConfig `yaml:"service"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Tool     *ToolConfig     `yaml:"tool,omitempty"`
	Scan     *ScanConfig     `yaml:"scan,omitempty"`
	Snapshot *SnapshotConfig `yaml:"snapshot,omitempty"`
	Service  *ServiceConfig  `yaml:"service,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
}

// ToolConfig configures the external metadata tool.
type ToolConfig struct {
	// Path is the tool binary: an absolute or relative path used as
	// given, or a bare name resolved through PATH.
	// Default: exiftool
	Path string `yaml:"path"`

	// CommandTimeout bounds each persistent-mode command, as a Go
	// duration string. "0" disables the bound.
	// Default: 30s
	CommandTimeout string `yaml:"command_timeout"`

	// ShutdownTimeout is how long session shutdown waits for a clean
	// exit before force-killing the process group.
	// Default: 5s
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ScanConfig configures directory scans.
type ScanConfig struct {
	// Extensions is the set of file extensions admitted by scans,
	// each starting with a dot. Comparison is case-insensitive.
	// Default: .jpg, .jpeg, .png, .tiff, .raw
	Extensions []string `yaml:"extensions"`
}

// SnapshotConfig configures snapshot archive storage.
type SnapshotConfig struct {
	// Directory is where snapshot archives are written when no
	// explicit output path is given.
	// Default: ~/.local/share/darkroom/snapshots
	Directory string `yaml:"directory"`
}

// ServiceConfig configures the HTTP service.
type ServiceConfig struct {
	// Address is the listen address for the HTTP service.
	// Default: 127.0.0.1:5000
	Address string `yaml:"address"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum level emitted: debug, info, warn, error.
	// Default: debug (development), info (production)
	Level string `yaml:"level"`

	// Format selects the slog handler: text or json.
	// Default: text (development), json (production)
	Format string `yaml:"format"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file,
// and stand alone when no config file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "darkroom")

	return &Config{
		Environment: Development,
		Tool: ToolConfig{
			Path:            "exiftool",
			CommandTimeout:  "30s",
			ShutdownTimeout: "5s",
		},
		Scan: ScanConfig{
			Extensions: []string{".jpg", ".jpeg", ".png", ".tiff", ".raw"},
		},
		Snapshot: SnapshotConfig{
			Directory: filepath.Join(defaultRoot, "snapshots"),
		},
		Service: ServiceConfig{
			Address: "127.0.0.1:5000",
		},
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "text",
		},
	}
}

// Load loads configuration from the DARKROOM_CONFIG environment variable.
//
// When DARKROOM_CONFIG is unset, the defaults are returned unchanged.
// When it is set, the file it names must exist and parse.
func Load() (*Config, error) {
	configPath := os.Getenv("DARKROOM_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values. The only expansion performed is
// ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: quieter, machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{
					Level:  "info",
					Format: "json",
				},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Tool != nil {
		if overrides.Tool.Path != "" {
			c.Tool.Path = overrides.Tool.Path
		}
		if overrides.Tool.CommandTimeout != "" {
			c.Tool.CommandTimeout = overrides.Tool.CommandTimeout
		}
		if overrides.Tool.ShutdownTimeout != "" {
			c.Tool.ShutdownTimeout = overrides.Tool.ShutdownTimeout
		}
	}

	if overrides.Scan != nil {
		if len(overrides.Scan.Extensions) > 0 {
			c.Scan.Extensions = overrides.Scan.Extensions
		}
	}

	if overrides.Snapshot != nil {
		if overrides.Snapshot.Directory != "" {
			c.Snapshot.Directory = overrides.Snapshot.Directory
		}
	}

	if overrides.Service != nil {
		if overrides.Service.Address != "" {
			c.Service.Address = overrides.Service.Address
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Tool.Path = expandVars(c.Tool.Path, vars)
	c.Snapshot.Directory = expandVars(c.Snapshot.Directory, vars)
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

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Tool.Path == "" {
		errs = append(errs, fmt.Errorf("tool.path is required"))
	}
	if _, err := time.ParseDuration(c.Tool.CommandTimeout); err != nil {
		errs = append(errs, fmt.Errorf("tool.command_timeout: %w", err))
	}
	if _, err := time.ParseDuration(c.Tool.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("tool.shutdown_timeout: %w", err))
	}

	for _, extension := range c.Scan.Extensions {
		if !strings.HasPrefix(extension, ".") {
			errs = append(errs, fmt.Errorf("scan.extensions: %q must start with a dot", extension))
		}
	}

	if c.Service.Address == "" {
		errs = append(errs, fmt.Errorf("service.address is required"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}
	formats := []string{"text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ToolTimeouts returns the parsed command and shutdown timeouts. A
// zero command timeout disables the per-command bound.
func (c *Config) ToolTimeouts() (command, shutdown time.Duration, err error) {
	command, err = time.ParseDuration(c.Tool.CommandTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("tool.command_timeout: %w", err)
	}
	shutdown, err = time.ParseDuration(c.Tool.ShutdownTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("tool.shutdown_timeout: %w", err)
	}
	return command, shutdown, nil
}

// LogLevel maps the configured level name to a slog level.
// Unrecognized names fall back to info; Validate reports them.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	if c.Snapshot.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(c.Snapshot.Directory, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Snapshot.Directory, err)
	}
	return nil
}

// ToolPath resolves the configured tool binary. Paths containing a
// separator are checked directly; bare names go through PATH. This
// keeps explicit configuration hermetic while letting the default
// find whatever the operator has installed.
func (c *Config) ToolPath() (string, error) {
	name := c.Tool.Path
	if name == "" {
		name = "exiftool"
	}

	if strings.ContainsRune(name, os.PathSeparator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("tool binary %s: %w", name, err)
		}
		return name, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", name)
	}
	return path, nil
}
