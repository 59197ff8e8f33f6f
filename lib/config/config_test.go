// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Tool.Path != "exiftool" {
		t.Errorf("expected tool.path=exiftool, got %s", cfg.Tool.Path)
	}
	if cfg.Service.Address != "127.0.0.1:5000" {
		t.Errorf("expected service.address=127.0.0.1:5000, got %s", cfg.Service.Address)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("expected debug/text logging for development, got %s/%s",
			cfg.Logging.Level, cfg.Logging.Format)
	}
	if len(cfg.Scan.Extensions) == 0 || cfg.Scan.Extensions[0] != ".jpg" {
		t.Errorf("unexpected scan extensions: %v", cfg.Scan.Extensions)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	// With DARKROOM_CONFIG unset, Load returns the defaults.
	t.Setenv("DARKROOM_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without config file failed: %v", err)
	}
	if cfg.Tool.Path != "exiftool" {
		t.Errorf("expected default tool.path, got %s", cfg.Tool.Path)
	}
}

func TestLoadWithConfigEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "darkroom.yaml")
	configContent := `
environment: staging
tool:
  path: /usr/local/bin/exiftool
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("DARKROOM_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Tool.Path != "/usr/local/bin/exiftool" {
		t.Errorf("expected tool.path from file, got %s", cfg.Tool.Path)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "darkroom.yaml")
	configContent := `
environment: staging

tool:
  path: /opt/exiftool/exiftool
  command_timeout: 90s

scan:
  extensions: [.jpg, .dng]

snapshot:
  directory: /var/lib/darkroom/snapshots

service:
  address: 0.0.0.0:8080

logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Tool.Path != "/opt/exiftool/exiftool" {
		t.Errorf("expected tool.path=/opt/exiftool/exiftool, got %s", cfg.Tool.Path)
	}
	if cfg.Tool.CommandTimeout != "90s" {
		t.Errorf("expected command_timeout=90s, got %s", cfg.Tool.CommandTimeout)
	}
	// Unset fields keep their defaults.
	if cfg.Tool.ShutdownTimeout != "5s" {
		t.Errorf("expected default shutdown_timeout=5s, got %s", cfg.Tool.ShutdownTimeout)
	}
	if len(cfg.Scan.Extensions) != 2 || cfg.Scan.Extensions[1] != ".dng" {
		t.Errorf("unexpected scan extensions: %v", cfg.Scan.Extensions)
	}
	if cfg.Snapshot.Directory != "/var/lib/darkroom/snapshots" {
		t.Errorf("unexpected snapshot directory: %s", cfg.Snapshot.Directory)
	}
	if cfg.Service.Address != "0.0.0.0:8080" {
		t.Errorf("unexpected service address: %s", cfg.Service.Address)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected logging.level=warn, got %s", cfg.Logging.Level)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "darkroom.yaml")
	configContent := `
environment: production

tool:
  path: exiftool

logging:
  level: debug

production:
  tool:
    path: /opt/prod/exiftool
  logging:
    level: error
    format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Tool.Path != "/opt/prod/exiftool" {
		t.Errorf("expected tool.path from production override, got %s", cfg.Tool.Path)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" {
		t.Errorf("expected error/json logging from production override, got %s/%s",
			cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestProductionDefaultOverrides(t *testing.T) {
	// A production config with no explicit production section still
	// gets the quieter logging defaults.
	configPath := filepath.Join(t.TempDir(), "darkroom.yaml")
	if err := os.WriteFile(configPath, []byte("environment: production\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected info/json logging for production, got %s/%s",
			cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestExpandVariablesInPaths(t *testing.T) {
	t.Setenv("DARKROOM_BIN", "")

	configPath := filepath.Join(t.TempDir(), "darkroom.yaml")
	configContent := `
tool:
  path: ${DARKROOM_BIN:-/opt/tools}/exiftool
snapshot:
  directory: ${HOME}/snapshots
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Tool.Path != "/opt/tools/exiftool" {
		t.Errorf("expected ${DARKROOM_BIN:-/opt/tools} to expand to its default, got %s", cfg.Tool.Path)
	}
	if strings.Contains(cfg.Snapshot.Directory, "${") {
		t.Errorf("${HOME} not expanded: %s", cfg.Snapshot.Directory)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/darkroom",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/darkroom",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: "invalid environment",
		},
		{
			name: "empty tool path",
			modify: func(c *Config) {
				c.Tool.Path = ""
			},
			wantErr: "tool.path is required",
		},
		{
			name: "unparseable timeout",
			modify: func(c *Config) {
				c.Tool.CommandTimeout = "soon"
			},
			wantErr: "tool.command_timeout",
		},
		{
			name: "extension without dot",
			modify: func(c *Config) {
				c.Scan.Extensions = []string{"jpg"}
			},
			wantErr: "must start with a dot",
		},
		{
			name: "invalid logging level",
			modify: func(c *Config) {
				c.Logging.Level = "loud"
			},
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestToolTimeouts(t *testing.T) {
	cfg := Default()

	command, shutdown, err := cfg.ToolTimeouts()
	if err != nil {
		t.Fatalf("ToolTimeouts failed: %v", err)
	}
	if command.Seconds() != 30 || shutdown.Seconds() != 5 {
		t.Errorf("timeouts = %v, %v; want 30s, 5s", command, shutdown)
	}

	cfg.Tool.ShutdownTimeout = "whenever"
	if _, _, err := cfg.ToolTimeouts(); err == nil {
		t.Error("ToolTimeouts should fail on an unparseable duration")
	}
}

func TestLogLevel(t *testing.T) {
	cfg := Default()

	cfg.Logging.Level = "warn"
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("LogLevel() = %v, want warn", cfg.LogLevel())
	}
	cfg.Logging.Level = "loud"
	if cfg.LogLevel() != slog.LevelInfo {
		t.Errorf("unrecognized level should fall back to info, got %v", cfg.LogLevel())
	}
}

func TestToolPath(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		cfg := Default()
		cfg.Tool.Path = filepath.Join(t.TempDir(), "missing-tool")

		if _, err := cfg.ToolPath(); err == nil {
			t.Error("ToolPath should fail for a missing explicit path")
		}
	})

	t.Run("explicit path returned as given", func(t *testing.T) {
		binary := filepath.Join(t.TempDir(), "exiftool")
		if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}

		cfg := Default()
		cfg.Tool.Path = binary

		path, err := cfg.ToolPath()
		if err != nil {
			t.Fatalf("ToolPath failed: %v", err)
		}
		if path != binary {
			t.Errorf("ToolPath() = %s, want %s", path, binary)
		}
	})

	t.Run("bare name resolves through PATH", func(t *testing.T) {
		cfg := Default()
		cfg.Tool.Path = "sh"

		path, err := cfg.ToolPath()
		if err != nil {
			t.Fatalf("ToolPath failed: %v", err)
		}
		if path == "" || !filepath.IsAbs(path) {
			t.Errorf("ToolPath() = %q, want an absolute path", path)
		}
	})
}

func TestEnsurePaths(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Directory = filepath.Join(t.TempDir(), "darkroom", "snapshots")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	info, err := os.Stat(cfg.Snapshot.Directory)
	if err != nil {
		t.Fatalf("snapshot directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("snapshot path is not a directory")
	}
}
