// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Darkroom.
//
// Configuration is loaded from a single file specified by either the
// DARKROOM_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search; when no file is named, the built-in defaults apply as
// they stand. This keeps configuration deterministic and auditable
// with no hidden overrides.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults differ only in
// logging: info level, JSON format.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Tool, Scan, Snapshot, Service, Logging
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.ToolPath] -- resolves the metadata tool binary
//
// This package depends on no other Darkroom packages.
package config
