// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the darkroom CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/darkroom/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// [ToolOptions] is the shared flag group for commands that drive the
// metadata tool: --tool overrides the binary path and --config selects
// an explicit configuration file. Embedding it in a command's params
// struct (see [BindFlags]) registers both flags and gives the command
// a resolved [config.Config] plus a ready [exiftool.Config].
package cli
