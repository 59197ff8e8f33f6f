// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
)

// walkCommands recursively visits every command in the tree,
// calling visit for each node with the accumulated command path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}

// findCommand walks the tree from the root following the given name
// path, failing the test if any segment is missing.
func findCommand(t *testing.T, path ...string) *cli.Command {
	t.Helper()
	command := Root()
	for _, name := range path {
		var next *cli.Command
		for _, sub := range command.Subcommands {
			if sub.Name == name {
				next = sub
				break
			}
		}
		if next == nil {
			t.Fatalf("command %q not found under %q", name, command.Name)
		}
		command = next
	}
	return command
}

func TestRootCommandTree(t *testing.T) {
	root := Root()
	if root.Name != "darkroom" {
		t.Errorf("root command name = %q, want darkroom", root.Name)
	}

	names := make(map[string]bool)
	for _, sub := range root.Subcommands {
		names[sub.Name] = true
	}
	for _, want := range []string{"extract", "xmp", "scan", "sync", "remove", "snapshot", "serve", "version"} {
		if !names[want] {
			t.Errorf("root is missing the %q command", want)
		}
	}
	if len(root.Subcommands) != 8 {
		t.Errorf("root has %d subcommands, want 8", len(root.Subcommands))
	}

	for _, want := range []string{"write", "inspect", "verify", "restore"} {
		findCommand(t, "snapshot", want)
	}
}

// Every command below the root needs a one-line summary: the help
// renderer prints it in the Commands block, and the suggestion path
// points at it.
func TestEveryCommandHasSummary(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		if len(path) == 1 {
			return
		}
		if command.Summary == "" {
			t.Errorf("%s: missing Summary", strings.Join(path, " "))
		}
	})
}

func TestSubcommandNamesUnique(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", strings.Join(path, " "), sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

// Flag tags live on per-command params structs, so a renamed field
// silently renames its flag. Pin the externally visible names here.
func TestCommandFlags(t *testing.T) {
	tests := []struct {
		path  []string
		flags []string
	}{
		{[]string{"extract"}, []string{"format", "tool", "config"}},
		{[]string{"remove"}, []string{"tags", "all", "tool", "config"}},
		{[]string{"scan"}, []string{"extensions", "json", "tool", "config"}},
		{[]string{"sync"}, []string{"rules", "args-file", "extensions", "recursive", "verbose", "format"}},
		{[]string{"xmp"}, []string{"recursive", "save", "format", "verbose"}},
		{[]string{"snapshot", "write"}, []string{"output", "extensions", "recursive", "json"}},
		{[]string{"snapshot", "inspect"}, []string{"diag", "json"}},
		{[]string{"snapshot", "verify"}, []string{"json"}},
		{[]string{"snapshot", "restore"}, []string{"json", "tool", "config"}},
		{[]string{"serve"}, []string{"address", "tool", "config"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.path, " "), func(t *testing.T) {
			command := findCommand(t, tt.path...)
			if command.Flags == nil {
				t.Fatal("command defines no flags")
			}
			flagSet := command.Flags()
			for _, name := range tt.flags {
				if flagSet.Lookup(name) == nil {
					t.Errorf("missing flag --%s", name)
				}
			}
		})
	}
}

func TestRootSuggestsCommand(t *testing.T) {
	err := Root().Execute([]string{"extarct"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "extract"`) {
		t.Errorf("Execute(extarct) = %v, want extract suggestion", err)
	}
}

func TestVersionCommand(t *testing.T) {
	if err := Root().Execute([]string{"version"}); err != nil {
		t.Errorf("version command failed: %v", err)
	}
}
