// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
)

// TestCommandTreeShape walks the full production command tree and
// checks that every command is reachable and documented: each child
// has a summary, each leaf has a Run function, and sibling names are
// unique.
func TestCommandTreeShape(t *testing.T) {
	root := rootCommand()
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if len(command.Subcommands) == 0 && command.Run == nil {
			t.Errorf("%s: leaf command without Run", name)
		}
		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

// TestCommandFlagsBuild constructs every flag set, which panics on a
// malformed parameter struct.
func TestCommandFlagsBuild(t *testing.T) {
	walkCommands(rootCommand(), nil, func(command *cli.Command, path []string) {
		if command.Flags == nil {
			return
		}
		flagSet := command.Flags()
		if strings.Contains(strings.Join(path, " "), "decode") && flagSet.Lookup("types") == nil {
			t.Errorf("%s: decoding command without --types", strings.Join(path, " "))
		}
	})
}

func TestRootCommandNames(t *testing.T) {
	want := []string{"decode", "diag", "validate", "encode", "capture", "cache", "version"}
	root := rootCommand()
	if len(root.Subcommands) != len(want) {
		t.Fatalf("root has %d subcommands, want %d", len(root.Subcommands), len(want))
	}
	for index, name := range want {
		if root.Subcommands[index].Name != name {
			t.Errorf("subcommand %d = %q, want %q", index, root.Subcommands[index].Name, name)
		}
	}
}

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
