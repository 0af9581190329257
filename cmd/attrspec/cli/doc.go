// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the attrspec CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/attrspec and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Parameter structs bind to flags through struct tags ([BindFlags],
// [FlagsFromParams]); embedding [JSONOutput] adds --json. [TypeOptions]
// is the shared flag group every decoding command embeds: it loads the
// configuration (lib/config) and builds the type context from manifests.
package cli
