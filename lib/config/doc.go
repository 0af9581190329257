// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for attrspec.
//
// Configuration is loaded from a single file specified by either the
// ATTRSPEC_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. Commands run without a config file use
// [Default].
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${ATTRSPEC_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values. Relative
// manifest paths resolve against the config file's directory.
//
// Key exports:
//
//   - [Config] -- master struct with Types, Decode, Cache, Log
//   - [Default] -- returns a Config with defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other attrspec packages.
package config
