// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inspect implements the single-blob commands of the attrspec
// CLI: decode, diag, validate, and encode.
//
// Each command reads one blob (or, for encode, one JSON document) from
// a trailing file argument or stdin, resolves --ctor against the type
// context built by [cli.TypeOptions], and writes to stdout. The work
// is done by functions that take an io.Writer and a resolver so they
// can be tested without files or configuration.
package inspect
