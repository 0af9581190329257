// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the shared terminal styling for attrspec's
// human-readable output: annotated blob dumps, capture listings, and
// validation verdicts.
//
// [Theme] is the color palette. [NewStyles] binds it to one output
// through a lipgloss renderer, so the same code prints colors on a
// terminal and plain text into pipes, files, and test buffers.
package tui
