// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Attrspec is the command-line tool for ECMA-335 custom attribute
// blobs. It provides single-blob commands (decode, diag, validate,
// encode), capture file handling (capture pack, list, decode), and
// spec cache maintenance (cache stats, purge).
package main
