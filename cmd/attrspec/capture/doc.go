// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture implements the "capture" and "cache" commands of the
// attrspec CLI.
//
// "capture pack" turns a hand-written YAML or JSONC source into a
// binary capture file (lib/capture). "capture list" prints its records.
// "capture decode" decodes every record with attrspec.DecodeAll, one
// batch per module, and keeps the results in the bbolt-backed spec
// cache (lib/speccache) keyed by blob digest. "cache stats" and "cache
// purge" inspect and clear that cache.
package capture
