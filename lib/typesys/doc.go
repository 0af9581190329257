// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package typesys models the slice of a managed type system that the
// attribute decoder needs: type identities, module type tables, and
// name resolution.
//
// A [Type] is identified by kind, full name, and owning module. [Kind]
// values are the ECMA-335 element-type codes, so a type tag read from a
// blob converts to a kind without a lookup table.
//
// A [Context] is the resolution context handed to the decoder. It
// resolves names the way the runtime resolves them for attribute
// blobs:
//
//   - "Name, Assembly, Version=..." goes to the module named Assembly
//     (core assembly names map to the well-known table).
//   - An unqualified name is looked up in [WellKnown] first, then in
//     the default module (the module declaring the attribute).
//   - Anything else is [ErrTypeNotFound], unless a [Fallback] policy
//     other than [FallbackNone] is configured, in which case the extra
//     modules are searched.
//
// Modules come from code ([NewModule]) or from YAML/JSONC manifests
// ([LoadManifest]). A [Constructor] pairs an attribute type with its
// parameter types and is parsed from a textual signature with
// [ParseConstructor].
//
// Every exported value is immutable after construction and safe to
// share between goroutines.
package typesys
