// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package speccache persists decoded attribute documents so repeated
// decodes of the same capture skip the decoder.
//
// Entries live in a bbolt database keyed by [binhash.BlobDigest] of
// the constructor signature and blob, with the [attrspec.Document]
// stored as deterministic CBOR (lib/codec). A document is a pure
// function of its key and the type context, so the only invalidation is
// wholesale: [Options.Fingerprint] names the context, and opening with
// a different one empties the cache.
package speccache
