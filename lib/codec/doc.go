// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// attrspec uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: `attrspec decode --json`, the
//     document read by `attrspec encode`, and capture source files.
//   - CBOR for binary artifacts: capture file records, decoded
//     documents stored in the spec cache, and `attrspec decode --cbor`.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same document always produces identical bytes, so cached entries and
// capture files can be compared byte for byte.
//
// For buffer-oriented operations (cache values, single documents):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (capture record sequences):
//
//	encoder := codec.NewEncoder(writer)
//	decoder := codec.NewDecoder(reader)
//
// [DiagnoseSequence] renders a stored sequence without decoding it
// into Go types; `attrspec capture list --diag` uses it to show a
// capture file's records as written.
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is only ever serialized as CBOR (capture
//     records, cache envelopes).
//   - `json` tag: this type may be serialized as both JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats (attrspec.Document).
//
// Never use both `cbor` and `json` tags on the same field.
package codec
