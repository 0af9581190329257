// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 keyed digests for attribute blobs
// and capture files.
//
// Digests are domain-separated: the same bytes hashed as a blob input
// and as a file produce unrelated digests. The API surface is:
//
//   - [BlobDigest] -- identifies a decode input (constructor signature
//     plus blob bytes); used as the decode cache key and in JSON output
//   - [ContextDigest] -- identifies a type context (default module,
//     fallback policy, manifest digests); the spec cache fingerprint
//   - [HashFile] -- streams a file through the file-domain hash with
//     constant memory usage
//   - [FormatDigest], [ShortDigest], [ParseDigest] -- the canonical hex
//     form, the abbreviated form for tables, and parsing back
//
// This package has no dependencies on other attrspec packages.
package binhash
