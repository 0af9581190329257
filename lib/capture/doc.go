// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture reads and writes capture files: collections of
// custom attribute blobs together with the constructor signature and
// module each one is decoded against.
//
// A capture file is a fixed header followed by a payload:
//
//	offset  size  field
//	0       4     magic "ATCP"
//	4       1     format version (1)
//	5       1     compression (0 none, 1 lz4 block, 2 zstd)
//	6       4     record count, big-endian
//	10      8     uncompressed payload size, big-endian
//	18      ...   payload
//
// The uncompressed payload is a CBOR sequence (RFC 8742) of [Record]
// values in Core Deterministic Encoding, so the same records always
// produce the same file. Writers fall back to no compression when the
// chosen algorithm does not shrink the payload.
//
// Captures are usually packed from a hand-written [Source] (YAML or
// JSONC with hex blobs) by `attrspec capture pack` and decoded in bulk
// by `attrspec capture decode`.
package capture
