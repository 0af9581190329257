// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob provides the byte-level primitives of the ECMA-335
// custom attribute encoding: a forward-only [Cursor] over a blob and a
// [Writer] that produces the same layout.
//
// Three encodings live here because every higher layer depends on them
// and each one is easy to get subtly wrong:
//
//   - Fixed-width integers and floats, always little-endian.
//   - Packed lengths (ECMA-335 II.23.2): one, two, or four bytes with
//     the width selected by the high bits of the first byte and the
//     value stored big-endian within its tier. The lone byte 0xFF is a
//     "no value" sentinel, distinct from zero.
//   - Serialized strings: a packed length followed by that many UTF-8
//     bytes. 0xFF in place of the length means a null string, which is
//     never the same thing as an empty one.
//
// Every read that runs off the end of the blob fails with an error
// matching [ErrUnexpectedEnd] and carrying the offset where the read
// started. The cursor never skips or guesses: a failed read leaves the
// position where it was so the caller can report it precisely.
//
// This package depends on no other attrspec packages.
package blob
