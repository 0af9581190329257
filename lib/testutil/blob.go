// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/binary"

	"github.com/bureau-foundation/attrspec/lib/blob"
)

// Hex decodes a hex string that may contain spaces, newlines, and
// "|" separators. Panics on malformed input, since fixtures are
// compile-time constants.
//
//	data := testutil.Hex("01 00 | 07 00 00 00 | 00 00")
func Hex(text string) []byte {
	data, err := blob.ParseHex(text)
	if err != nil {
		panic("testutil.Hex: " + err.Error())
	}
	return data
}

// Concat joins byte slices into one fresh slice.
func Concat(parts ...[]byte) []byte {
	var out []byte
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

// SerString encodes s as a serialized string with a one-byte packed
// length. Panics if s is 128 bytes or longer.
func SerString(s string) []byte {
	if len(s) >= 0x80 {
		panic("testutil.SerString: string needs a multi-byte length")
	}
	return append([]byte{byte(len(s))}, s...)
}

// U16 encodes v little-endian.
func U16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

// U32 encodes v little-endian.
func U32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// I32 encodes v little-endian.
func I32(v int32) []byte {
	return U32(uint32(v))
}
