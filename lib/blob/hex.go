// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ParseHex decodes a hex dump into blob bytes. Whitespace and "|"
// group separators are ignored, as is a leading "0x", so dumps copied
// from a disassembler or written by [FormatHex] parse unchanged:
//
//	01 00 | 07 00 00 00 | 00 00
func ParseHex(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '|' {
			return -1
		}
		return r
	}, text)

	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}

// FormatHex renders data as space-separated byte pairs.
func FormatHex(data []byte) string {
	var builder strings.Builder
	builder.Grow(len(data) * 3)
	for i, b := range data {
		if i > 0 {
			builder.WriteByte(' ')
		}
		fmt.Fprintf(&builder, "%02x", b)
	}
	return builder.String()
}
