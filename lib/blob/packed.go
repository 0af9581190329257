// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"strings"
	"unicode/utf8"
)

// NullMarker is the single byte that stands in for a packed length to
// mean "no value": a null string or a null blob.
const NullMarker = 0xFF

// MaxPackedLength is the largest value the four-byte tier can carry
// with a first byte in 0xC0-0xDF.
const MaxPackedLength = 0x1FFFFFFF

// ReadPackedLength decodes one packed length. present is false when
// the length is the 0xFF no-value sentinel, in which case length is 0
// and only the sentinel byte has been consumed.
//
// Tiers, selected by the first byte b0:
//
//	b0 < 0x80          length = b0
//	0x80 <= b0 < 0xC0  length = (b0-0x80)<<8 | b1
//	0xC0 <= b0 < 0xFF  length = (b0-0xC0)<<24 | b1<<16 | b2<<8 | b3
//
// If the continuation bytes are missing the cursor is left at the
// first byte.
func (c *Cursor) ReadPackedLength() (length int, present bool, err error) {
	start := c.offset
	head, err := c.ReadByte()
	if err != nil {
		return 0, false, err
	}

	switch {
	case head == NullMarker:
		return 0, false, nil

	case head < 0x80:
		return int(head), true, nil

	case head < 0xC0:
		low, err := c.ReadByte()
		if err != nil {
			c.offset = start
			return 0, false, &EndError{Offset: start, Need: 2, Have: len(c.data) - start}
		}
		return int(head-0x80)<<8 | int(low), true, nil

	default:
		rest, err := c.Next(3)
		if err != nil {
			c.offset = start
			return 0, false, &EndError{Offset: start, Need: 4, Have: len(c.data) - start}
		}
		return int(head-0xC0)<<24 | int(rest[0])<<16 | int(rest[1])<<8 | int(rest[2]), true, nil
	}
}

// ReadSerString decodes a serialized string. present is false for a
// null string (a lone 0xFF). An empty, non-null string is a zero
// length with no payload. Byte sequences that are not valid UTF-8 are
// decoded with U+FFFD replacing each invalid run.
func (c *Cursor) ReadSerString() (value string, present bool, err error) {
	head, err := c.Peek()
	if err != nil {
		return "", false, err
	}
	if head == NullMarker {
		c.offset++
		return "", false, nil
	}

	start := c.offset
	length, present, err := c.ReadPackedLength()
	if err != nil {
		return "", false, err
	}
	if !present {
		return "", false, nil
	}
	if length == 0 {
		return "", true, nil
	}

	header := c.offset - start
	raw, err := c.Next(length)
	if err != nil {
		c.offset = start
		return "", false, &EndError{Offset: start, Need: header + length, Have: len(c.data) - start}
	}
	if !utf8.Valid(raw) {
		return replaceInvalid(raw), true, nil
	}
	return string(raw), true, nil
}

// replaceInvalid decodes raw as UTF-8, substituting one U+FFFD for
// each maximal subpart of an ill-formed sequence (Unicode 16.0 §3.9,
// "U+FFFD Substitution of Maximal Subparts"). A truncated three-byte
// sequence becomes one replacement character; two stray bytes become
// two.
func replaceInvalid(raw []byte) string {
	var out strings.Builder
	out.Grow(len(raw) + 2)
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r != utf8.RuneError || size > 1 {
			out.Write(raw[:size])
			raw = raw[size:]
			continue
		}
		out.WriteRune(utf8.RuneError)
		raw = raw[maximalSubpart(raw):]
	}
	return out.String()
}

// maximalSubpart returns the length of the longest prefix of b that
// starts a well-formed sequence, at least 1. b must not start with a
// complete well-formed sequence.
func maximalSubpart(b []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	var continuations int
	switch lead := b[0]; {
	case lead >= 0xC2 && lead <= 0xDF:
		continuations = 1
	case lead == 0xE0:
		continuations, lo = 2, 0xA0
	case lead == 0xED:
		continuations, hi = 2, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		continuations = 2
	case lead == 0xF0:
		continuations, lo = 3, 0x90
	case lead == 0xF4:
		continuations, hi = 3, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		continuations = 3
	default:
		return 1
	}
	n := 1
	for n <= continuations && n < len(b) && b[n] >= lo && b[n] <= hi {
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
