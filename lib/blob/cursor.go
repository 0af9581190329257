// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnexpectedEnd is matched (via errors.Is) by every error returned
// when the blob holds fewer bytes than a field requires.
var ErrUnexpectedEnd = errors.New("unexpected end of blob")

// EndError describes a read that needed more bytes than remained.
type EndError struct {
	// Offset is the position at which the failed read started.
	Offset int
	// Need is the number of bytes the read required.
	Need int
	// Have is the number of bytes that were left.
	Have int
}

func (e *EndError) Error() string {
	return fmt.Sprintf("unexpected end of blob at offset %d: need %d bytes, %d remain", e.Offset, e.Need, e.Have)
}

// Unwrap lets errors.Is(err, ErrUnexpectedEnd) match.
func (e *EndError) Unwrap() error {
	return ErrUnexpectedEnd
}

// Cursor is a forward-only read position over a blob. A Cursor is
// owned by a single decode call and is not safe for concurrent use.
type Cursor struct {
	data   []byte
	offset int
}

// NewCursor returns a cursor positioned at the first byte of data. The
// cursor does not copy data; the caller must not modify it while the
// cursor is in use.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.offset }

// Len returns the total length of the blob.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.offset }

// Done reports whether every byte has been consumed.
func (c *Cursor) Done() bool { return c.offset == len(c.data) }

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if c.offset >= len(c.data) {
		return 0, c.endError(1)
	}
	return c.data[c.offset], nil
}

// ReadByte consumes and returns one byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.offset >= len(c.data) {
		return 0, c.endError(1)
	}
	b := c.data[c.offset]
	c.offset++
	return b, nil
}

// Next consumes exactly n bytes and returns them. The returned slice
// aliases the blob. On failure nothing is consumed.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d at offset %d", n, c.offset)
	}
	if c.Remaining() < n {
		return nil, c.endError(n)
	}
	start := c.offset
	c.offset += n
	return c.data[start:c.offset:c.offset], nil
}

// Bool reads one byte and reports whether it is non-zero.
func (c *Cursor) Bool() (bool, error) {
	b, err := c.ReadByte()
	return b != 0, err
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() (uint16, error) {
	raw, err := c.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	raw, err := c.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// Uint64 reads a little-endian uint64.
func (c *Cursor) Uint64() (uint64, error) {
	raw, err := c.Next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// Float32 reads a little-endian IEEE 754 single.
func (c *Cursor) Float32() (float32, error) {
	bits, err := c.Uint32()
	return math.Float32frombits(bits), err
}

// Float64 reads a little-endian IEEE 754 double.
func (c *Cursor) Float64() (float64, error) {
	bits, err := c.Uint64()
	return math.Float64frombits(bits), err
}

func (c *Cursor) endError(need int) error {
	return &EndError{Offset: c.offset, Need: need, Have: c.Remaining()}
}
