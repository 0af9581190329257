// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates a blob in memory. The zero value is ready to use.
// Writes never fail except where a value cannot be represented
// (packed lengths above [MaxPackedLength]).
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated blob. The slice aliases the writer's
// buffer until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// WriteByte appends one byte. It always returns nil and exists to
// satisfy io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// Write appends p. It always returns len(p), nil.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Bool appends 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// Uint16 appends v little-endian.
func (w *Writer) Uint16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

// Uint32 appends v little-endian.
func (w *Writer) Uint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// Uint64 appends v little-endian.
func (w *Writer) Uint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

// Float32 appends the IEEE 754 bits of v little-endian.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Float64 appends the IEEE 754 bits of v little-endian.
func (w *Writer) Float64(v float64) { w.Uint64(math.Float64bits(v)) }

// PackedLength appends n in the shortest packed-length tier.
func (w *Writer) PackedLength(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("packed length %d is negative", n)
	case n < 0x80:
		w.buf = append(w.buf, byte(n))
	case n < 0x4000:
		w.buf = append(w.buf, byte(0x80|n>>8), byte(n))
	case n <= MaxPackedLength:
		w.buf = append(w.buf, byte(0xC0|n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return fmt.Errorf("packed length %d exceeds maximum %d", n, MaxPackedLength)
	}
	return nil
}

// SerString appends a serialized string. When present is false the
// null marker is written and value is ignored.
func (w *Writer) SerString(value string, present bool) error {
	if !present {
		w.buf = append(w.buf, NullMarker)
		return nil
	}
	if err := w.PackedLength(len(value)); err != nil {
		return err
	}
	w.buf = append(w.buf, value...)
	return nil
}
