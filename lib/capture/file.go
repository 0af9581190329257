// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/attrspec/lib/codec"
)

// Magic opens every capture file.
var Magic = [4]byte{'A', 'T', 'C', 'P'}

// Version is the file format version written by this package.
const Version = 1

// headerSize is magic, version, compression, record count (uint32),
// and uncompressed payload size (uint64).
const headerSize = 4 + 1 + 1 + 4 + 8

// maxPayloadSize bounds the uncompressed payload a header may declare,
// so a corrupt header cannot force a huge allocation.
const maxPayloadSize = 1 << 30

// ErrNotCapture is returned when input does not start with [Magic].
var ErrNotCapture = errors.New("not a capture file")

// Header is the fixed-size prefix of a capture file.
type Header struct {
	Version     uint8
	Compression Compression
	Records     int
	PayloadSize int
}

// Write encodes records as a capture file. When compression does not
// shrink the payload the file is written uncompressed; the returned
// header reports what was actually used.
func Write(w io.Writer, records []Record, compression Compression) (Header, error) {
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return Header{}, fmt.Errorf("record %d (%s): %w", i, record.Label(), err)
		}
	}

	var payload bytes.Buffer
	encoder := codec.NewEncoder(&payload)
	for i, record := range records {
		if err := encoder.Encode(record); err != nil {
			return Header{}, fmt.Errorf("encoding record %d: %w", i, err)
		}
	}

	body, err := compress(payload.Bytes(), compression)
	if errors.Is(err, errIncompressible) {
		compression = CompressionNone
		body = payload.Bytes()
	} else if err != nil {
		return Header{}, err
	}

	header := Header{
		Version:     Version,
		Compression: compression,
		Records:     len(records),
		PayloadSize: payload.Len(),
	}
	if _, err := w.Write(header.encode()); err != nil {
		return Header{}, fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return Header{}, fmt.Errorf("writing payload: %w", err)
	}
	return header, nil
}

// Read decodes a capture file.
func Read(r io.Reader) (Header, []Record, error) {
	header, payload, err := ReadPayload(r)
	if err != nil {
		return Header{}, nil, err
	}

	records := make([]Record, 0, header.Records)
	decoder := codec.NewDecoder(bytes.NewReader(payload))
	for {
		var record Record
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Header{}, nil, fmt.Errorf("decoding record %d: %w", len(records), err)
		}
		records = append(records, record)
	}
	if len(records) != header.Records {
		return Header{}, nil, fmt.Errorf("header declares %d records, payload holds %d", header.Records, len(records))
	}
	return header, records, nil
}

// ReadPayload reads the header and returns the decompressed payload:
// the raw CBOR sequence of records, not yet decoded.
func ReadPayload(r io.Reader) (Header, []byte, error) {
	prefix := make([]byte, headerSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, nil, fmt.Errorf("%w: %d-byte header truncated", ErrNotCapture, headerSize)
		}
		return Header{}, nil, fmt.Errorf("reading header: %w", err)
	}
	header, err := decodeHeader(prefix)
	if err != nil {
		return Header{}, nil, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return Header{}, nil, fmt.Errorf("reading payload: %w", err)
	}
	payload, err := decompress(body, header.Compression, header.PayloadSize)
	if err != nil {
		return Header{}, nil, err
	}
	return header, payload, nil
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []Record, compression Compression) (Header, error) {
	file, err := os.Create(path)
	if err != nil {
		return Header{}, fmt.Errorf("creating %s: %w", path, err)
	}
	header, err := Write(file, records, compression)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing %s: %w", path, closeErr)
	}
	if err != nil {
		os.Remove(path)
		return Header{}, err
	}
	return header, nil
}

// ReadFile reads the capture file at path.
func ReadFile(path string) (Header, []Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	header, records, err := Read(file)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return header, records, nil
}

func (h Header) encode() []byte {
	out := make([]byte, 0, headerSize)
	out = append(out, Magic[:]...)
	out = append(out, h.Version, byte(h.Compression))
	out = binary.BigEndian.AppendUint32(out, uint32(h.Records))
	out = binary.BigEndian.AppendUint64(out, uint64(h.PayloadSize))
	return out
}

func decodeHeader(data []byte) (Header, error) {
	if !bytes.Equal(data[:4], Magic[:]) {
		return Header{}, fmt.Errorf("%w: magic %x", ErrNotCapture, data[:4])
	}
	header := Header{
		Version:     data[4],
		Compression: Compression(data[5]),
		Records:     int(binary.BigEndian.Uint32(data[6:10])),
	}
	if header.Version != Version {
		return Header{}, fmt.Errorf("unsupported capture version %d (want %d)", header.Version, Version)
	}
	switch header.Compression {
	case CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return Header{}, fmt.Errorf("unsupported compression tag: %d", header.Compression)
	}
	payloadSize := binary.BigEndian.Uint64(data[10:18])
	if payloadSize > maxPayloadSize {
		return Header{}, fmt.Errorf("payload size %d exceeds the %d-byte limit", payloadSize, maxPayloadSize)
	}
	header.PayloadSize = int(payloadSize)
	return header, nil
}
