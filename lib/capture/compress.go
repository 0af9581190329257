// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to a capture payload.
// The values are stored in the file header; changing them breaks
// existing capture files.
type Compression uint8

const (
	// CompressionNone stores the record sequence as is.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression. Fast to write and read;
	// the default for `attrspec capture pack`.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level. Blobs from one
	// assembly repeat type names heavily, so this usually wins on size.
	CompressionZstd Compression = 2
)

// String returns the human-readable name of a compression tag.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as produced by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, or zstd)", name)
	}
}

// Set parses name into c, so a Compression can be bound as a
// command-line flag value.
func (c *Compression) Set(name string) error {
	parsed, err := ParseCompression(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Type names the flag value type in help output.
func (c *Compression) Type() string { return "compression" }

// errIncompressible is returned when compressed output is not smaller
// than its input. Writers fall back to CompressionNone.
var errIncompressible = errors.New("payload is incompressible")

// codecs holds the algorithm for each compression tag. decompress
// receives the header's payload size as an allocation hint; the
// caller checks the result length.
var codecs = map[Compression]struct {
	compress   func(data []byte) ([]byte, error)
	decompress func(compressed []byte, size int) ([]byte, error)
}{
	CompressionNone: {
		compress:   func(data []byte) ([]byte, error) { return data, nil },
		decompress: func(compressed []byte, _ int) ([]byte, error) { return compressed, nil },
	},
	CompressionLZ4:  {compress: compressLZ4, decompress: decompressLZ4},
	CompressionZstd: {compress: compressZstd, decompress: decompressZstd},
}

func compress(data []byte, tag Compression) ([]byte, error) {
	codec, ok := codecs[tag]
	if !ok {
		return nil, fmt.Errorf("unsupported compression %s", tag)
	}
	compressed, err := codec.compress(data)
	if err != nil {
		return nil, err
	}
	if tag != CompressionNone && len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

// decompress reverses compress. size comes from the file header and
// must match the result exactly.
func decompress(compressed []byte, tag Compression, size int) ([]byte, error) {
	codec, ok := codecs[tag]
	if !ok {
		return nil, fmt.Errorf("unsupported compression %s", tag)
	}
	payload, err := codec.decompress(compressed, size)
	if err != nil {
		return nil, fmt.Errorf("%s payload: %w", tag, err)
	}
	if len(payload) != size {
		return nil, fmt.Errorf("%s payload: %d bytes, header declares %d", tag, len(payload), size)
	}
	return payload, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, err
	}
	// Zero means lz4 found nothing to compress.
	if written == 0 {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, err
	}
	return destination[:read], nil
}

// The zstd encoder and decoder are built on first use and shared:
// EncodeAll and DecodeAll are safe for concurrent callers.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	})
)

func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstdEncoder()
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(data, nil), nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	decoder, err := zstdDecoder()
	if err != nil {
		return nil, err
	}
	return decoder.DecodeAll(compressed, make([]byte, 0, size))
}
