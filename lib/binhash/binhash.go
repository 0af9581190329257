// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed digest.
type Digest [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The byte values
// are the ASCII domain name zero-padded to 32 bytes, so keys are
// readable in hex dumps. Changing a key invalidates every stored
// digest in its domain.
type domainKey [32]byte

var (
	blobDomainKey = domainKey{
		'a', 't', 't', 'r', 's', 'p', 'e', 'c', '.', 'b', 'l', 'o', 'b',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	fileDomainKey = domainKey{
		'a', 't', 't', 'r', 's', 'p', 'e', 'c', '.', 'f', 'i', 'l', 'e',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	contextDomainKey = domainKey{
		'a', 't', 't', 'r', 's', 'p', 'e', 'c', '.', 'c', 'o', 'n', 't', 'e', 'x', 't',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// BlobDigest identifies one decode input: the constructor signature and
// the blob bytes. The same blob decoded against a different constructor
// is a different input (its fixed arguments are read differently), so
// both go into the digest. A zero byte separates them; signatures never
// contain one.
func BlobDigest(signature string, blob []byte) Digest {
	hasher := newHasher(blobDomainKey)
	hasher.Write([]byte(signature))
	hasher.Write([]byte{0})
	hasher.Write(blob)
	return sum(hasher)
}

// ContextDigest identifies a type context from its parts: the default
// module name, the fallback policy, and the file digest of every
// manifest, in order. Each part is length-prefixed so no two part
// lists hash alike.
func ContextDigest(parts ...string) Digest {
	hasher := newHasher(contextDomainKey)
	var length [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(length[:], uint64(len(part)))
		hasher.Write(length[:])
		hasher.Write([]byte(part))
	}
	return sum(hasher)
}

// HashFile computes the file-domain digest of the file at path. The
// file is streamed through the hash function (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := newHasher(fileDomainKey)
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return sum(hasher), nil
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format used in cache keys, capture
// listings, and JSON output.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ShortDigest returns the abbreviated form used in tables and log
// lines: "blob-" followed by the first 12 hex characters.
func ShortDigest(digest Digest) string {
	return "blob-" + hex.EncodeToString(digest[:6])
}

// ParseDigest parses a hex-encoded digest string. Returns an error if
// the string is not a valid 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// MarshalText encodes the digest as FormatDigest does, so digests read
// as hex in JSON and CBOR output.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(FormatDigest(d)), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func newHasher(key domainKey) *blake3.Hasher {
	// NewKeyed only fails for a key that is not 32 bytes, which
	// domainKey rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("binhash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

func sum(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}
