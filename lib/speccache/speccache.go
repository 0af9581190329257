// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package speccache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/codec"
)

// FormatVersion is the layout version of stored documents. A database
// written with a different version is emptied on open.
const FormatVersion = 1

var (
	documentsBucket = []byte("documents")
	metaBucket      = []byte("meta")
	versionKey      = []byte("format_version")
	fingerprintKey  = []byte("fingerprint")
)

// Cache stores decoded documents keyed by blob digest. It is safe for
// concurrent use: bbolt serializes writers and lets readers proceed in
// parallel.
type Cache struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// Stats summarizes a cache.
type Stats struct {
	Entries int `json:"entries"`
	Bytes   int `json:"bytes"`
}

// Options configures [Open].
type Options struct {
	// Fingerprint identifies the type context documents were decoded
	// against. Opening with a fingerprint different from the stored one
	// empties the cache. Empty disables the check.
	Fingerprint string

	// Logger receives invalidation notices. Nil discards them.
	Logger *slog.Logger
}

// Open opens or creates the cache database at path. Another process
// holding the database blocks Open for at most one second.
func Open(path string, options Options) (*Cache, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening spec cache %s: %w", path, err)
	}

	cache := &Cache{db: db, logger: logger.With("cache", path)}
	if err := cache.initialize(options.Fingerprint); err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *Cache) initialize(fingerprint string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return fmt.Errorf("creating meta bucket: %w", err)
		}

		stale := false
		if stored := meta.Get(versionKey); stored != nil && decodeVersion(stored) != FormatVersion {
			c.logger.Info("spec cache format changed, discarding entries",
				"stored_version", decodeVersion(stored),
				"version", FormatVersion,
			)
			stale = true
		}
		if stored := meta.Get(fingerprintKey); fingerprint != "" && stored != nil && string(stored) != fingerprint {
			c.logger.Info("type context changed, discarding cached documents",
				"stored_fingerprint", string(stored),
				"fingerprint", fingerprint,
			)
			stale = true
		}
		if stale {
			if err := tx.DeleteBucket(documentsBucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("dropping documents: %w", err)
			}
		}

		if err := meta.Put(versionKey, encodeVersion(FormatVersion)); err != nil {
			return fmt.Errorf("writing format version: %w", err)
		}
		if fingerprint != "" {
			if err := meta.Put(fingerprintKey, []byte(fingerprint)); err != nil {
				return fmt.Errorf("writing fingerprint: %w", err)
			}
		}

		if _, err := tx.CreateBucketIfNotExists(documentsBucket); err != nil {
			return fmt.Errorf("creating documents bucket: %w", err)
		}
		return nil
	})
}

// Get returns the document stored for digest. The boolean is false on
// a miss. An entry that fails to decode is reported as an error rather
// than a miss.
func (c *Cache) Get(digest binhash.Digest) (attrspec.Document, bool, error) {
	var document attrspec.Document
	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(documentsBucket).Get(digest[:])
		if data == nil {
			return nil
		}
		found = true
		// data is only valid inside the transaction; Unmarshal copies
		// what it keeps.
		if err := codec.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("decoding cached document %s: %w", binhash.ShortDigest(digest), err)
		}
		return nil
	})
	if err != nil {
		return attrspec.Document{}, false, err
	}
	return document, found, nil
}

// Put stores document under digest, replacing any previous entry.
func (c *Cache) Put(digest binhash.Digest, document attrspec.Document) error {
	data, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", binhash.ShortDigest(digest), err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Put(digest[:], data)
	})
}

// PutAll stores several documents in one transaction.
func (c *Cache) PutAll(documents map[binhash.Digest]attrspec.Document) error {
	encoded := make(map[binhash.Digest][]byte, len(documents))
	for digest, document := range documents {
		data, err := codec.Marshal(document)
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", binhash.ShortDigest(digest), err)
		}
		encoded[digest] = data
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(documentsBucket)
		for digest, data := range encoded {
			if err := bucket.Put(digest[:], data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the entry for digest. Deleting a missing entry is not
// an error.
func (c *Cache) Delete(digest binhash.Digest) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Delete(digest[:])
	})
}

// Purge removes every entry.
func (c *Cache) Purge() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(documentsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(documentsBucket)
		return err
	})
}

// Stats counts entries and their encoded size.
func (c *Cache) Stats() (Stats, error) {
	var stats Stats
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).ForEach(func(_, value []byte) error {
			stats.Entries++
			stats.Bytes += len(value)
			return nil
		})
	})
	return stats, err
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func encodeVersion(version uint64) []byte {
	data, _ := codec.Marshal(version)
	return data
}

func decodeVersion(data []byte) uint64 {
	var version uint64
	if err := codec.Unmarshal(data, &version); err != nil {
		return 0
	}
	return version
}
