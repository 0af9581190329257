// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/attrspec/lib/binhash"
)

// Record is one captured attribute application: the blob and what is
// needed to decode it again.
type Record struct {
	// Site names where the attribute was applied (a type or member
	// name). Informational only.
	Site string `cbor:"site,omitempty"`

	// Constructor is the constructor signature in the form
	// typesys.ParseConstructor accepts.
	Constructor string `cbor:"ctor"`

	// Module is the module the blob came from. Type names in the blob
	// that carry no assembly resolve against it. Empty means the
	// configured default module.
	Module string `cbor:"module,omitempty"`

	// Blob is the raw custom attribute value.
	Blob []byte `cbor:"blob"`
}

// Digest identifies the record's decode input.
func (r Record) Digest() binhash.Digest {
	return binhash.BlobDigest(r.Constructor, r.Blob)
}

// Label names the record in logs and listings: the site when present,
// the constructor otherwise.
func (r Record) Label() string {
	if r.Site != "" {
		return r.Site
	}
	return r.Constructor
}

// Validate reports structural problems that make a record undecodable
// regardless of the resolver.
func (r Record) Validate() error {
	if r.Constructor == "" {
		return errors.New("constructor signature is empty")
	}
	if len(r.Blob) < 2 {
		return fmt.Errorf("blob is %d bytes, shorter than the prolog", len(r.Blob))
	}
	return nil
}
