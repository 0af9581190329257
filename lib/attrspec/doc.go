// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package attrspec decodes and encodes ECMA-335 custom attribute blobs.
//
// A custom attribute instantiation is stored in metadata as a
// reference to the attribute's constructor plus a binary blob holding
// the constructor arguments and any field or property assignments
// (ECMA-335 II.23.3):
//
//	prolog       01 00
//	fixed args   one per constructor parameter, typed by the parameter
//	named count  uint16
//	named args   kind (53 field, 54 property), type tag, name, value
//
// [Parse] reads a blob against a [typesys.Constructor] and returns an
// immutable [Spec]. Positional arguments are read by their declared
// types. Named arguments and boxed (object-typed) values carry a type
// tag that is decoded into a [Descriptor] first; enum tags name their
// type by string, so the resolver is consulted for the storage width
// before the value is read. Parse consumes the blob exactly: a missing
// byte anywhere is [blob.ErrUnexpectedEnd] and a surplus byte is
// [ErrTrailingData]. Every failure is a *[DecodeError] carrying the
// stage, the byte offset, and the argument index.
//
// Null is preserved as distinct from empty for strings (FF vs 00),
// System.Type references, and arrays (count FFFFFFFF vs 0).
//
// [Marshal] is the inverse of Parse. [NewDocument] and [Document.Spec]
// convert between a spec and its JSON/CBOR form. [DecodeAll] decodes
// many blobs concurrently against one shared resolver.
//
// The package never constructs attribute instances; see
// lib/materialize for that.
package attrspec
