// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package materialize turns a decoded [attrspec.Spec] into a Go value.
//
// Go has no runtime constructor lookup by signature, so each attribute
// type is described explicitly by an [AttributeType]: a constructor
// dispatcher and a member setter. [Table] implements AttributeType for
// a Go struct from registered constructors, fields, and properties;
// [Registry] maps attribute type names to their tables.
//
// [Build] applies a spec: it invokes the constructor that matches the
// spec's signature with the positional arguments, then assigns each
// named argument. A named argument that matches no member of its kind
// fails with [ErrMemberNotFound]; it is never ignored. Any failure
// aborts the whole build and is reported as a *[BuildError].
//
// The conversion helpers ([Scalar], [Enum], [String],
// [NullableString], [TypeRef], [Slice], [Object]) map decoded values
// to Go types and are meant to be used inside table registrations.
package materialize
