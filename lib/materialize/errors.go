// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"errors"
	"fmt"
)

var (
	// ErrMemberNotFound means a named argument names a field or
	// property the attribute type does not have (for that kind).
	ErrMemberNotFound = errors.New("member not found")

	// ErrConstructorInvocation means no constructor matched the
	// spec's signature, or the matching constructor failed.
	ErrConstructorInvocation = errors.New("constructor invocation failed")

	// ErrMemberAssignment means a member exists but rejected the
	// decoded value.
	ErrMemberAssignment = errors.New("member assignment failed")

	// ErrNotRegistered means the registry has no entry for the
	// attribute type.
	ErrNotRegistered = errors.New("attribute type not registered")

	// ErrValueType means a decoded value has a different type than
	// the Go target it is converted to.
	ErrValueType = errors.New("value type mismatch")
)

// BuildError reports which step of materializing an attribute failed.
type BuildError struct {
	// Attribute is the attribute type's name.
	Attribute string

	// Member is the named argument being applied, or "" when the
	// constructor failed.
	Member string

	// Index is the position of that named argument in the spec, or
	// -1 when the constructor failed.
	Index int

	Err error
}

func (e *BuildError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("build %s: %v", e.Attribute, e.Err)
	}
	return fmt.Sprintf("build %s: named argument %d (%s): %v", e.Attribute, e.Index, e.Member, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
