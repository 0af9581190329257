// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/attrspec/lib/blob"
)

// Sentinel errors for each way a blob can fail to decode. Every error
// returned by [Parse] is a *[DecodeError] whose chain matches exactly
// one of these (or [blob.ErrUnexpectedEnd] for truncation).
var (
	ErrMalformedProlog         = errors.New("invalid prolog")
	ErrUnknownTypeTag          = errors.New("expected a type tag")
	ErrUnresolvableTypeName    = errors.New("type not found")
	ErrUnsupportedArgumentType = errors.New("unsupported argument type")
	ErrTrailingData            = errors.New("trailing data after last named argument")
	ErrInvalidMemberKind       = errors.New("expected named argument kind (field 0x53 or property 0x54)")
	ErrMissingMemberName       = errors.New("named argument has a null member name")
	ErrNotAttribute            = errors.New("constructor does not belong to an attribute class")
)

// Stage names the part of the blob grammar being decoded when an error
// occurred.
type Stage string

const (
	StageProlog      Stage = "prolog"
	StageFixedArg    Stage = "fixed argument"
	StageNamedCount  Stage = "named argument count"
	StageNamedKind   Stage = "named argument kind"
	StageTypeTag     Stage = "type tag"
	StageMemberName  Stage = "member name"
	StageNamedValue  Stage = "named argument value"
	StageEndOfStream Stage = "end of blob"
)

// DecodeError reports where and why a blob failed to decode.
type DecodeError struct {
	// Stage is the grammar element being read.
	Stage Stage

	// Offset is the byte offset at which the failing read started.
	Offset int

	// Arg is the index of the positional argument being read, or -1.
	Arg int

	// Index is the index of the named argument being read, or -1.
	Index int

	// Err is the underlying cause. It matches one of the package
	// sentinels or blob.ErrUnexpectedEnd.
	Err error
}

func (e *DecodeError) Error() string {
	location := fmt.Sprintf("offset %d", e.Offset)
	if e.Arg >= 0 {
		location += fmt.Sprintf(", argument %d", e.Arg)
	}
	if e.Index >= 0 {
		location += fmt.Sprintf(", named argument %d", e.Index)
	}
	return fmt.Sprintf("decode %s at %s: %v", e.Stage, location, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// decodeError wraps err for stage. An error that is already a
// *DecodeError passes through unchanged so the innermost location
// wins. For truncation the offset of the failed read is used.
func decodeError(stage Stage, offset int, err error) error {
	var existing *DecodeError
	if errors.As(err, &existing) {
		return existing
	}
	var endError *blob.EndError
	if errors.As(err, &endError) {
		offset = endError.Offset
	}
	return &DecodeError{Stage: stage, Offset: offset, Arg: -1, Index: -1, Err: err}
}

// locate records the positional or named argument index on a
// *DecodeError that does not have one yet.
func locate(err error, arg, index int) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		if decodeErr.Arg < 0 {
			decodeErr.Arg = arg
		}
		if decodeErr.Index < 0 {
			decodeErr.Index = index
		}
	}
	return err
}
