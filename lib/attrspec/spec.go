// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"fmt"

	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Prolog is the two-byte header of every custom attribute blob.
var Prolog = [2]byte{0x01, 0x00}

// MemberKind says whether a named argument sets a field or a property.
// The values are the blob's kind bytes.
type MemberKind uint8

const (
	Field    MemberKind = MemberKind(TagField)
	Property MemberKind = MemberKind(TagProperty)
)

func (k MemberKind) String() string {
	switch k {
	case Field:
		return "field"
	case Property:
		return "property"
	}
	return fmt.Sprintf("member(%#02x)", uint8(k))
}

// ParseMemberKind parses "field" or "property".
func ParseMemberKind(name string) (MemberKind, error) {
	switch name {
	case "field":
		return Field, nil
	case "property":
		return Property, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMemberKind, name)
}

// NamedArgument is one field or property assignment.
type NamedArgument struct {
	Kind MemberKind
	Name string

	// Type is the member's declared type as written in the blob.
	Type Descriptor

	Value Value

	// Owner is the attribute type the member is looked up on.
	Owner *typesys.Type
}

// Spec is a fully decoded custom attribute: the constructor to call,
// its positional arguments, and the member assignments to apply after
// construction. A Spec is immutable; accessors return copies.
type Spec struct {
	constructor *typesys.Constructor
	args        []Value
	named       []NamedArgument
}

// NewSpec assembles a spec from already-decoded parts. The number of
// positional arguments must match the constructor's parameters.
func NewSpec(constructor *typesys.Constructor, args []Value, named []NamedArgument) (*Spec, error) {
	if err := checkConstructor(constructor); err != nil {
		return nil, err
	}
	if len(args) != len(constructor.Params) {
		return nil, fmt.Errorf("constructor %s takes %d arguments, got %d",
			constructor.Owner.Name, len(constructor.Params), len(args))
	}
	named = append([]NamedArgument(nil), named...)
	for i := range named {
		if named[i].Owner == nil {
			named[i].Owner = constructor.Owner
		}
	}
	return &Spec{
		constructor: constructor,
		args:        append([]Value(nil), args...),
		named:       named,
	}, nil
}

// Attribute returns the attribute type.
func (s *Spec) Attribute() *typesys.Type { return s.constructor.Owner }

// Constructor returns the constructor the blob was decoded against.
func (s *Spec) Constructor() *typesys.Constructor { return s.constructor }

// Args returns the positional arguments in declaration order.
func (s *Spec) Args() []Value { return append([]Value(nil), s.args...) }

// NamedArgs returns the named arguments in blob order.
func (s *Spec) NamedArgs() []NamedArgument { return append([]NamedArgument(nil), s.named...) }

// Option configures [Parse].
type Option func(*decoder)

// WithTrace calls fn for every element decoded, in blob order. Used
// to render annotated dumps of a blob.
func WithTrace(fn func(Span)) Option {
	return func(d *decoder) { d.trace = fn }
}

// Span is a byte range of the blob and what it decoded to.
type Span struct {
	Offset int
	Length int
	Label  string

	// Depth is the nesting level (array elements are one deeper than
	// their array).
	Depth int
}

// Parse decodes a custom attribute blob against constructor. Type
// names inside the blob (enum tags and System.Type values) are
// resolved with resolver.
//
// Parse consumes the whole blob: bytes after the last named argument
// are an error. Errors are *[DecodeError] values carrying the byte
// offset and, for named arguments, their index.
func Parse(constructor *typesys.Constructor, data []byte, resolver typesys.Resolver, options ...Option) (*Spec, error) {
	if err := checkConstructor(constructor); err != nil {
		return nil, err
	}
	d := &decoder{cursor: blob.NewCursor(data), resolver: resolver}
	for _, option := range options {
		option(d)
	}

	if err := d.readProlog(); err != nil {
		return nil, err
	}

	d.stage = StageFixedArg
	args := make([]Value, 0, len(constructor.Params))
	for i, param := range constructor.Params {
		value, err := d.readFixedArg(param, 0)
		if err != nil {
			return nil, locate(err, i, -1)
		}
		args = append(args, value)
	}

	d.stage = StageNamedCount
	start := d.cursor.Offset()
	count, err := d.cursor.Uint16()
	if err != nil {
		return nil, d.fail(start, err)
	}
	d.span(start, fmt.Sprintf("%d named", count), 0)

	named := make([]NamedArgument, 0, count)
	for i := range int(count) {
		argument, err := d.readNamedArg(constructor.Owner)
		if err != nil {
			return nil, locate(err, -1, i)
		}
		named = append(named, argument)
	}

	if !d.cursor.Done() {
		return nil, decodeError(StageEndOfStream, d.cursor.Offset(),
			fmt.Errorf("%w: %d bytes", ErrTrailingData, d.cursor.Remaining()))
	}

	return &Spec{constructor: constructor, args: args, named: named}, nil
}

func checkConstructor(constructor *typesys.Constructor) error {
	if constructor == nil || constructor.Owner == nil {
		return fmt.Errorf("%w: no constructor", ErrNotAttribute)
	}
	if constructor.Owner.Kind != typesys.Class {
		return fmt.Errorf("%w: %s is a %s", ErrNotAttribute, constructor.Owner.Name, constructor.Owner.Kind)
	}
	return nil
}

func (d *decoder) readProlog() error {
	d.stage = StageProlog
	prolog, err := d.cursor.Next(len(Prolog))
	if err != nil {
		return d.fail(0, err)
	}
	if prolog[0] != Prolog[0] || prolog[1] != Prolog[1] {
		return d.fail(0, fmt.Errorf("%w: got % x, want % x", ErrMalformedProlog, prolog, Prolog[:]))
	}
	d.span(0, "prolog", 0)
	return nil
}

func (d *decoder) readNamedArg(owner *typesys.Type) (NamedArgument, error) {
	d.stage = StageNamedKind
	start := d.cursor.Offset()
	kindByte, err := d.cursor.ReadByte()
	if err != nil {
		return NamedArgument{}, d.fail(start, err)
	}
	kind := MemberKind(kindByte)
	if kind != Field && kind != Property {
		return NamedArgument{}, d.fail(start, fmt.Errorf("%w: got %#02x", ErrInvalidMemberKind, kindByte))
	}
	d.span(start, kind.String(), 0)

	d.stage = StageTypeTag
	descriptor, err := d.readTypeTag(1)
	if err != nil {
		return NamedArgument{}, err
	}

	d.stage = StageMemberName
	start = d.cursor.Offset()
	name, present, err := d.cursor.ReadSerString()
	if err != nil {
		return NamedArgument{}, d.fail(start, err)
	}
	if !present {
		return NamedArgument{}, d.fail(start, ErrMissingMemberName)
	}
	d.span(start, "name "+name, 1)

	d.stage = StageNamedValue
	start = d.cursor.Offset()
	t, err := descriptor.Resolve(d.resolver)
	if err != nil {
		return NamedArgument{}, d.fail(start, err)
	}
	value, err := d.readFixedArg(t, 1)
	if err != nil {
		return NamedArgument{}, err
	}

	return NamedArgument{
		Kind:  kind,
		Name:  name,
		Type:  descriptor,
		Value: value,
		Owner: owner,
	}, nil
}
