// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"fmt"

	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Tag bytes used by the named-argument and boxed-value grammar
// (ECMA-335 II.23.3). Scalar kinds use their element-type code
// (0x02-0x0E) directly. System.Type (0x50) has no tag: a Type value can
// only sit in a constructor parameter declared as Type.
const (
	TagArray    byte = 0x1D
	TagBoxed    byte = 0x51
	TagField    byte = 0x53
	TagProperty byte = 0x54
	TagEnum     byte = 0x55
)

// maxTagDepth bounds the nesting of array type tags.
const maxTagDepth = 32

// Descriptor is a type as written in a type tag: a scalar kind, a
// string, a boxed object, an enum known only by name, or
// an array of another descriptor. Unlike a [typesys.Type], an enum
// descriptor has not been resolved yet, so its storage width is
// unknown until the resolver is consulted.
type Descriptor struct {
	// Kind is a scalar kind, String, Object, Enum, or SZArray.
	Kind typesys.Kind

	// EnumName is the serialized (possibly assembly-qualified) enum
	// type name. Only set when Kind is Enum.
	EnumName string

	// Elem is the element descriptor. Only set when Kind is SZArray.
	Elem *Descriptor
}

// String renders the descriptor using runtime type names.
func (d Descriptor) String() string {
	switch d.Kind {
	case typesys.Enum:
		return d.EnumName
	case typesys.SZArray:
		if d.Elem == nil {
			return "<invalid>[]"
		}
		return d.Elem.String() + "[]"
	}
	if t, ok := typesys.Primitive(d.Kind); ok {
		return t.Name
	}
	return d.Kind.String()
}

// DescriptorOf converts a resolved type to the descriptor a compiler
// would emit for it. Enum names outside home (the module declaring the
// attribute) and the core library are assembly-qualified.
func DescriptorOf(t *typesys.Type, home string) (Descriptor, error) {
	switch t.Kind {
	case typesys.Enum:
		name := t.Name
		if t.Module != home {
			name = t.QualifiedName()
		}
		return Descriptor{Kind: typesys.Enum, EnumName: name}, nil
	case typesys.SZArray:
		elem, err := DescriptorOf(t.Elem, home)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Kind: typesys.SZArray, Elem: &elem}, nil
	case typesys.String, typesys.Object:
		return Descriptor{Kind: t.Kind}, nil
	}
	if t.Kind.IsPrimitive() {
		return Descriptor{Kind: t.Kind}, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %s (%s) has no type tag", ErrUnsupportedArgumentType, t.Name, t.Kind)
}

// ParseDescriptor resolves a type name (as produced by
// [Descriptor.String]) and converts it to a descriptor.
func ParseDescriptor(name string, resolver typesys.Resolver, home string) (Descriptor, error) {
	t, err := resolver.Resolve(name)
	if err != nil {
		return Descriptor{}, err
	}
	return DescriptorOf(t, home)
}

// Resolve turns the descriptor into a concrete type. Enum names are
// looked up through resolver, which is how the reader learns an
// enum's storage width.
func (d Descriptor) Resolve(resolver typesys.Resolver) (*typesys.Type, error) {
	switch d.Kind {
	case typesys.Enum:
		t, err := resolver.Resolve(d.EnumName)
		if err != nil {
			return nil, fmt.Errorf("%w: enum %s: %w", ErrUnresolvableTypeName, d.EnumName, err)
		}
		if t.Kind != typesys.Enum {
			return nil, fmt.Errorf("%w: %s is a %s, not an enum", ErrUnsupportedArgumentType, t.Name, t.Kind)
		}
		return t, nil
	case typesys.SZArray:
		if d.Elem == nil {
			return nil, fmt.Errorf("%w: array without element type", ErrUnsupportedArgumentType)
		}
		elem, err := d.Elem.Resolve(resolver)
		if err != nil {
			return nil, err
		}
		return typesys.ArrayOf(elem), nil
	}
	if t, ok := typesys.Primitive(d.Kind); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedArgumentType, d.Kind)
}

// readTypeTag decodes one FieldOrPropType, recursing for arrays.
func (d *decoder) readTypeTag(depth int) (Descriptor, error) {
	start := d.cursor.Offset()
	tag, err := d.cursor.ReadByte()
	if err != nil {
		return Descriptor{}, decodeError(StageTypeTag, start, err)
	}

	var descriptor Descriptor
	switch {
	case tag >= byte(typesys.Boolean) && tag <= byte(typesys.String):
		descriptor = Descriptor{Kind: typesys.Kind(tag)}

	case tag == TagBoxed:
		descriptor = Descriptor{Kind: typesys.Object}

	case tag == TagEnum:
		name, present, err := d.cursor.ReadSerString()
		if err != nil {
			return Descriptor{}, decodeError(StageTypeTag, d.cursor.Offset(), err)
		}
		if !present || name == "" {
			return Descriptor{}, decodeError(StageTypeTag, start,
				fmt.Errorf("%w: enum tag without a type name", ErrUnresolvableTypeName))
		}
		descriptor = Descriptor{Kind: typesys.Enum, EnumName: name}

	case tag == TagArray:
		if depth >= maxTagDepth {
			return Descriptor{}, decodeError(StageTypeTag, start,
				fmt.Errorf("%w: array tags nested deeper than %d", ErrUnknownTypeTag, maxTagDepth))
		}
		d.span(start, "array of", depth)
		elem, err := d.readTypeTag(depth + 1)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Kind: typesys.SZArray, Elem: &elem}, nil

	default:
		return Descriptor{}, decodeError(StageTypeTag, start,
			fmt.Errorf("%w: got %#02x", ErrUnknownTypeTag, tag))
	}

	d.span(start, "tag "+descriptor.String(), depth)
	return descriptor, nil
}
