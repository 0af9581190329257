// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"fmt"
	"math"

	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Marshal encodes spec as a custom attribute blob, the way a compiler
// would emit it. Type names written into the blob (enum tags and
// System.Type values) are assembly-qualified unless they live in the
// attribute's own module or the core library, so Parse with a context
// whose default module is the attribute's module reads them back.
func Marshal(spec *Spec) ([]byte, error) {
	encoder := &encoder{home: spec.Attribute().Module}
	writer := &encoder.writer
	writer.Write(Prolog[:])

	for i, param := range spec.constructor.Params {
		if err := encoder.writeValue(param, spec.args[i]); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
	}

	if len(spec.named) > math.MaxUint16 {
		return nil, fmt.Errorf("%d named arguments exceed the uint16 count", len(spec.named))
	}
	writer.Uint16(uint16(len(spec.named)))
	for i, argument := range spec.named {
		if err := encoder.writeNamed(argument); err != nil {
			return nil, fmt.Errorf("named argument %d (%s): %w", i, argument.Name, err)
		}
	}
	return writer.Bytes(), nil
}

type encoder struct {
	writer blob.Writer
	home   string
}

func (e *encoder) writeNamed(argument NamedArgument) error {
	if argument.Kind != Field && argument.Kind != Property {
		return fmt.Errorf("%w: %s", ErrInvalidMemberKind, argument.Kind)
	}
	if err := e.writer.WriteByte(byte(argument.Kind)); err != nil {
		return err
	}
	descriptor := argument.Type
	if descriptor.Kind == typesys.Invalid {
		var err error
		if descriptor, err = DescriptorOf(argument.Value.Type, e.home); err != nil {
			return err
		}
	}
	if err := e.writeTag(descriptor); err != nil {
		return err
	}
	if err := e.writer.SerString(argument.Name, true); err != nil {
		return err
	}
	slot, err := e.slotType(descriptor, argument.Value)
	if err != nil {
		return err
	}
	return e.writeValue(slot, argument.Value)
}

// slotType turns a named argument's descriptor into the static type
// the value is written against. Enum descriptors take the value's own
// enum type, which carries the underlying width.
func (e *encoder) slotType(descriptor Descriptor, value Value) (*typesys.Type, error) {
	switch descriptor.Kind {
	case typesys.Enum:
		if value.Type == nil || value.Type.Kind != typesys.Enum {
			return nil, fmt.Errorf("%w: enum slot %s holds %s", ErrUnsupportedArgumentType, descriptor.EnumName, value.Type)
		}
		return value.Type, nil
	case typesys.SZArray:
		if value.Type == nil || value.Type.Kind != typesys.SZArray {
			return nil, fmt.Errorf("%w: array slot %s holds %s", ErrUnsupportedArgumentType, descriptor, value.Type)
		}
		elemSlot, err := e.slotType(*descriptor.Elem, Value{Type: value.Type.Elem})
		if err != nil {
			return nil, err
		}
		return typesys.ArrayOf(elemSlot), nil
	}
	t, ok := typesys.Primitive(descriptor.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArgumentType, descriptor.Kind)
	}
	return t, nil
}

func (e *encoder) writeTag(descriptor Descriptor) error {
	switch descriptor.Kind {
	case typesys.Object:
		return e.writer.WriteByte(TagBoxed)
	case typesys.Enum:
		if err := e.writer.WriteByte(TagEnum); err != nil {
			return err
		}
		return e.writer.SerString(descriptor.EnumName, true)
	case typesys.SZArray:
		if err := e.writer.WriteByte(TagArray); err != nil {
			return err
		}
		return e.writeTag(*descriptor.Elem)
	}
	if descriptor.Kind.IsPrimitive() || descriptor.Kind == typesys.String {
		return e.writer.WriteByte(byte(descriptor.Kind))
	}
	return fmt.Errorf("%w: %s has no type tag", ErrUnsupportedArgumentType, descriptor.Kind)
}

// writeValue writes value into a slot of static type slot.
func (e *encoder) writeValue(slot *typesys.Type, value Value) error {
	if slot.Kind == typesys.Object {
		if value.Type == nil {
			return fmt.Errorf("%w: boxed value without a type", ErrUnsupportedArgumentType)
		}
		descriptor, err := DescriptorOf(value.Type, e.home)
		if err != nil {
			return err
		}
		if err := e.writeTag(descriptor); err != nil {
			return err
		}
		value.Boxed = false
		return e.writeValue(value.Type, value)
	}

	if value.Type == nil || !compatible(slot, value.Type) {
		return fmt.Errorf("%w: %s slot holds %s", ErrUnsupportedArgumentType, slot.Name, value.Type)
	}

	switch slot.Kind {
	case typesys.String:
		return e.writer.SerString(value.str, !value.null)

	case typesys.SystemType:
		if value.null || value.ref == nil {
			return e.writer.SerString("", false)
		}
		name := value.ref.Name
		if value.ref.Module != e.home {
			name = value.ref.QualifiedName()
		}
		return e.writer.SerString(name, true)

	case typesys.SZArray:
		if value.null {
			e.writer.Uint32(arrayNullCount)
			return nil
		}
		if uint64(len(value.elems)) >= arrayNullCount {
			return fmt.Errorf("array of %d elements is too long", len(value.elems))
		}
		e.writer.Uint32(uint32(len(value.elems)))
		for i, elem := range value.elems {
			if err := e.writeValue(slot.Elem, elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	switch slot.ValueKind().Size() {
	case 1:
		return e.writer.WriteByte(byte(value.bits))
	case 2:
		e.writer.Uint16(uint16(value.bits))
	case 4:
		e.writer.Uint32(uint32(value.bits))
	case 8:
		e.writer.Uint64(value.bits)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedArgumentType, slot.Name, slot.Kind)
	}
	return nil
}

// compatible reports whether a value of type actual can be written to
// a slot of type slot without a type tag.
func compatible(slot, actual *typesys.Type) bool {
	if slot.Kind == typesys.SZArray {
		if actual.Kind != typesys.SZArray {
			return false
		}
		return slot.Elem.Kind == typesys.Object || compatible(slot.Elem, actual.Elem)
	}
	return slot.Equal(actual)
}
