// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"fmt"
	"math"

	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// arrayNullCount is the element count that encodes a null array.
const arrayNullCount = 0xFFFFFFFF

type decoder struct {
	cursor   *blob.Cursor
	resolver typesys.Resolver
	trace    func(Span)
	stage    Stage
}

func (d *decoder) span(start int, label string, depth int) {
	if d.trace == nil {
		return
	}
	d.trace(Span{
		Offset: start,
		Length: d.cursor.Offset() - start,
		Label:  label,
		Depth:  depth,
	})
}

func (d *decoder) fail(start int, err error) error {
	return decodeError(d.stage, start, err)
}

// readFixedArg reads one value whose static type is t. depth only
// affects trace output.
func (d *decoder) readFixedArg(t *typesys.Type, depth int) (Value, error) {
	start := d.cursor.Offset()
	value := Value{Type: t}

	switch t.Kind {
	case typesys.String:
		text, present, err := d.cursor.ReadSerString()
		if err != nil {
			return Value{}, d.fail(start, err)
		}
		value.str, value.null = text, !present
		d.span(start, value.String(), depth)
		return value, nil

	case typesys.SystemType:
		name, present, err := d.cursor.ReadSerString()
		if err != nil {
			return Value{}, d.fail(start, err)
		}
		if !present {
			value.null = true
			d.span(start, "null", depth)
			return value, nil
		}
		ref, err := d.resolver.Resolve(name)
		if err != nil {
			return Value{}, d.fail(start, fmt.Errorf("%w: %s: %w", ErrUnresolvableTypeName, name, err))
		}
		value.ref = ref
		d.span(start, value.String(), depth)
		return value, nil

	case typesys.Object:
		return d.readBoxed(depth)

	case typesys.SZArray:
		return d.readArray(t, depth)

	case typesys.Enum:
		if !t.Underlying.IsIntegral() {
			return Value{}, d.fail(start, fmt.Errorf("%w: enum %s has underlying kind %s",
				ErrUnsupportedArgumentType, t.Name, t.Underlying))
		}
	}

	kind := t.ValueKind()
	if !kind.IsPrimitive() {
		return Value{}, d.fail(start, fmt.Errorf("%w: %s (%s)", ErrUnsupportedArgumentType, t.Name, t.Kind))
	}
	bits, err := d.readScalar(kind)
	if err != nil {
		return Value{}, d.fail(start, err)
	}
	value.bits = bits
	d.span(start, value.String(), depth)
	return value, nil
}

// readScalar reads a fixed-width value and returns its bits, with
// signed kinds sign-extended.
func (d *decoder) readScalar(kind typesys.Kind) (uint64, error) {
	switch kind.Size() {
	case 1:
		b, err := d.cursor.ReadByte()
		return signExtend(kind, uint64(b)), err
	case 2:
		v, err := d.cursor.Uint16()
		return signExtend(kind, uint64(v)), err
	case 4:
		v, err := d.cursor.Uint32()
		return signExtend(kind, uint64(v)), err
	case 8:
		return d.cursor.Uint64()
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedArgumentType, kind)
}

// readBoxed reads a type tag followed by a value of the tagged type.
func (d *decoder) readBoxed(depth int) (Value, error) {
	start := d.cursor.Offset()
	descriptor, err := d.readTypeTag(depth)
	if err != nil {
		return Value{}, err
	}
	if descriptor.Kind == typesys.Object {
		return Value{}, d.fail(start, fmt.Errorf("%w: boxed value tagged as object", ErrUnsupportedArgumentType))
	}
	t, err := descriptor.Resolve(d.resolver)
	if err != nil {
		return Value{}, d.fail(start, err)
	}
	value, err := d.readFixedArg(t, depth)
	if err != nil {
		return Value{}, err
	}
	value.Boxed = true
	return value, nil
}

func (d *decoder) readArray(t *typesys.Type, depth int) (Value, error) {
	start := d.cursor.Offset()
	count, err := d.cursor.Uint32()
	if err != nil {
		return Value{}, d.fail(start, err)
	}
	if count == arrayNullCount {
		d.span(start, "null array", depth)
		return Value{Type: t, null: true}, nil
	}
	// Every element occupies at least one byte, so a count larger than
	// what is left can only be a truncated blob.
	if uint64(count) > uint64(d.cursor.Remaining()) {
		return Value{}, d.fail(start, &blob.EndError{
			Offset: d.cursor.Offset(),
			Need:   int(min(uint64(count), math.MaxInt32)),
			Have:   d.cursor.Remaining(),
		})
	}
	d.span(start, fmt.Sprintf("%s[%d]", t.Elem.Name, count), depth)

	elems := make([]Value, 0, count)
	for range count {
		elem, err := d.readFixedArg(t.Elem, depth+1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
	}
	return Value{Type: t, elems: elems}, nil
}
