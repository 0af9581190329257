// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Value is one decoded argument. Type is the exact runtime type of the
// payload: the enum type for enum values, the array type for arrays,
// and for a boxed value the type discovered from its type tag.
//
// Scalars keep their raw bits. Signed kinds (and enums with a signed
// underlying kind) are stored sign-extended, so [Value.Int] is valid
// for both.
type Value struct {
	Type *typesys.Type

	// Boxed reports that the value was read from an object-typed slot
	// and its Type came from the blob rather than the declaration.
	Boxed bool

	null  bool
	bits  uint64
	str   string
	ref   *typesys.Type
	elems []Value
}

// Bool returns a System.Boolean value.
func Bool(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{Type: typesys.MustPrimitive(typesys.Boolean), bits: bits}
}

// Char returns a System.Char value holding one UTF-16 code unit.
func Char(v uint16) Value {
	return Value{Type: typesys.MustPrimitive(typesys.Char), bits: uint64(v)}
}

// Int returns a signed integer value of the given kind (SByte, Int16,
// Int32 or Int64). The value is truncated to the kind's width.
func Int(kind typesys.Kind, v int64) Value {
	return Value{Type: typesys.MustPrimitive(kind), bits: signExtend(kind, uint64(v))}
}

// Uint returns an unsigned integer value of the given kind (Byte,
// UInt16, UInt32 or UInt64). The value is truncated to the kind's
// width.
func Uint(kind typesys.Kind, v uint64) Value {
	return Value{Type: typesys.MustPrimitive(kind), bits: truncate(kind, v)}
}

// Float32 returns a System.Single value.
func Float32(v float32) Value {
	return Value{Type: typesys.MustPrimitive(typesys.Single), bits: uint64(math.Float32bits(v))}
}

// Float64 returns a System.Double value.
func Float64(v float64) Value {
	return Value{Type: typesys.MustPrimitive(typesys.Double), bits: math.Float64bits(v)}
}

// String returns a non-null System.String value.
func String(v string) Value {
	return Value{Type: typesys.MustPrimitive(typesys.String), str: v}
}

// NullString returns the null System.String.
func NullString() Value {
	return Value{Type: typesys.MustPrimitive(typesys.String), null: true}
}

// TypeRef returns a System.Type value referring to t. A nil t is the
// null reference.
func TypeRef(t *typesys.Type) Value {
	return Value{Type: typesys.MustPrimitive(typesys.SystemType), ref: t, null: t == nil}
}

// Enum returns a value of enum type t with the given raw value.
func Enum(t *typesys.Type, raw int64) Value {
	return Value{Type: t, bits: signExtend(t.Underlying, uint64(raw))}
}

// Array returns a non-null array of elemType holding elems.
func Array(elemType *typesys.Type, elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Type: typesys.ArrayOf(elemType), elems: elems}
}

// NullArray returns the null array of elemType.
func NullArray(elemType *typesys.Type) Value {
	return Value{Type: typesys.ArrayOf(elemType), null: true}
}

// Box marks v as stored in an object-typed slot.
func Box(v Value) Value {
	v.Boxed = true
	return v
}

// IsNull reports whether the value is a null string, Type reference,
// or array.
func (v Value) IsNull() bool { return v.null }

// Kind returns the kind that determines the value's encoding (the
// underlying kind for enums).
func (v Value) Kind() typesys.Kind {
	if v.Type == nil {
		return typesys.Invalid
	}
	return v.Type.ValueKind()
}

// AsBool returns a Boolean value.
func (v Value) AsBool() bool { return v.bits != 0 }

// AsInt returns an integral value as a signed integer.
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsUint returns an integral value as an unsigned integer truncated to
// its kind's width.
func (v Value) AsUint() uint64 { return truncate(v.Kind(), v.bits) }

// AsFloat returns a Single or Double value.
func (v Value) AsFloat() float64 {
	if v.Kind() == typesys.Single {
		return float64(math.Float32frombits(uint32(v.bits)))
	}
	return math.Float64frombits(v.bits)
}

// AsString returns a String value. The result is "" for null.
func (v Value) AsString() string { return v.str }

// AsType returns the type a System.Type value refers to, or nil.
func (v Value) AsType() *typesys.Type { return v.ref }

// Elems returns the elements of a non-null array.
func (v Value) Elems() []Value { return append([]Value(nil), v.elems...) }

// Len returns the element count of an array value.
func (v Value) Len() int { return len(v.elems) }

// Interface returns the value as a native Go value: bool, uint16 for
// Char, the sized integer and float types, string, *typesys.Type,
// [EnumValue], or []any for arrays. Null values return nil.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	if v.Type == nil {
		return nil
	}
	switch v.Type.Kind {
	case typesys.Enum:
		return EnumValue{Type: v.Type, Raw: int64(v.bits)}
	case typesys.SZArray:
		out := make([]any, len(v.elems))
		for i, elem := range v.elems {
			out[i] = elem.Interface()
		}
		return out
	case typesys.String:
		return v.str
	case typesys.SystemType:
		return v.ref
	}
	return v.scalar()
}

func (v Value) scalar() any {
	switch v.Kind() {
	case typesys.Boolean:
		return v.bits != 0
	case typesys.Char:
		return uint16(v.bits)
	case typesys.SByte:
		return int8(v.bits)
	case typesys.Byte:
		return uint8(v.bits)
	case typesys.Int16:
		return int16(v.bits)
	case typesys.UInt16:
		return uint16(v.bits)
	case typesys.Int32:
		return int32(v.bits)
	case typesys.UInt32:
		return uint32(v.bits)
	case typesys.Int64:
		return int64(v.bits)
	case typesys.UInt64:
		return v.bits
	case typesys.Single:
		return math.Float32frombits(uint32(v.bits))
	case typesys.Double:
		return math.Float64frombits(v.bits)
	}
	return nil
}

// EnumValue is the native form of an enum value.
type EnumValue struct {
	Type *typesys.Type
	Raw  int64
}

func (e EnumValue) String() string {
	if name, ok := e.Type.MemberName(e.Raw); ok {
		return e.Type.Name + "." + name
	}
	return fmt.Sprintf("(%s)%d", e.Type.Name, e.Raw)
}

// Equal reports whether v and other have the same type, boxing, and
// payload. Floats compare by bit pattern, so NaN equals itself.
func (v Value) Equal(other Value) bool {
	if !v.Type.Equal(other.Type) || v.Boxed != other.Boxed || v.null != other.null {
		return false
	}
	if v.null {
		return true
	}
	switch v.Type.Kind {
	case typesys.String:
		return v.str == other.str
	case typesys.SystemType:
		return v.ref.Equal(other.ref)
	case typesys.SZArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	}
	return v.bits == other.bits
}

// String renders the value as a source-code literal.
func (v Value) String() string {
	var builder strings.Builder
	v.format(&builder)
	return builder.String()
}

func (v Value) format(builder *strings.Builder) {
	if v.Boxed && v.Type != nil && !v.null {
		builder.WriteString("(object)")
	}
	if v.null {
		builder.WriteString("null")
		return
	}
	if v.Type == nil {
		builder.WriteString("<invalid>")
		return
	}
	switch v.Type.Kind {
	case typesys.String:
		builder.WriteString(strconv.Quote(v.str))
	case typesys.SystemType:
		builder.WriteString("typeof(" + v.ref.Name + ")")
	case typesys.Enum:
		builder.WriteString(EnumValue{Type: v.Type, Raw: int64(v.bits)}.String())
	case typesys.SZArray:
		builder.WriteString("new " + v.Type.Name + " {")
		for i, elem := range v.elems {
			if i > 0 {
				builder.WriteString(",")
			}
			builder.WriteString(" ")
			elem.format(builder)
		}
		if len(v.elems) > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString("}")
	case typesys.Char:
		builder.WriteString(strconv.QuoteRune(rune(v.bits)))
	default:
		fmt.Fprint(builder, v.scalar())
	}
}

// signExtend widens the low bits of raw for signed kinds so that
// int64(bits) is the value.
func signExtend(kind typesys.Kind, raw uint64) uint64 {
	switch kind {
	case typesys.SByte:
		return uint64(int64(int8(raw)))
	case typesys.Int16:
		return uint64(int64(int16(raw)))
	case typesys.Int32:
		return uint64(int64(int32(raw)))
	}
	return truncate(kind, raw)
}

func truncate(kind typesys.Kind, raw uint64) uint64 {
	switch kind.Size() {
	case 1:
		return raw & 0xFF
	case 2:
		return raw & 0xFFFF
	case 4:
		return raw & 0xFFFFFFFF
	}
	return raw
}
