// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"fmt"

	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Native is the set of Go types a scalar value converts to. Char
// values convert to uint16.
type Native interface {
	bool | uint16 | int8 | uint8 | int16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// Integer is the set of Go types an enum value converts to.
type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// Scalar converts a (possibly boxed) scalar value to T. The value's
// runtime kind must match T exactly: an int32 does not convert to
// int64.
func Scalar[T Native](value attrspec.Value) (T, error) {
	var zero T
	native, ok := value.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s value for %T", ErrValueType, describe(value), zero)
	}
	return native, nil
}

// Enum converts an enum value to T. When typeName is not empty the
// value's enum type must have that full name.
func Enum[T Integer](value attrspec.Value, typeName string) (T, error) {
	if value.Type == nil || value.Type.Kind != typesys.Enum {
		return 0, fmt.Errorf("%w: %s value for enum", ErrValueType, describe(value))
	}
	if typeName != "" && value.Type.Name != typeName {
		return 0, fmt.Errorf("%w: %s value for enum %s", ErrValueType, value.Type.Name, typeName)
	}
	return T(value.AsInt()), nil
}

// String converts a non-null string value.
func String(value attrspec.Value) (string, error) {
	if value.Kind() != typesys.String {
		return "", fmt.Errorf("%w: %s value for string", ErrValueType, describe(value))
	}
	if value.IsNull() {
		return "", fmt.Errorf("%w: null string", ErrValueType)
	}
	return value.AsString(), nil
}

// NullableString converts a string value, mapping null to nil.
func NullableString(value attrspec.Value) (*string, error) {
	if value.Kind() != typesys.String {
		return nil, fmt.Errorf("%w: %s value for string", ErrValueType, describe(value))
	}
	if value.IsNull() {
		return nil, nil
	}
	text := value.AsString()
	return &text, nil
}

// TypeRef converts a System.Type value, mapping null to nil.
func TypeRef(value attrspec.Value) (*typesys.Type, error) {
	if value.Kind() != typesys.SystemType {
		return nil, fmt.Errorf("%w: %s value for System.Type", ErrValueType, describe(value))
	}
	return value.AsType(), nil
}

// Slice converts an array value element by element. A null array
// converts to a nil slice and an empty array to an empty, non-nil
// slice.
func Slice[T any](value attrspec.Value, convert func(attrspec.Value) (T, error)) ([]T, error) {
	if value.Kind() != typesys.SZArray {
		return nil, fmt.Errorf("%w: %s value for array", ErrValueType, describe(value))
	}
	if value.IsNull() {
		return nil, nil
	}
	out := make([]T, 0, value.Len())
	for i, elem := range value.Elems() {
		converted, err := convert(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

// Object converts a value for an object-typed member: the native form
// from [attrspec.Value.Interface].
func Object(value attrspec.Value) any {
	return value.Interface()
}

func describe(value attrspec.Value) string {
	if value.Type == nil {
		return "untyped"
	}
	if value.IsNull() {
		return "null " + value.Type.Name
	}
	return value.Type.Name
}
