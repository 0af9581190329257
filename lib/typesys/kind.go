// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import "fmt"

// Kind classifies a type. The numeric values are the ECMA-335
// element-type codes (II.23.1.16), so the kinds that can appear in a
// custom attribute type tag convert directly from the tag byte.
type Kind uint8

const (
	Invalid    Kind = 0x00
	Boolean    Kind = 0x02
	Char       Kind = 0x03
	SByte      Kind = 0x04
	Byte       Kind = 0x05
	Int16      Kind = 0x06
	UInt16     Kind = 0x07
	Int32      Kind = 0x08
	UInt32     Kind = 0x09
	Int64      Kind = 0x0A
	UInt64     Kind = 0x0B
	Single     Kind = 0x0C
	Double     Kind = 0x0D
	String     Kind = 0x0E
	Class      Kind = 0x12
	SZArray    Kind = 0x1D
	SystemType Kind = 0x50
	Object     Kind = 0x51
	Enum       Kind = 0x55
)

var kindNames = map[Kind]string{
	Boolean:    "bool",
	Char:       "char",
	SByte:      "sbyte",
	Byte:       "byte",
	Int16:      "int16",
	UInt16:     "uint16",
	Int32:      "int32",
	UInt32:     "uint32",
	Int64:      "int64",
	UInt64:     "uint64",
	Single:     "single",
	Double:     "double",
	String:     "string",
	Class:      "class",
	SZArray:    "array",
	SystemType: "type",
	Object:     "object",
	Enum:       "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%#02x)", uint8(k))
}

// IsPrimitive reports whether k is one of the fixed-width scalar kinds
// (Boolean through Double).
func (k Kind) IsPrimitive() bool {
	return k >= Boolean && k <= Double
}

// IsIntegral reports whether k can be the underlying kind of an enum.
func (k Kind) IsIntegral() bool {
	return k >= Char && k <= UInt64
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	switch k {
	case SByte, Int16, Int32, Int64:
		return true
	}
	return false
}

// Size returns the encoded width in bytes of a primitive kind, or 0
// for kinds without a fixed width.
func (k Kind) Size() int {
	switch k {
	case Boolean, SByte, Byte:
		return 1
	case Char, Int16, UInt16:
		return 2
	case Int32, UInt32, Single:
		return 4
	case Int64, UInt64, Double:
		return 8
	}
	return 0
}

// ParseKind parses the lowercase name produced by [Kind.String] and
// the C# keyword spellings accepted in manifests ("int", "ushort", ...).
func ParseKind(name string) (Kind, bool) {
	if alias, ok := keywordAliases[name]; ok {
		return alias, true
	}
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, true
		}
	}
	return Invalid, false
}

// keywordAliases maps C# keywords to kinds. Used by manifests and
// constructor signatures.
var keywordAliases = map[string]Kind{
	"bool":   Boolean,
	"char":   Char,
	"sbyte":  SByte,
	"byte":   Byte,
	"short":  Int16,
	"ushort": UInt16,
	"int":    Int32,
	"uint":   UInt32,
	"long":   Int64,
	"ulong":  UInt64,
	"float":  Single,
	"double": Double,
	"string": String,
	"object": Object,
	"type":   SystemType,
}
