// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Module names used by the shared fixtures.
const (
	FixturesModule = "Contoso.Fixtures"
	GeometryModule = "Contoso.Geometry"
)

// Fixture is a hand-assembled attribute blob together with the
// constructor signature it was encoded against.
type Fixture struct {
	Name      string
	Signature string
	Blob      []byte
}

// FixtureModules returns the attribute module the fixtures are
// declared in and a second module standing in for a third-party
// library.
func FixtureModules(t testing.TB) (fixtures, geometry *typesys.Module) {
	t.Helper()
	fixtures, err := typesys.NewModule(FixturesModule, []typesys.Type{
		{Kind: typesys.Class, Name: "Contoso.Fixtures.A"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.B"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.C"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.D"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.E"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.F"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.G"},
		{Kind: typesys.Class, Name: "Contoso.Fixtures.ComplexAttribute"},
		{
			Kind: typesys.Enum, Name: "Contoso.Fixtures.Values", Underlying: typesys.Int32,
			Members: []typesys.EnumMember{{Name: "First", Value: 0}, {Name: "Second", Value: 1}, {Name: "Third", Value: 2}},
		},
		{
			Kind: typesys.Enum, Name: "Contoso.Fixtures.ExampleKind", Underlying: typesys.Int32,
			Members: []typesys.EnumMember{
				{Name: "FirstKind", Value: 0}, {Name: "SecondKind", Value: 1},
				{Name: "ThirdKind", Value: 2}, {Name: "FourthKind", Value: 3},
			},
		},
		{
			Kind: typesys.Enum, Name: "Contoso.Fixtures.Shade", Underlying: typesys.SByte,
			Members: []typesys.EnumMember{{Name: "Dark", Value: -1}, {Name: "Light", Value: 1}},
		},
	})
	if err != nil {
		t.Fatalf("fixtures module: %v", err)
	}
	geometry, err = typesys.NewModule(GeometryModule, []typesys.Type{
		{Kind: typesys.Class, Name: "Contoso.Geometry.Point"},
	})
	if err != nil {
		t.Fatalf("geometry module: %v", err)
	}
	return fixtures, geometry
}

// FixtureContext returns a resolution context whose default module is
// the fixtures module, with the geometry module loaded.
func FixtureContext(t testing.TB) *typesys.Context {
	t.Helper()
	fixtures, geometry := FixtureModules(t)
	return typesys.NewContext(fixtures, typesys.WithModules(geometry))
}

// MustConstructor parses a constructor signature or fails the test.
func MustConstructor(t testing.TB, resolver typesys.Resolver, signature string) *typesys.Constructor {
	t.Helper()
	constructor, err := typesys.ParseConstructor(signature, resolver)
	if err != nil {
		t.Fatalf("constructor %q: %v", signature, err)
	}
	return constructor
}

// Fixtures returns blobs exactly as a C# compiler emits them for a
// set of attribute usages covering every argument form: strings
// (null, empty, named), integers, System.Type references (same
// module, core library, third-party module), byte arrays, boxed
// values in constructor arguments, fields and properties, null and
// empty params arrays, enums direct, boxed, and as boxed arrays, and
// a mixed attribute with string and int arrays.
func Fixtures() []Fixture {
	const values = "Contoso.Fixtures.Values"
	return []Fixture{
		{
			Name:      "null string",
			Signature: "Contoso.Fixtures.A(string)",
			Blob:      Hex("01 00 | FF | 00 00"),
		},
		{
			Name:      "empty string",
			Signature: "Contoso.Fixtures.A(string)",
			Blob:      Hex("01 00 | 00 | 00 00"),
		},
		{
			Name:      "named strings",
			Signature: "Contoso.Fixtures.A(string)",
			Blob: Concat(
				Hex("01 00"), SerString("ab"), U16(2),
				Hex("53 0E"), SerString("field"), SerString("cd"),
				Hex("54 0E"), SerString("prop"), SerString("123"),
			),
		},
		{
			Name:      "int and ushort",
			Signature: "Contoso.Fixtures.B(int, ushort)",
			Blob:      Hex("01 00 | 07 00 00 00 | 09 00 | 00 00"),
		},
		{
			Name:      "type in same module",
			Signature: "Contoso.Fixtures.C(type)",
			Blob:      Concat(Hex("01 00"), SerString("Contoso.Fixtures.C"), U16(0)),
		},
		{
			Name:      "type in core library",
			Signature: "Contoso.Fixtures.C(type)",
			Blob:      Concat(Hex("01 00"), SerString("System.String"), U16(0)),
		},
		{
			Name:      "type in other module",
			Signature: "Contoso.Fixtures.C(type)",
			Blob: Concat(Hex("01 00"),
				SerString("Contoso.Geometry.Point, Contoso.Geometry, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null"),
				U16(0)),
		},
		{
			Name:      "byte arrays",
			Signature: "Contoso.Fixtures.D(byte[])",
			Blob: Concat(
				Hex("01 00 | 02 00 00 00 01 02"), U16(2),
				Hex("53 1D 05"), SerString("field"), Hex("02 00 00 00 03 04"),
				Hex("54 1D 05"), SerString("prop"), Hex("01 00 00 00 05"),
			),
		},
		{
			Name:      "boxed int argument",
			Signature: "Contoso.Fixtures.E(object)",
			Blob:      Hex("01 00 | 08 2A 00 00 00 | 00 00"),
		},
		{
			Name:      "boxed int field",
			Signature: "Contoso.Fixtures.E()",
			Blob:      Concat(Hex("01 00"), U16(1), Hex("53 51"), SerString("obj"), Hex("08 07 00 00 00")),
		},
		{
			Name:      "boxed int property",
			Signature: "Contoso.Fixtures.E()",
			Blob:      Concat(Hex("01 00"), U16(1), Hex("54 51"), SerString("o"), Hex("08 EE 00 00 00")),
		},
		{
			Name:      "empty params array",
			Signature: "Contoso.Fixtures.F(short[])",
			Blob:      Hex("01 00 | 00 00 00 00 | 00 00"),
		},
		{
			Name:      "null params array",
			Signature: "Contoso.Fixtures.F(short[])",
			Blob:      Hex("01 00 | FF FF FF FF | 00 00"),
		},
		{
			Name:      "short params array",
			Signature: "Contoso.Fixtures.F(short[])",
			Blob:      Hex("01 00 | 02 00 00 00 01 00 02 00 | 00 00"),
		},
		{
			Name:      "enum argument and property",
			Signature: "Contoso.Fixtures.G(Contoso.Fixtures.Values)",
			Blob: Concat(
				Hex("01 00"), I32(1), U16(1),
				Hex("54 55"), SerString(values), SerString("V"), I32(2),
			),
		},
		{
			Name:      "boxed enum argument and property",
			Signature: "Contoso.Fixtures.G(object)",
			Blob: Concat(
				Hex("01 00 55"), SerString(values), I32(2), U16(1),
				Hex("54 51"), SerString("Obj"), Hex("55"), SerString(values), I32(1),
			),
		},
		{
			Name:      "boxed enum array argument",
			Signature: "Contoso.Fixtures.G(object)",
			Blob: Concat(
				Hex("01 00 1D 55"), SerString(values), U32(2), I32(2), I32(1), U16(0),
			),
		},
		{
			Name:      "complex",
			Signature: "Contoso.Fixtures.ComplexAttribute(Contoso.Fixtures.ExampleKind, string[])",
			Blob: Concat(
				Hex("01 00"), I32(1),
				U32(3),
				SerString("String array argument, line 1"),
				SerString("String array argument, line 2"),
				SerString("String array argument, line 3"),
				U16(2),
				Hex("54 0E"), SerString("Note"), SerString("This is a note on the property."),
				Hex("54 1D 08"), SerString("Numbers"), U32(3), I32(53), I32(57), I32(59),
			),
		},
	}
}
