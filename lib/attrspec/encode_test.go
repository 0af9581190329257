// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bureau-foundation/attrspec/lib/codec"
	"github.com/bureau-foundation/attrspec/lib/testutil"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// specsEqual compares two specs member-wise.
func specsEqual(t *testing.T, got, want *Spec) {
	t.Helper()
	if !got.Attribute().Equal(want.Attribute()) {
		t.Errorf("attribute = %s, want %s", got.Attribute(), want.Attribute())
	}
	gotArgs, wantArgs := got.Args(), want.Args()
	if len(gotArgs) != len(wantArgs) {
		t.Fatalf("got %d args, want %d", len(gotArgs), len(wantArgs))
	}
	for i := range gotArgs {
		if !gotArgs[i].Equal(wantArgs[i]) {
			t.Errorf("arg %d = %v, want %v", i, gotArgs[i], wantArgs[i])
		}
	}
	gotNamed, wantNamed := got.NamedArgs(), want.NamedArgs()
	if len(gotNamed) != len(wantNamed) {
		t.Fatalf("got %d named args, want %d", len(gotNamed), len(wantNamed))
	}
	for i := range gotNamed {
		g, w := gotNamed[i], wantNamed[i]
		if g.Kind != w.Kind || g.Name != w.Name || g.Type.String() != w.Type.String() || !g.Value.Equal(w.Value) {
			t.Errorf("named %d = %s %s %s=%v, want %s %s %s=%v",
				i, g.Kind, g.Type, g.Name, g.Value, w.Kind, w.Type, w.Name, w.Value)
		}
	}
}

func TestMarshalReproducesFixtures(t *testing.T) {
	context := testutil.FixtureContext(t)
	for _, fixture := range testutil.Fixtures() {
		t.Run(fixture.Name, func(t *testing.T) {
			spec := parseFixture(t, context, fixture)
			encoded, err := Marshal(spec)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			// The third-party type name loses its version suffix;
			// everything else is byte-identical.
			if fixture.Name != "type in other module" && !bytes.Equal(encoded, fixture.Blob) {
				t.Errorf("Marshal = % x\nwant      % x", encoded, fixture.Blob)
			}

			decoded, err := Parse(spec.Constructor(), encoded, context)
			if err != nil {
				t.Fatalf("Parse(Marshal): %v", err)
			}
			specsEqual(t, decoded, spec)
		})
	}
}

func TestMarshalQualifiesForeignNames(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.C(type)")
	point := mustResolve(t, context, "Contoso.Geometry.Point, Contoso.Geometry")
	spec, err := NewSpec(constructor, []Value{TypeRef(point)}, nil)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	encoded, err := Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := testutil.Concat(testutil.Hex("01 00"),
		testutil.SerString("Contoso.Geometry.Point, Contoso.Geometry"), testutil.U16(0))
	if !bytes.Equal(encoded, want) {
		t.Errorf("Marshal = % x, want % x", encoded, want)
	}
}

func TestMarshalRejectsBoxedTypeReference(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.E(object)")
	stringType := typesys.MustPrimitive(typesys.String)
	spec, err := NewSpec(constructor, []Value{Box(TypeRef(stringType))}, nil)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	if encoded, err := Marshal(spec); !errors.Is(err, ErrUnsupportedArgumentType) {
		t.Errorf("Marshal = % x, %v; want ErrUnsupportedArgumentType (System.Type has no type tag)", encoded, err)
	}
}

func TestMarshalNamedWithoutDescriptor(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.E()")
	values := mustResolve(t, context, "Contoso.Fixtures.Values")
	spec, err := NewSpec(constructor, nil, []NamedArgument{
		{Kind: Property, Name: "V", Value: Enum(values, 2)},
	})
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	encoded, err := Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := testutil.Concat(testutil.Hex("01 00"), testutil.U16(1),
		testutil.Hex("54 55"), testutil.SerString("Contoso.Fixtures.Values"), testutil.SerString("V"), testutil.I32(2))
	if !bytes.Equal(encoded, want) {
		t.Errorf("Marshal = % x, want % x", encoded, want)
	}
}

func TestMarshalRejectsMismatchedValue(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")
	spec, err := NewSpec(constructor, []Value{String("seven"), Uint(typesys.UInt16, 9)}, nil)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	if _, err := Marshal(spec); !errors.Is(err, ErrUnsupportedArgumentType) {
		t.Errorf("got %v, want ErrUnsupportedArgumentType", err)
	}
}

func TestDocumentJSONRoundtrip(t *testing.T) {
	context := testutil.FixtureContext(t)
	for _, fixture := range testutil.Fixtures() {
		t.Run(fixture.Name, func(t *testing.T) {
			spec := parseFixture(t, context, fixture)
			data, err := json.Marshal(NewDocument(spec))
			if err != nil {
				t.Fatalf("json.Marshal: %v", err)
			}

			var document Document
			decoder := json.NewDecoder(bytes.NewReader(data))
			decoder.UseNumber()
			if err := decoder.Decode(&document); err != nil {
				t.Fatalf("json decode: %v", err)
			}
			if document.Constructor != spec.Constructor().Signature() {
				t.Errorf("constructor = %q, want %q", document.Constructor, spec.Constructor().Signature())
			}
			rebuilt, err := document.Spec(spec.Constructor(), context)
			if err != nil {
				t.Fatalf("Document.Spec: %v\n%s", err, data)
			}
			specsEqual(t, rebuilt, spec)
		})
	}
}

func TestDocumentCBORRoundtrip(t *testing.T) {
	context := testutil.FixtureContext(t)
	for _, fixture := range testutil.Fixtures() {
		spec := parseFixture(t, context, fixture)
		data, err := codec.Marshal(NewDocument(spec))
		if err != nil {
			t.Fatalf("%s: codec.Marshal: %v", fixture.Name, err)
		}
		var document Document
		if err := codec.Unmarshal(data, &document); err != nil {
			t.Fatalf("%s: codec.Unmarshal: %v", fixture.Name, err)
		}
		rebuilt, err := document.Spec(spec.Constructor(), context)
		if err != nil {
			t.Fatalf("%s: Document.Spec: %v", fixture.Name, err)
		}
		specsEqual(t, rebuilt, spec)
	}
}

func TestDocumentEnumMembers(t *testing.T) {
	context := testutil.FixtureContext(t)
	spec := parseFixture(t, context, fixtureByName(t, "enum argument and property"))
	document := NewDocument(spec)
	if got := document.Arguments[0].Member; got != "Second" {
		t.Errorf("argument member = %q, want Second", got)
	}
	if got := document.Named[0]; got.Kind != "property" || got.Name != "V" || got.Value.Member != "Third" {
		t.Errorf("named = %+v", got)
	}

	// A member name alone is enough to rebuild the value.
	document.Arguments[0] = ValueDocument{Type: document.Arguments[0].Type, Member: "Third"}
	rebuilt, err := document.Spec(spec.Constructor(), context)
	if err != nil {
		t.Fatalf("Document.Spec: %v", err)
	}
	if got := rebuilt.Args()[0].AsInt(); got != 2 {
		t.Errorf("rebuilt enum = %d, want 2", got)
	}
}

func TestDocumentLargeIntegersAreStrings(t *testing.T) {
	value := NewValueDocument(Uint(typesys.UInt64, 1<<63))
	if got, ok := value.Value.(string); !ok || got != "9223372036854775808" {
		t.Errorf("uint64 document value = %#v, want decimal string", value.Value)
	}
	value = NewValueDocument(Int(typesys.Int64, -5))
	if got, ok := value.Value.(int64); !ok || got != -5 {
		t.Errorf("int64 document value = %#v, want int64(-5)", value.Value)
	}
}

func TestDocumentRejectsOutOfRange(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")
	document := Document{
		Arguments: []ValueDocument{
			{Type: "System.Int32", Value: json.Number("7")},
			{Type: "System.UInt16", Value: json.Number("70000")},
		},
	}
	if _, err := document.Spec(constructor, context); err == nil {
		t.Error("70000 accepted as a ushort")
	}
}
