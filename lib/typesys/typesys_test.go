// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func specsModule(t *testing.T) *Module {
	t.Helper()
	module, err := NewModule("AttributeCloner.Specs", []Type{
		{Kind: Class, Name: "AttributeCloner.Specs.C"},
		{Kind: Class, Name: "AttributeCloner.Specs.G"},
		{
			Kind: Enum, Name: "AttributeCloner.Specs.Values", Underlying: Int32,
			Members: []EnumMember{{Name: "First", Value: 0}, {Name: "Second", Value: 1}, {Name: "Third", Value: 2}},
		},
	})
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	return module
}

func cecilModule(t *testing.T) *Module {
	t.Helper()
	module, err := NewModule("Mono.Cecil", []Type{
		{Kind: Class, Name: "Mono.Cecil.TypeReference"},
	})
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	return module
}

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		input    string
		typeName string
		assembly string
	}{
		{"System.Int32", "System.Int32", ""},
		{"Mono.Cecil.TypeReference, Mono.Cecil, Version=0.11.0.0, Culture=neutral, PublicKeyToken=50cebf1cceb9d05e",
			"Mono.Cecil.TypeReference", "Mono.Cecil"},
		{"A.B+C, Asm", "A.B+C", "Asm"},
		{"System.Collections.Generic.List`1[[System.Int32, mscorlib]], mscorlib",
			"System.Collections.Generic.List`1[[System.Int32, mscorlib]]", "mscorlib"},
		{"  Padded.Name  ", "Padded.Name", ""},
	}

	for _, tt := range tests {
		typeName, assembly := ParseTypeName(tt.input)
		if typeName != tt.typeName || assembly != tt.assembly {
			t.Errorf("ParseTypeName(%q) = (%q, %q), want (%q, %q)",
				tt.input, typeName, assembly, tt.typeName, tt.assembly)
		}
	}
}

func TestContextResolve(t *testing.T) {
	context := NewContext(specsModule(t), WithModules(cecilModule(t)))

	tests := []struct {
		name     string
		input    string
		wantName string
		wantKind Kind
		module   string
	}{
		{name: "same module", input: "AttributeCloner.Specs.C", wantName: "AttributeCloner.Specs.C", wantKind: Class, module: "AttributeCloner.Specs"},
		{name: "core type", input: "System.String", wantName: "System.String", wantKind: String, module: CoreModule},
		{name: "core type qualified", input: "System.String, System.Private.CoreLib, Version=4.0.0.0", wantName: "System.String", wantKind: String, module: CoreModule},
		{name: "foreign module", input: "Mono.Cecil.TypeReference, Mono.Cecil, Version=0.11.0.0", wantName: "Mono.Cecil.TypeReference", wantKind: Class, module: "Mono.Cecil"},
		{name: "enum", input: "AttributeCloner.Specs.Values", wantName: "AttributeCloner.Specs.Values", wantKind: Enum, module: "AttributeCloner.Specs"},
		{name: "array", input: "System.Int32[]", wantName: "System.Int32[]", wantKind: SZArray, module: CoreModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := context.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.input, err)
			}
			if resolved.Name != tt.wantName || resolved.Kind != tt.wantKind || resolved.Module != tt.module {
				t.Errorf("got %s (%s, %s), want %s (%s, %s)",
					resolved.Name, resolved.Kind, resolved.Module, tt.wantName, tt.wantKind, tt.module)
			}
		})
	}
}

func TestContextResolve_NotFound(t *testing.T) {
	context := NewContext(specsModule(t), WithModules(cecilModule(t)))

	for _, name := range []string{
		"Missing.Type",
		"Mono.Cecil.TypeReference", // unqualified foreign names are not searched by default
		"Missing.Type, Missing.Assembly",
		"System.NotAType, mscorlib",
		"",
	} {
		if _, err := context.Resolve(name); !errors.Is(err, ErrTypeNotFound) {
			t.Errorf("Resolve(%q): got %v, want ErrTypeNotFound", name, err)
		}
	}
}

func TestContextResolve_Fallback(t *testing.T) {
	other, err := NewModule("Other", []Type{{Kind: Class, Name: "Mono.Cecil.TypeReference"}})
	if err != nil {
		t.Fatal(err)
	}

	unique := NewContext(specsModule(t), WithModules(cecilModule(t)), WithFallback(FallbackUnique))
	resolved, err := unique.Resolve("Mono.Cecil.TypeReference")
	if err != nil {
		t.Fatalf("unique fallback with one match: %v", err)
	}
	if resolved.Module != "Mono.Cecil" {
		t.Errorf("resolved in %s, want Mono.Cecil", resolved.Module)
	}

	ambiguous := NewContext(specsModule(t), WithModules(cecilModule(t), other), WithFallback(FallbackUnique))
	if _, err := ambiguous.Resolve("Mono.Cecil.TypeReference"); !errors.Is(err, ErrAmbiguousType) {
		t.Errorf("got %v, want ErrAmbiguousType", err)
	}

	first := NewContext(specsModule(t), WithModules(other, cecilModule(t)), WithFallback(FallbackFirst))
	resolved, err = first.Resolve("Mono.Cecil.TypeReference")
	if err != nil {
		t.Fatalf("first fallback: %v", err)
	}
	if resolved.Module != "Other" {
		t.Errorf("resolved in %s, want Other (registration order)", resolved.Module)
	}
}

func TestContextResolve_WellKnownShadowsDefaultModule(t *testing.T) {
	module, err := NewModule("Shadow", []Type{{Kind: Class, Name: "System.String"}})
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := NewContext(module).Resolve("System.String")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Kind != String || resolved.Module != CoreModule {
		t.Errorf("got %s from %s, want the core string type", resolved.Kind, resolved.Module)
	}
}

func TestParseFallback(t *testing.T) {
	for _, name := range []string{"none", "unique", "first", ""} {
		if _, err := ParseFallback(name); err != nil {
			t.Errorf("ParseFallback(%q): %v", name, err)
		}
	}
	if _, err := ParseFallback("guess"); err == nil {
		t.Error("ParseFallback(guess) succeeded")
	}
}

func TestNewModule_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		definitions []Type
	}{
		{name: "duplicate", definitions: []Type{{Kind: Class, Name: "A"}, {Kind: Class, Name: "A"}}},
		{name: "non-integral enum", definitions: []Type{{Kind: Enum, Name: "E", Underlying: Double}}},
		{name: "missing name", definitions: []Type{{Kind: Class}}},
		{name: "missing kind", definitions: []Type{{Name: "X"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModule("M", tt.definitions); err == nil {
				t.Error("NewModule succeeded")
			}
		})
	}
}

func TestTypeEqual(t *testing.T) {
	context := NewContext(specsModule(t))
	values, err := context.Resolve("AttributeCloner.Specs.Values")
	if err != nil {
		t.Fatal(err)
	}

	if !ArrayOf(values).Equal(ArrayOf(values)) {
		t.Error("array types over the same element are not equal")
	}
	if ArrayOf(values).Equal(values) {
		t.Error("array equals its element")
	}
	sameName := &Type{Kind: Enum, Name: values.Name, Module: "Elsewhere", Underlying: Int32}
	if values.Equal(sameName) {
		t.Error("types from different modules compare equal")
	}
	if name, ok := values.MemberName(1); !ok || name != "Second" {
		t.Errorf("MemberName(1) = %q, %v", name, ok)
	}
}

func TestParseConstructor(t *testing.T) {
	context := NewContext(specsModule(t), WithModules(cecilModule(t)))

	constructor, err := ParseConstructor("AttributeCloner.Specs.G(AttributeCloner.Specs.Values, int[], object, type, [Mono.Cecil.TypeReference, Mono.Cecil])", context)
	if err != nil {
		t.Fatalf("ParseConstructor: %v", err)
	}
	wantKinds := []Kind{Enum, SZArray, Object, SystemType, Class}
	if len(constructor.Params) != len(wantKinds) {
		t.Fatalf("got %d params, want %d", len(constructor.Params), len(wantKinds))
	}
	for index, kind := range wantKinds {
		if constructor.Params[index].Kind != kind {
			t.Errorf("param %d: kind %s, want %s", index, constructor.Params[index].Kind, kind)
		}
	}
	if constructor.Params[1].Elem.Kind != Int32 {
		t.Errorf("int[] element kind = %s", constructor.Params[1].Elem.Kind)
	}

	// The rendered signature parses back to the same constructor.
	reparsed, err := ParseConstructor(constructor.Signature(), context)
	if err != nil {
		t.Fatalf("reparse %q: %v", constructor.Signature(), err)
	}
	if reparsed.Signature() != constructor.Signature() {
		t.Errorf("signature changed: %q -> %q", constructor.Signature(), reparsed.Signature())
	}
	for index := range constructor.Params {
		if !constructor.Params[index].Equal(reparsed.Params[index]) {
			t.Errorf("param %d changed on reparse", index)
		}
	}
}

func TestParseConstructor_Errors(t *testing.T) {
	context := NewContext(specsModule(t))
	for _, signature := range []string{
		"AttributeCloner.Specs.C",
		"AttributeCloner.Specs.Values(int)",
		"Missing.Attr()",
		"AttributeCloner.Specs.C(Missing.Type)",
	} {
		if _, err := ParseConstructor(signature, context); err == nil {
			t.Errorf("ParseConstructor(%q) succeeded", signature)
		}
	}

	empty, err := ParseConstructor("AttributeCloner.Specs.C()", context)
	if err != nil {
		t.Fatalf("empty parameter list: %v", err)
	}
	if len(empty.Params) != 0 {
		t.Errorf("got %d params, want 0", len(empty.Params))
	}
}

func TestParseManifest_YAML(t *testing.T) {
	data := `
module: Contoso.Widgets
types:
  - name: Contoso.Widgets.ColorAttribute
    kind: class
  - name: Contoso.Widgets.Shade
    kind: enum
    underlying: byte
    members: {Dark: 1, Light: 0}
`
	module, err := ParseManifest([]byte(data), "yaml")
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	shade, ok := module.Lookup("Contoso.Widgets.Shade")
	if !ok {
		t.Fatal("Shade not defined")
	}
	if shade.Underlying != Byte || shade.Module != "Contoso.Widgets" {
		t.Errorf("Shade: underlying %s, module %s", shade.Underlying, shade.Module)
	}
	if len(shade.Members) != 2 || shade.Members[0].Name != "Light" {
		t.Errorf("members not sorted by value: %+v", shade.Members)
	}
}

func TestLoadManifest_JSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.jsonc")
	data := `{
  // Widgets used by the sample attributes.
  "module": "Contoso.Widgets",
  "types": [
    {"name": "Contoso.Widgets.Size", "kind": "enum", "underlying": "int64", "members": {"Small": 1,},},
  ],
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	module, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	size, ok := module.Lookup("Contoso.Widgets.Size")
	if !ok || size.Underlying != Int64 {
		t.Fatalf("Size = %+v, %v", size, ok)
	}
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown field", data: "module: M\ntypes:\n  - name: A\n    kind: class\n    colour: red\n"},
		{name: "unknown kind", data: "module: M\ntypes:\n  - name: A\n    kind: struct\n"},
		{name: "bad underlying", data: "module: M\ntypes:\n  - name: A\n    kind: enum\n    underlying: double\n"},
		{name: "class with members", data: "module: M\ntypes:\n  - name: A\n    kind: class\n    members: {X: 1}\n"},
		{name: "missing module", data: "types: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data), "yaml")
			if err == nil {
				t.Fatal("ParseManifest succeeded")
			}
			if strings.TrimSpace(err.Error()) == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestKind(t *testing.T) {
	if Int32.Size() != 4 || Char.Size() != 2 || Double.Size() != 8 || Boolean.Size() != 1 {
		t.Error("unexpected primitive sizes")
	}
	if !Char.IsIntegral() || Boolean.IsIntegral() || Single.IsIntegral() {
		t.Error("IsIntegral misclassifies")
	}
	for _, name := range []string{"int", "int32", "ushort", "uint16"} {
		if _, ok := ParseKind(name); !ok {
			t.Errorf("ParseKind(%q) failed", name)
		}
	}
	if Kind(0x42).String() != "kind(0x42)" {
		t.Errorf("unknown kind renders as %q", Kind(0x42).String())
	}
}
