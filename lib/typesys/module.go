// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"fmt"
	"sync"
)

// Module is a named, immutable table of types. Lookups are safe for
// concurrent use.
type Module struct {
	name  string
	types map[string]*Type
	order []*Type
}

// NewModule builds a module from type definitions. Each definition is
// copied and its Module field set to name. Duplicate names and
// malformed definitions are errors.
func NewModule(name string, definitions []Type) (*Module, error) {
	if name == "" {
		return nil, fmt.Errorf("module name is required")
	}

	module := &Module{
		name:  name,
		types: make(map[string]*Type, len(definitions)),
	}
	for _, definition := range definitions {
		definition.Module = name
		if err := definition.validate(); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
		if _, exists := module.types[definition.Name]; exists {
			return nil, fmt.Errorf("module %s: duplicate type %s", name, definition.Name)
		}
		stored := definition
		module.types[stored.Name] = &stored
		module.order = append(module.order, &stored)
	}
	return module, nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Lookup returns the type with the given full name.
func (m *Module) Lookup(name string) (*Type, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Types returns the module's types in definition order.
func (m *Module) Types() []*Type {
	return append([]*Type(nil), m.order...)
}

// coreAssemblies are the assembly names that refer to the well-known
// core types when they appear in an assembly-qualified name.
var coreAssemblies = map[string]bool{
	CoreModule:               true,
	"System.Private.CoreLib": true,
	"System.Runtime":         true,
	"netstandard":            true,
}

var wellKnown = sync.OnceValue(func() *Module {
	definitions := []Type{
		{Kind: Boolean, Name: "System.Boolean"},
		{Kind: Char, Name: "System.Char"},
		{Kind: SByte, Name: "System.SByte"},
		{Kind: Byte, Name: "System.Byte"},
		{Kind: Int16, Name: "System.Int16"},
		{Kind: UInt16, Name: "System.UInt16"},
		{Kind: Int32, Name: "System.Int32"},
		{Kind: UInt32, Name: "System.UInt32"},
		{Kind: Int64, Name: "System.Int64"},
		{Kind: UInt64, Name: "System.UInt64"},
		{Kind: Single, Name: "System.Single"},
		{Kind: Double, Name: "System.Double"},
		{Kind: String, Name: "System.String"},
		{Kind: SystemType, Name: "System.Type"},
		{Kind: Object, Name: "System.Object"},
		{Kind: Class, Name: "System.Attribute"},
		{Kind: Class, Name: "System.AttributeUsageAttribute"},
		{Kind: Class, Name: "System.ObsoleteAttribute"},
		{Kind: Class, Name: "System.FlagsAttribute"},
		{
			Kind: Enum, Name: "System.AttributeTargets", Underlying: Int32,
			Members: []EnumMember{
				{Name: "Assembly", Value: 1}, {Name: "Module", Value: 2},
				{Name: "Class", Value: 4}, {Name: "Struct", Value: 8},
				{Name: "Enum", Value: 16}, {Name: "Constructor", Value: 32},
				{Name: "Method", Value: 64}, {Name: "Property", Value: 128},
				{Name: "Field", Value: 256}, {Name: "Event", Value: 512},
				{Name: "Interface", Value: 1024}, {Name: "Parameter", Value: 2048},
				{Name: "Delegate", Value: 4096}, {Name: "ReturnValue", Value: 8192},
				{Name: "GenericParameter", Value: 16384}, {Name: "All", Value: 32767},
			},
		},
		{
			Kind: Enum, Name: "System.DayOfWeek", Underlying: Int32,
			Members: []EnumMember{
				{Name: "Sunday", Value: 0}, {Name: "Monday", Value: 1},
				{Name: "Tuesday", Value: 2}, {Name: "Wednesday", Value: 3},
				{Name: "Thursday", Value: 4}, {Name: "Friday", Value: 5},
				{Name: "Saturday", Value: 6},
			},
		},
		{
			Kind: Enum, Name: "System.StringComparison", Underlying: Int32,
			Members: []EnumMember{
				{Name: "CurrentCulture", Value: 0}, {Name: "CurrentCultureIgnoreCase", Value: 1},
				{Name: "InvariantCulture", Value: 2}, {Name: "InvariantCultureIgnoreCase", Value: 3},
				{Name: "Ordinal", Value: 4}, {Name: "OrdinalIgnoreCase", Value: 5},
			},
		},
	}
	module, err := NewModule(CoreModule, definitions)
	if err != nil {
		panic("typesys: well-known table: " + err.Error())
	}
	return module
})

// WellKnown returns the table of core types consulted before any
// user module. The returned module is shared and immutable.
func WellKnown() *Module {
	return wellKnown()
}

// Primitive returns the well-known type for a scalar kind (Boolean
// through String), System.Type, or System.Object.
func Primitive(kind Kind) (*Type, bool) {
	for _, t := range wellKnown().order {
		if t.Kind == kind && (kind.IsPrimitive() || kind == String || kind == SystemType || kind == Object) {
			return t, true
		}
	}
	return nil, false
}

// MustPrimitive is [Primitive] for kinds known at compile time.
func MustPrimitive(kind Kind) *Type {
	t, ok := Primitive(kind)
	if !ok {
		panic(fmt.Sprintf("typesys: no primitive type for kind %s", kind))
	}
	return t
}
