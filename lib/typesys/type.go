// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import "fmt"

// CoreModule is the module name given to the well-known core types.
const CoreModule = "mscorlib"

// Type is a resolved type identity. Two types are the same type when
// [Type.Equal] reports true; pointer identity is not significant
// because array types are synthesized on demand.
type Type struct {
	// Kind classifies the type.
	Kind Kind

	// Name is the full type name with namespace and nesting
	// ("System.Int32", "Contoso.Outer+Inner"). Array types carry the
	// element name with a "[]" suffix.
	Name string

	// Module is the name of the module that defines the type.
	Module string

	// Underlying is the integral kind that stores an enum's values.
	// Only meaningful when Kind is Enum.
	Underlying Kind

	// Elem is the element type of a single-dimensional array. Only
	// set when Kind is SZArray.
	Elem *Type

	// Members lists named enum values, used for display only.
	Members []EnumMember
}

// EnumMember is one named value of an enum. Value holds the raw bits
// of the underlying integer sign-extended to 64 bits.
type EnumMember struct {
	Name  string `yaml:"name"  json:"name"`
	Value int64  `yaml:"value" json:"value"`
}

// ArrayOf returns the single-dimensional, zero-based array type with
// element type elem.
func ArrayOf(elem *Type) *Type {
	return &Type{
		Kind:   SZArray,
		Name:   elem.Name + "[]",
		Module: elem.Module,
		Elem:   elem,
	}
}

// Equal reports whether t and other denote the same type.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == SZArray {
		return t.Elem.Equal(other.Elem)
	}
	return t.Name == other.Name && t.Module == other.Module
}

// ValueKind returns the kind whose encoding carries values of t: the
// underlying kind for enums, t.Kind otherwise.
func (t *Type) ValueKind() Kind {
	if t.Kind == Enum {
		return t.Underlying
	}
	return t.Kind
}

// MemberName returns the name of the enum member with the given raw
// value.
func (t *Type) MemberName(value int64) (string, bool) {
	for _, member := range t.Members {
		if member.Value == value {
			return member.Name, true
		}
	}
	return "", false
}

// QualifiedName returns the assembly-qualified form of the name
// ("Name, Module"). Core types are returned unqualified.
func (t *Type) QualifiedName() string {
	if t.Module == "" || t.Module == CoreModule {
		return t.Name
	}
	return t.Name + ", " + t.Module
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// validate checks the structural invariants of a type definition.
func (t *Type) validate() error {
	if t.Name == "" {
		return fmt.Errorf("type with kind %s has no name", t.Kind)
	}
	switch t.Kind {
	case Enum:
		if !t.Underlying.IsIntegral() {
			return fmt.Errorf("enum %s: underlying kind %s is not integral", t.Name, t.Underlying)
		}
	case SZArray:
		if t.Elem == nil {
			return fmt.Errorf("array %s has no element type", t.Name)
		}
	case Invalid:
		return fmt.Errorf("type %s has no kind", t.Name)
	}
	return nil
}
