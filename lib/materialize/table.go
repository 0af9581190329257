// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Table is an [AttributeType] for a Go struct T, built from explicit
// registrations instead of reflection:
//
//	table := materialize.NewTable[Obsolete]("System.ObsoleteAttribute", typesys.CoreModule).
//		Constructor([]string{"System.String"}, func(args []attrspec.Value) (*Obsolete, error) {
//			message, err := materialize.NullableString(args[0])
//			return &Obsolete{Message: message}, err
//		}).
//		Property("IsError", func(o *Obsolete, v attrspec.Value) (err error) {
//			o.IsError, err = materialize.Scalar[bool](v)
//			return err
//		})
//
// Construct returns *T. A Table must not be modified after it is
// registered.
type Table[T any] struct {
	identity     typesys.Type
	constructors []tableConstructor[T]
	fields       map[string]Setter[T]
	properties   map[string]Setter[T]
}

// Setter assigns a decoded value to one member of *T.
type Setter[T any] func(instance *T, value attrspec.Value) error

type tableConstructor[T any] struct {
	params []string
	build  func(args []attrspec.Value) (*T, error)
}

// NewTable returns an empty table for the attribute type name in
// module.
func NewTable[T any](name, module string) *Table[T] {
	return &Table[T]{
		identity:   typesys.Type{Kind: typesys.Class, Name: name, Module: module},
		fields:     make(map[string]Setter[T]),
		properties: make(map[string]Setter[T]),
	}
}

// Name implements [AttributeType].
func (t *Table[T]) Name() string {
	return t.identity.QualifiedName()
}

// Constructor registers a constructor by its parameter type names
// (typesys.Type.Name values such as "System.Int32" or
// "Contoso.Shade[]").
func (t *Table[T]) Constructor(params []string, build func(args []attrspec.Value) (*T, error)) *Table[T] {
	t.constructors = append(t.constructors, tableConstructor[T]{params: params, build: build})
	return t
}

// Field registers a settable field.
func (t *Table[T]) Field(name string, set Setter[T]) *Table[T] {
	t.fields[name] = set
	return t
}

// Property registers a settable property.
func (t *Table[T]) Property(name string, set Setter[T]) *Table[T] {
	t.properties[name] = set
	return t
}

// Construct implements [AttributeType].
func (t *Table[T]) Construct(constructor *typesys.Constructor, args []attrspec.Value) (any, error) {
	entry, ok := t.match(constructor)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no constructor %s", ErrConstructorInvocation, t.identity.Name, constructor.Signature())
	}
	if len(args) != len(entry.params) {
		return nil, fmt.Errorf("%w: %s(%s) takes %d arguments, got %d",
			ErrConstructorInvocation, t.identity.Name, strings.Join(entry.params, ", "), len(entry.params), len(args))
	}
	instance, err := entry.build(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstructorInvocation, t.identity.Name, err)
	}
	return instance, nil
}

func (t *Table[T]) match(constructor *typesys.Constructor) (tableConstructor[T], bool) {
	for _, entry := range t.constructors {
		if len(entry.params) != len(constructor.Params) {
			continue
		}
		matched := true
		for i, param := range constructor.Params {
			if param.Name != entry.params[i] {
				matched = false
				break
			}
		}
		if matched {
			return entry, true
		}
	}
	return tableConstructor[T]{}, false
}

// SetMember implements [AttributeType].
func (t *Table[T]) SetMember(instance any, kind attrspec.MemberKind, name string, value attrspec.Value) error {
	target, ok := instance.(*T)
	if !ok {
		return fmt.Errorf("%w: instance is %T, want %T", ErrMemberAssignment, instance, target)
	}

	members, other := t.fields, t.properties
	if kind == attrspec.Property {
		members, other = t.properties, t.fields
	}
	set, ok := members[name]
	if !ok {
		if _, exists := other[name]; exists {
			return fmt.Errorf("%w: %s.%s is not a %s", ErrMemberNotFound, t.identity.Name, name, kind)
		}
		return fmt.Errorf("%w: %s has no %s %s", ErrMemberNotFound, t.identity.Name, kind, name)
	}
	if err := set(target, value); err != nil {
		return fmt.Errorf("%w: %s.%s: %w", ErrMemberAssignment, t.identity.Name, name, err)
	}
	return nil
}
