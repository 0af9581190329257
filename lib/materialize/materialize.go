// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// AttributeType constructs instances of one attribute type and
// assigns their members. Implementations are usually a [Table].
type AttributeType interface {
	// Name returns the assembly-qualified type name, in the form
	// [typesys.Type.QualifiedName] produces.
	Name() string

	// Construct invokes the constructor matching the given signature
	// with args in declaration order.
	Construct(constructor *typesys.Constructor, args []attrspec.Value) (any, error)

	// SetMember assigns value to the field or property called name
	// on instance. A member that does not exist for kind returns an
	// error wrapping ErrMemberNotFound.
	SetMember(instance any, kind attrspec.MemberKind, name string, value attrspec.Value) error
}

// Build constructs an instance of attributeType from spec: the
// constructor runs with the positional arguments, then every named
// argument is applied in spec order. The first failure aborts the
// build; a partially built instance is never returned.
func Build(attributeType AttributeType, spec *attrspec.Spec) (any, error) {
	instance, err := attributeType.Construct(spec.Constructor(), spec.Args())
	if err != nil {
		if !errors.Is(err, ErrConstructorInvocation) {
			err = fmt.Errorf("%w: %w", ErrConstructorInvocation, err)
		}
		return nil, &BuildError{Attribute: attributeType.Name(), Index: -1, Err: err}
	}

	for index, argument := range spec.NamedArgs() {
		err := attributeType.SetMember(instance, argument.Kind, argument.Name, argument.Value)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrMemberNotFound) && !errors.Is(err, ErrMemberAssignment) {
			err = fmt.Errorf("%w: %w", ErrMemberAssignment, err)
		}
		return nil, &BuildError{
			Attribute: attributeType.Name(),
			Member:    argument.Name,
			Index:     index,
			Err:       err,
		}
	}
	return instance, nil
}

// Registry maps attribute types to their [AttributeType]. It is safe
// for concurrent use.
type Registry struct {
	mutex sync.RWMutex
	types map[string]AttributeType
}

// NewRegistry returns a registry holding types.
func NewRegistry(types ...AttributeType) (*Registry, error) {
	registry := &Registry{types: make(map[string]AttributeType, len(types))}
	for _, attributeType := range types {
		if err := registry.Register(attributeType); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds attributeType. Registering a second type with the same
// name is an error.
func (r *Registry) Register(attributeType AttributeType) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	name := attributeType.Name()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("attribute type %s is already registered", name)
	}
	r.types[name] = attributeType
	return nil
}

// Lookup returns the registered type for attribute.
func (r *Registry) Lookup(attribute *typesys.Type) (AttributeType, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	attributeType, ok := r.types[attribute.QualifiedName()]
	return attributeType, ok
}

// Names returns the registered type names.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// Build looks up the spec's attribute type and builds it.
func (r *Registry) Build(spec *attrspec.Spec) (any, error) {
	attributeType, ok := r.Lookup(spec.Attribute())
	if !ok {
		return nil, &BuildError{
			Attribute: spec.Attribute().QualifiedName(),
			Index:     -1,
			Err:       ErrNotRegistered,
		}
	}
	return Build(attributeType, spec)
}
