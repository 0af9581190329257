// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"errors"
	"fmt"
)

// ErrTypeNotFound is matched by every resolution failure caused by a
// name that no consulted module defines.
var ErrTypeNotFound = errors.New("type not found")

// ErrAmbiguousType is returned under [FallbackUnique] when more than
// one extra module defines an unqualified name.
var ErrAmbiguousType = errors.New("ambiguous type name")

// Resolver maps a serialized type name to a type identity. The
// decoder calls Resolve for type-reference values, for enum type tags,
// and for nothing else. Implementations must be safe for concurrent
// use.
type Resolver interface {
	Resolve(name string) (*Type, error)
}

// Fallback selects what a [Context] does with an unqualified name that
// neither the well-known table nor the default module defines.
type Fallback string

const (
	// FallbackNone fails the lookup. Unqualified names only ever
	// resolve to core types or the default module.
	FallbackNone Fallback = "none"

	// FallbackUnique searches the extra modules and succeeds only if
	// exactly one of them defines the name.
	FallbackUnique Fallback = "unique"

	// FallbackFirst searches the extra modules in registration order
	// and takes the first match.
	FallbackFirst Fallback = "first"
)

// ParseFallback validates a fallback policy name.
func ParseFallback(name string) (Fallback, error) {
	switch Fallback(name) {
	case FallbackNone, FallbackUnique, FallbackFirst:
		return Fallback(name), nil
	case "":
		return FallbackNone, nil
	}
	return "", fmt.Errorf("unknown resolution fallback %q (want none, unique, or first)", name)
}

// Context resolves type names the way the runtime does for attribute
// blobs: an assembly-qualified name goes to the named module; an
// unqualified name is looked up in the well-known core types first and
// then in the default module (the module that declares the attribute).
// A Context is immutable after construction.
type Context struct {
	wellKnown     *Module
	defaultModule *Module
	modules       map[string]*Module
	order         []*Module
	fallback      Fallback
}

// ContextOption configures a [Context].
type ContextOption func(*Context)

// WithModules registers additional modules reachable through
// assembly-qualified names (and through the fallback policy).
func WithModules(modules ...*Module) ContextOption {
	return func(c *Context) {
		for _, module := range modules {
			if module == nil {
				continue
			}
			if _, exists := c.modules[module.Name()]; exists {
				continue
			}
			c.modules[module.Name()] = module
			c.order = append(c.order, module)
		}
	}
}

// WithFallback sets the policy for unqualified names that miss both
// the well-known table and the default module.
func WithFallback(fallback Fallback) ContextOption {
	return func(c *Context) {
		c.fallback = fallback
	}
}

// NewContext returns a resolution context whose default module is
// defaultModule (which may be nil when every name is core or
// qualified).
func NewContext(defaultModule *Module, options ...ContextOption) *Context {
	context := &Context{
		wellKnown:     WellKnown(),
		defaultModule: defaultModule,
		modules:       make(map[string]*Module),
		fallback:      FallbackNone,
	}
	if defaultModule != nil {
		context.modules[defaultModule.Name()] = defaultModule
	}
	for _, option := range options {
		option(context)
	}
	return context
}

// DefaultModule returns the module consulted after the core types.
func (c *Context) DefaultModule() *Module { return c.defaultModule }

// Resolve implements [Resolver]. Array names ("Ns.Kind[]") resolve to
// array types over the resolved element.
func (c *Context) Resolve(name string) (*Type, error) {
	typeName, assembly := ParseTypeName(name)
	elementName, rank := splitArraySuffix(typeName)

	resolved, err := c.resolveElement(elementName, assembly)
	if err != nil {
		return nil, err
	}
	for range rank {
		resolved = ArrayOf(resolved)
	}
	return resolved, nil
}

func (c *Context) resolveElement(name, assembly string) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrTypeNotFound)
	}

	if assembly != "" {
		if coreAssemblies[assembly] {
			if t, ok := c.wellKnown.Lookup(name); ok {
				return t, nil
			}
			return nil, fmt.Errorf("%w: %s in core library", ErrTypeNotFound, name)
		}
		module, ok := c.modules[assembly]
		if !ok {
			return nil, fmt.Errorf("%w: %s (module %s is not loaded)", ErrTypeNotFound, name, assembly)
		}
		if t, ok := module.Lookup(name); ok {
			return t, nil
		}
		return nil, fmt.Errorf("%w: %s in module %s", ErrTypeNotFound, name, assembly)
	}

	if t, ok := c.wellKnown.Lookup(name); ok {
		return t, nil
	}
	if c.defaultModule != nil {
		if t, ok := c.defaultModule.Lookup(name); ok {
			return t, nil
		}
	}
	return c.resolveFallback(name)
}

func (c *Context) resolveFallback(name string) (*Type, error) {
	if c.fallback == FallbackNone || c.fallback == "" {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}

	var found *Type
	var foundIn []string
	for _, module := range c.order {
		if module == c.defaultModule {
			continue
		}
		t, ok := module.Lookup(name)
		if !ok {
			continue
		}
		if c.fallback == FallbackFirst {
			return t, nil
		}
		if found == nil {
			found = t
		}
		foundIn = append(foundIn, module.Name())
	}

	switch len(foundIn) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	case 1:
		return found, nil
	default:
		return nil, fmt.Errorf("%w: %s is defined in %v", ErrAmbiguousType, name, foundIn)
	}
}
