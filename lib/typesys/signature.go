// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"fmt"
	"strings"
)

// Constructor identifies one constructor of an attribute type: the
// declaring type and the ordered parameter types. It is the only
// schema the blob decoder receives.
type Constructor struct {
	Owner  *Type
	Params []*Type
}

// Signature renders the constructor as "Owner(Param1, Param2)" using
// full type names. The result parses back with [ParseConstructor]
// against the same resolver and serves as the constructor's identity
// in registries.
func (c *Constructor) Signature() string {
	var builder strings.Builder
	builder.WriteString(c.Owner.Name)
	builder.WriteByte('(')
	for index, param := range c.Params {
		if index > 0 {
			builder.WriteString(", ")
		}
		if qualified := param.QualifiedName(); qualified != param.Name {
			builder.WriteString("[" + qualified + "]")
		} else {
			builder.WriteString(param.Name)
		}
	}
	builder.WriteByte(')')
	return builder.String()
}

func (c *Constructor) String() string { return c.Signature() }

// ParseConstructor parses "Owner(Type, Type[], ...)" and resolves each
// name through resolver. Parameter names may use C# keywords
// ("int", "string", "object", "type") and a "[]" suffix for arrays.
// The owner must resolve to a class type.
func ParseConstructor(signature string, resolver Resolver) (*Constructor, error) {
	open := strings.IndexByte(signature, '(')
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(signature), ")") {
		return nil, fmt.Errorf("constructor signature %q: want Owner(Param, ...)", signature)
	}

	ownerName := strings.TrimSpace(signature[:open])
	owner, err := resolver.Resolve(ownerName)
	if err != nil {
		return nil, fmt.Errorf("constructor owner: %w", err)
	}
	if owner.Kind != Class {
		return nil, fmt.Errorf("constructor owner %s is a %s, not a class", owner.Name, owner.Kind)
	}

	body := strings.TrimSpace(signature)
	body = strings.TrimSpace(body[open+1 : len(body)-1])

	constructor := &Constructor{Owner: owner}
	if body == "" {
		return constructor, nil
	}
	for index, paramName := range splitParams(body) {
		param, err := resolveParam(paramName, resolver)
		if err != nil {
			return nil, fmt.Errorf("constructor parameter %d: %w", index, err)
		}
		constructor.Params = append(constructor.Params, param)
	}
	return constructor, nil
}

// resolveParam resolves one parameter name, expanding keyword aliases
// for the element type.
func resolveParam(name string, resolver Resolver) (*Type, error) {
	name = strings.TrimSpace(name)
	elementName, rank := splitArraySuffix(name)
	if kind, ok := keywordAliases[elementName]; ok {
		resolved := MustPrimitive(kind)
		for range rank {
			resolved = ArrayOf(resolved)
		}
		return resolved, nil
	}
	return resolver.Resolve(name)
}

// splitParams splits a parameter list on top-level commas. An
// assembly-qualified parameter must be wrapped in brackets
// ("[Ns.T, Asm]") to keep its comma from splitting.
func splitParams(body string) []string {
	var params []string
	depth := 0
	start := 0
	for index, r := range body {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, unbracket(body[start:index]))
				start = index + 1
			}
		}
	}
	return append(params, unbracket(body[start:]))
}

func unbracket(param string) string {
	param = strings.TrimSpace(param)
	if strings.HasPrefix(param, "[") && strings.HasSuffix(param, "]") && !strings.HasSuffix(param, "[]") {
		return strings.TrimSpace(param[1 : len(param)-1])
	}
	return param
}
