// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Document is the serializable form of a [Spec], used for CLI --json
// output, CBOR capture results, and as the input to the encoder.
// Converting a spec to a document and back yields an equal spec.
type Document struct {
	Attribute   string          `json:"attribute"`
	Constructor string          `json:"constructor"`
	Digest      string          `json:"digest,omitempty"`
	Arguments   []ValueDocument `json:"arguments"`
	Named       []NamedDocument `json:"named"`
}

// NamedDocument is the serializable form of a [NamedArgument].
type NamedDocument struct {
	Kind  string        `json:"kind"`
	Name  string        `json:"name"`
	Type  string        `json:"type"`
	Value ValueDocument `json:"value"`
}

// ValueDocument is the serializable form of a [Value].
//
// Value holds scalars as JSON-native values (bool, number, string).
// 64-bit integers outside the float64-exact range and non-finite
// floats are written as strings so no precision is lost. Enum values
// carry both the raw number and, when it has one, the member name.
type ValueDocument struct {
	Type     string          `json:"type"`
	Boxed    bool            `json:"boxed,omitempty"`
	Null     bool            `json:"null,omitempty"`
	Value    any             `json:"value,omitempty"`
	Member   string          `json:"member,omitempty"`
	Elements []ValueDocument `json:"elements,omitempty"`
}

// maxExactInteger is the largest magnitude a float64 holds exactly.
const maxExactInteger = 1 << 53

// NewDocument converts a spec to its document form.
func NewDocument(spec *Spec) Document {
	document := Document{
		Attribute:   spec.Attribute().Name,
		Constructor: spec.Constructor().Signature(),
		Arguments:   make([]ValueDocument, len(spec.args)),
		Named:       make([]NamedDocument, len(spec.named)),
	}
	for i, arg := range spec.args {
		document.Arguments[i] = NewValueDocument(arg)
	}
	for i, argument := range spec.named {
		document.Named[i] = NamedDocument{
			Kind:  argument.Kind.String(),
			Name:  argument.Name,
			Type:  argument.Type.String(),
			Value: NewValueDocument(argument.Value),
		}
	}
	return document
}

// NewValueDocument converts one value to its document form.
func NewValueDocument(value Value) ValueDocument {
	document := ValueDocument{Boxed: value.Boxed, Null: value.null}
	if value.Type == nil {
		return document
	}
	document.Type = value.Type.QualifiedName()
	if value.null {
		return document
	}

	switch value.Type.Kind {
	case typesys.String:
		document.Value = value.str
	case typesys.SystemType:
		document.Value = value.ref.QualifiedName()
	case typesys.SZArray:
		document.Elements = make([]ValueDocument, len(value.elems))
		for i, elem := range value.elems {
			document.Elements[i] = NewValueDocument(elem)
		}
	case typesys.Enum:
		document.Value = integerDocument(value)
		document.Member, _ = value.Type.MemberName(value.AsInt())
	case typesys.Single, typesys.Double:
		f := value.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			document.Value = strconv.FormatFloat(f, 'g', -1, 64)
		} else {
			document.Value = f
		}
	case typesys.Boolean:
		document.Value = value.AsBool()
	default:
		document.Value = integerDocument(value)
	}
	return document
}

func integerDocument(value Value) any {
	if value.Kind().IsSigned() {
		v := value.AsInt()
		if v > maxExactInteger || v < -maxExactInteger {
			return strconv.FormatInt(v, 10)
		}
		return v
	}
	v := value.AsUint()
	if v > maxExactInteger {
		return strconv.FormatUint(v, 10)
	}
	return v
}

// Spec converts the document back to a spec. The constructor must
// match the document's constructor signature; type names are resolved
// with resolver.
func (d Document) Spec(constructor *typesys.Constructor, resolver typesys.Resolver) (*Spec, error) {
	if err := checkConstructor(constructor); err != nil {
		return nil, err
	}
	if len(d.Arguments) != len(constructor.Params) {
		return nil, fmt.Errorf("constructor %s takes %d arguments, document has %d",
			constructor.Owner.Name, len(constructor.Params), len(d.Arguments))
	}

	args := make([]Value, len(d.Arguments))
	for i, document := range d.Arguments {
		value, err := document.value(constructor.Params[i], resolver)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = value
	}

	home := constructor.Owner.Module
	named := make([]NamedArgument, len(d.Named))
	for i, document := range d.Named {
		kind, err := ParseMemberKind(document.Kind)
		if err != nil {
			return nil, fmt.Errorf("named argument %d: %w", i, err)
		}
		descriptor, err := ParseDescriptor(document.Type, resolver, home)
		if err != nil {
			return nil, fmt.Errorf("named argument %d (%s): %w", i, document.Name, err)
		}
		slot, err := descriptor.Resolve(resolver)
		if err != nil {
			return nil, fmt.Errorf("named argument %d (%s): %w", i, document.Name, err)
		}
		value, err := document.Value.value(slot, resolver)
		if err != nil {
			return nil, fmt.Errorf("named argument %d (%s): %w", i, document.Name, err)
		}
		named[i] = NamedArgument{
			Kind:  kind,
			Name:  document.Name,
			Type:  descriptor,
			Value: value,
			Owner: constructor.Owner,
		}
	}
	return NewSpec(constructor, args, named)
}

// value converts a document to a value for a slot of static type slot.
func (d ValueDocument) value(slot *typesys.Type, resolver typesys.Resolver) (Value, error) {
	if slot.Kind == typesys.Object {
		if d.Type == "" {
			return Value{}, fmt.Errorf("boxed value needs a type")
		}
		actual, err := resolver.Resolve(d.Type)
		if err != nil {
			return Value{}, err
		}
		if actual.Kind == typesys.Object {
			return Value{}, fmt.Errorf("%w: boxed value typed as object", ErrUnsupportedArgumentType)
		}
		inner := d
		inner.Boxed = false
		value, err := inner.value(actual, resolver)
		if err != nil {
			return Value{}, err
		}
		return Box(value), nil
	}

	switch slot.Kind {
	case typesys.String:
		if d.Null {
			return NullString(), nil
		}
		text, ok := d.Value.(string)
		if !ok && d.Value != nil {
			return Value{}, fmt.Errorf("string value is %T", d.Value)
		}
		return String(text), nil

	case typesys.SystemType:
		if d.Null {
			return TypeRef(nil), nil
		}
		name, ok := d.Value.(string)
		if !ok {
			return Value{}, fmt.Errorf("type value is %T, want a type name", d.Value)
		}
		ref, err := resolver.Resolve(name)
		if err != nil {
			return Value{}, err
		}
		return TypeRef(ref), nil

	case typesys.SZArray:
		if d.Null {
			return NullArray(slot.Elem), nil
		}
		elems := make([]Value, len(d.Elements))
		for i, element := range d.Elements {
			elem, err := element.value(slot.Elem, resolver)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = elem
		}
		return Array(slot.Elem, elems...), nil

	case typesys.Enum:
		if d.Member != "" && d.Value == nil {
			for _, member := range slot.Members {
				if member.Name == d.Member {
					return Enum(slot, member.Value), nil
				}
			}
			return Value{}, fmt.Errorf("enum %s has no member %s", slot.Name, d.Member)
		}
		raw, err := documentInteger(d.Value, slot.Underlying)
		if err != nil {
			return Value{}, fmt.Errorf("enum %s: %w", slot.Name, err)
		}
		return Value{Type: slot, bits: raw}, nil

	case typesys.Boolean:
		b, ok := d.Value.(bool)
		if !ok {
			return Value{}, fmt.Errorf("bool value is %T", d.Value)
		}
		return Bool(b), nil

	case typesys.Single, typesys.Double:
		f, err := documentFloat(d.Value)
		if err != nil {
			return Value{}, err
		}
		if slot.Kind == typesys.Single {
			return Float32(float32(f)), nil
		}
		return Float64(f), nil
	}

	if slot.Kind.IsIntegral() {
		raw, err := documentInteger(d.Value, slot.Kind)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: slot, bits: raw}, nil
	}
	return Value{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedArgumentType, slot.Name, slot.Kind)
}

// documentInteger accepts the numeric forms JSON and CBOR decoders
// produce (float64, json.Number, int64, uint64, decimal strings) and
// returns raw bits for kind, checking range.
func documentInteger(v any, kind typesys.Kind) (uint64, error) {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = n
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		text = strconv.FormatFloat(n, 'f', -1, 64)
	case int64:
		text = strconv.FormatInt(n, 10)
	case uint64:
		text = strconv.FormatUint(n, 10)
	case int:
		text = strconv.Itoa(n)
	default:
		return 0, fmt.Errorf("integer value is %T", v)
	}

	bits := kind.Size() * 8
	if kind.IsSigned() {
		n, err := strconv.ParseInt(text, 10, bits)
		if err != nil {
			return 0, fmt.Errorf("%s value %s: %w", kind, text, err)
		}
		return uint64(n), nil
	}
	n, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s value %s: %w", kind, text, err)
	}
	return n, nil
}

func documentFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	}
	return 0, fmt.Errorf("float value is %T", v)
}
