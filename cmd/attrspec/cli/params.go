// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by flag groups that register their own
// flags. [TypeOptions] is one: every decoding command shares its
// --types, --module, and --fallback flags.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams returns a flag set bound to the tagged fields of
// params, a pointer to a struct. It panics if params cannot be bound:
// parameter structs are fixed at compile time, so that is a bug in the
// command, not bad input.
//
//	var params decodeParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("decode", &params)
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for each tagged field of params.
//
// Tags:
//
//   - flag:"name" or flag:"name,n": long name and optional shorthand.
//     Untagged fields are skipped.
//   - desc:"text": help text.
//   - default:"value": default, parsed like a command-line value.
//
// Field types: string, bool, int, int64, []string (repeatable, no comma
// splitting), and any type whose pointer implements [pflag.Value], such
// as capture.Compression. A struct field whose pointer implements
// [FlagBinder] binds through AddFlags; other embedded structs are
// walked recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for i := range structValue.NumField() {
		field := structValue.Type().Field(i)
		fieldValue := structValue.Field(i)
		if !field.IsExported() {
			continue
		}

		if binder, ok := fieldValue.Addr().Interface().(FlagBinder); ok {
			binder.AddFlags(flagSet)
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag, ok := field.Tag.Lookup("flag")
		if !ok || tag == "" {
			continue
		}
		spec := flagSpec{
			description:  field.Tag.Get("desc"),
			defaultValue: field.Tag.Get("default"),
		}
		spec.name, spec.shorthand = parseFlagTag(tag)
		if err := spec.bind(fieldValue.Addr().Interface(), flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// parseFlagTag splits "name" into ("name", "") and "name,n" into
// ("name", "n").
func parseFlagTag(tag string) (name, shorthand string) {
	name, shorthand, _ = strings.Cut(tag, ",")
	return name, shorthand
}

// flagSpec is one parsed field tag.
type flagSpec struct {
	name, shorthand string
	description     string
	defaultValue    string
}

func (s flagSpec) bind(target any, flagSet *pflag.FlagSet) error {
	switch target := target.(type) {
	case pflag.Value:
		if s.defaultValue != "" {
			if err := target.Set(s.defaultValue); err != nil {
				return s.badDefault(err)
			}
		}
		flagSet.VarP(target, s.name, s.shorthand, s.description)
	case *string:
		flagSet.StringVarP(target, s.name, s.shorthand, s.defaultValue, s.description)
	case *bool:
		value, err := parseDefault(s.defaultValue, strconv.ParseBool)
		if err != nil {
			return s.badDefault(err)
		}
		flagSet.BoolVarP(target, s.name, s.shorthand, value, s.description)
	case *int:
		value, err := parseDefault(s.defaultValue, strconv.Atoi)
		if err != nil {
			return s.badDefault(err)
		}
		flagSet.IntVarP(target, s.name, s.shorthand, value, s.description)
	case *int64:
		value, err := parseDefault(s.defaultValue, func(text string) (int64, error) {
			return strconv.ParseInt(text, 10, 64)
		})
		if err != nil {
			return s.badDefault(err)
		}
		flagSet.Int64VarP(target, s.name, s.shorthand, value, s.description)
	case *[]string:
		var value []string
		if s.defaultValue != "" {
			value = strings.Split(s.defaultValue, ",")
		}
		flagSet.StringArrayVarP(target, s.name, s.shorthand, value, s.description)
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, s.name)
	}
	return nil
}

func (s flagSpec) badDefault(err error) error {
	return fmt.Errorf("default for --%s: %w", s.name, err)
}

func parseDefault[T any](text string, parse func(string) (T, error)) (T, error) {
	if text == "" {
		var zero T
		return zero, nil
	}
	return parse(text)
}
