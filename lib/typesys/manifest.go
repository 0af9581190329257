// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of a module's type table. It is
// how modules reach the resolver without a metadata reader: whoever
// extracts attribute blobs also writes the types they reference.
//
//	module: Contoso.Widgets
//	types:
//	  - name: Contoso.Widgets.ColorAttribute
//	    kind: class
//	  - name: Contoso.Widgets.Shade
//	    kind: enum
//	    underlying: byte
//	    members: {Light: 0, Dark: 1}
type Manifest struct {
	Module string         `yaml:"module" json:"module"`
	Types  []ManifestType `yaml:"types"  json:"types"`
}

// ManifestType describes one type in a [Manifest].
type ManifestType struct {
	Name string `yaml:"name" json:"name"`

	// Kind is "class" or "enum".
	Kind string `yaml:"kind" json:"kind"`

	// Underlying is the enum's storage kind ("int", "byte", "uint64",
	// ...). Defaults to int32.
	Underlying string `yaml:"underlying,omitempty" json:"underlying,omitempty"`

	// Members maps enum member names to values.
	Members map[string]int64 `yaml:"members,omitempty" json:"members,omitempty"`
}

// LoadManifest reads a manifest file and builds its module. The format
// follows the extension: .yaml/.yml for YAML, .json/.jsonc for JSON
// with comments.
func LoadManifest(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	module, err := ParseManifest(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return module, nil
}

// FormatFromPath returns "jsonc" for .json/.jsonc paths and "yaml"
// otherwise.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return "jsonc"
	}
	return "yaml"
}

// DecodeDocument unmarshals a YAML or JSONC document into target.
// Unknown fields are rejected in both formats so that typos in
// hand-written files surface immediately.
func DecodeDocument(data []byte, format string, target any) error {
	switch format {
	case "yaml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(target); err != nil {
			return fmt.Errorf("parse YAML: %w", err)
		}
	case "jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(target); err != nil {
			return fmt.Errorf("parse JSONC: %w", err)
		}
	default:
		return fmt.Errorf("unknown document format %q", format)
	}
	return nil
}

// ParseManifest parses manifest data in the given format ("yaml" or
// "jsonc") and builds its module.
func ParseManifest(data []byte, format string) (*Module, error) {
	var manifest Manifest
	if err := DecodeDocument(data, format, &manifest); err != nil {
		return nil, err
	}
	return manifest.Build()
}

// Build converts the manifest into a [Module].
func (m *Manifest) Build() (*Module, error) {
	definitions := make([]Type, 0, len(m.Types))
	for _, entry := range m.Types {
		definition, err := entry.definition()
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}
	return NewModule(m.Module, definitions)
}

func (entry ManifestType) definition() (Type, error) {
	switch entry.Kind {
	case "class", "":
		if len(entry.Members) > 0 || entry.Underlying != "" {
			return Type{}, fmt.Errorf("type %s: only enums have members or an underlying kind", entry.Name)
		}
		return Type{Kind: Class, Name: entry.Name}, nil

	case "enum":
		underlying := Int32
		if entry.Underlying != "" {
			kind, ok := ParseKind(entry.Underlying)
			if !ok || !kind.IsIntegral() {
				return Type{}, fmt.Errorf("enum %s: invalid underlying kind %q", entry.Name, entry.Underlying)
			}
			underlying = kind
		}
		members := make([]EnumMember, 0, len(entry.Members))
		for name, value := range entry.Members {
			members = append(members, EnumMember{Name: name, Value: value})
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].Value != members[j].Value {
				return members[i].Value < members[j].Value
			}
			return members[i].Name < members[j].Name
		})
		return Type{Kind: Enum, Name: entry.Name, Underlying: underlying, Members: members}, nil
	}
	return Type{}, fmt.Errorf("type %s: unknown kind %q (want class or enum)", entry.Name, entry.Kind)
}
