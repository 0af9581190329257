// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Source is the hand-written form of a capture: YAML or JSONC with
// blobs as hex dumps.
//
//	module: Contoso.Widgets
//	records:
//	  - site: Contoso.Widgets.Button
//	    ctor: Contoso.Widgets.ColorAttribute(Contoso.Widgets.Shade)
//	    blob: 01 00 | 01 | 00 00
type Source struct {
	// Module is the default module for records that name none.
	Module  string         `yaml:"module,omitempty" json:"module,omitempty"`
	Records []SourceRecord `yaml:"records"          json:"records"`
}

// SourceRecord is one entry of a [Source].
type SourceRecord struct {
	Site        string `yaml:"site,omitempty"   json:"site,omitempty"`
	Constructor string `yaml:"ctor"             json:"ctor"`
	Module      string `yaml:"module,omitempty" json:"module,omitempty"`
	Blob        string `yaml:"blob"             json:"blob"`
}

// LoadSource reads a source file. The format follows the extension as
// for type manifests: .json/.jsonc for JSONC, anything else YAML.
func LoadSource(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	records, err := ParseSource(data, typesys.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	return records, nil
}

// ParseSource parses source data in the given format ("yaml" or
// "jsonc") into records.
func ParseSource(data []byte, format string) ([]Record, error) {
	var source Source
	if err := typesys.DecodeDocument(data, format, &source); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(source.Records))
	for i, entry := range source.Records {
		decoded, err := blob.ParseHex(entry.Blob)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		record := Record{
			Site:        entry.Site,
			Constructor: entry.Constructor,
			Module:      entry.Module,
			Blob:        decoded,
		}
		if record.Module == "" {
			record.Module = source.Module
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, record.Label(), err)
		}
		records = append(records, record)
	}
	return records, nil
}
