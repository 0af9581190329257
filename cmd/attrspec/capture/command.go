// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
)

// Command returns the "capture" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "capture",
		Summary: "Pack, list, and batch-decode capture files",
		Description: `A capture file holds many attribute blobs together with the
constructor signature and module each one needs for decoding. Tools
that extract attributes from compiled modules write captures; attrspec
decodes them in bulk.

Captures are written from a YAML or JSONC source file ("pack"), where
each blob is a hex dump. The binary form is a CBOR sequence of records,
optionally LZ4 or zstd compressed, behind a fixed header.

"decode" runs every record through a pool of decoders. Decoded
documents are cached by blob digest (see "attrspec cache"), so
re-decoding an unchanged capture is a cache lookup per record.`,
		Subcommands: []*cli.Command{
			packCommand(),
			listCommand(),
			decodeCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Pack a source file with zstd compression",
				Command:     "attrspec capture pack --compression zstd widgets.capture.yaml widgets.atcp",
			},
			{
				Description: "Decode every record, four at a time",
				Command:     "attrspec capture decode -t widgets.yaml --workers 4 widgets.atcp",
			},
		},
	}
}
