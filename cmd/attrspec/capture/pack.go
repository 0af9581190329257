// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/capture"
)

type packParams struct {
	Compression capture.Compression `flag:"compression,z" desc:"payload compression: none, lz4, or zstd" default:"lz4"`
}

func packCommand() *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Write a capture file from a YAML or JSONC source",
		Description: `Read a capture source (YAML, or JSONC for .json/.jsonc paths) and
write the binary capture file.

Records that name no module inherit the source's top-level "module".
Every record needs a constructor signature and a blob of at least the
two prolog bytes. When compression does not shrink the payload, the
file is written uncompressed.`,
		Usage: "attrspec capture pack [--compression none|lz4|zstd] SOURCE OUTPUT",
		Examples: []cli.Example{
			{
				Description: "Pack with the default LZ4 compression",
				Command:     "attrspec capture pack widgets.capture.yaml widgets.atcp",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pack", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("pack takes a source file and an output path, got %d arguments", len(args))
			}
			header, err := packCapture(args[0], args[1], params.Compression)
			if err != nil {
				return err
			}
			logger.Info("wrote capture",
				"path", args[1],
				"records", header.Records,
				"compression", header.Compression.String(),
				"payload_bytes", header.PayloadSize,
			)
			return nil
		},
	}
}

// packCapture converts a source file into a capture file.
func packCapture(source, output string, compression capture.Compression) (capture.Header, error) {
	records, err := capture.LoadSource(source)
	if err != nil {
		return capture.Header{}, err
	}
	if len(records) == 0 {
		return capture.Header{}, fmt.Errorf("source %s has no records", source)
	}
	return capture.WriteFile(output, records, compression)
}
