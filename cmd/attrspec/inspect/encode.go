// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

type encodeParams struct {
	Types       cli.TypeOptions
	Constructor string `flag:"ctor"  desc:"constructor signature (default: the document's constructor)"`
	HexOutput   bool   `flag:"hex,x" desc:"write hex text instead of raw bytes"`
}

func encodeCommand() *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a JSON attribute document as a blob",
		Description: `Read an attribute document (the JSON that "attrspec decode --json"
writes) from the trailing file argument or stdin, and write the
equivalent custom attribute blob to stdout.

The constructor comes from --ctor, or from the document's "constructor"
field when --ctor is not given. Raw bytes are written by default; use
--hex for a readable dump.`,
		Usage: "attrspec encode [--ctor SIGNATURE] [--hex] [file]",
		Examples: []cli.Example{
			{
				Description: "Round-trip: decode to JSON, encode back",
				Command:     "attrspec decode --ctor 'Contoso.Widgets.SizeAttribute(int)' -t widgets.yaml --json size.bin | attrspec encode -t widgets.yaml > copy.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encode", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			environment, err := params.Types.Load(logger)
			if err != nil {
				return err
			}
			data, remaining, err := readInput(args, false, stdin, environment.Config.Decode.MaxBlobSize)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return fmt.Errorf("encode takes no positional arguments besides an optional file path, got %q", remaining[0])
			}
			encoded, err := encodeDocument(data, params.Constructor, environment.Context)
			if err != nil {
				return err
			}
			return writeBlob(os.Stdout, encoded, params.HexOutput)
		},
	}
}

// encodeDocument parses a JSON document and encodes it. signature
// overrides the document's constructor when set.
func encodeDocument(data []byte, signature string, resolver typesys.Resolver) ([]byte, error) {
	var document attrspec.Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	if signature == "" {
		signature = document.Constructor
	}
	if signature == "" {
		return nil, fmt.Errorf("document has no constructor; pass --ctor")
	}
	constructor, err := typesys.ParseConstructor(signature, resolver)
	if err != nil {
		return nil, err
	}

	spec, err := document.Spec(constructor, resolver)
	if err != nil {
		return nil, err
	}
	return attrspec.Marshal(spec)
}

func writeBlob(w io.Writer, data []byte, hexOutput bool) error {
	if hexOutput {
		_, err := fmt.Fprintln(w, blob.FormatHex(data))
		return err
	}
	_, err := w.Write(data)
	return err
}
