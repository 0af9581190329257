// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/codec"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

type decodeParams struct {
	BlobInput
	cli.JSONOutput
	CBOR bool `flag:"cbor" desc:"write the decoded document as CBOR"`
}

func decodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode one custom attribute blob",
		Description: `Decode a custom attribute blob against its constructor signature and
print the positional and named arguments.

The blob is read from the trailing file argument, or from stdin. With
--hex the input is hex text ("01 00 | 07 00 00 00 | 00 00").

Type names in the signature and inside the blob resolve against the
core library types and the modules loaded with --types (or the
manifests in the config file). Unqualified names look in the default
module (--module) first.

Output is a text table by default. --json writes the document form
that "attrspec encode" reads back; --cbor writes the same document as
CBOR.`,
		Usage: "attrspec decode --ctor SIGNATURE [--hex] [--json | --cbor] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a hex blob with core-only parameter types",
				Command:     "echo '01 00 07 00 00 00 00 00' | attrspec decode --hex --ctor 'Contoso.Widgets.SizeAttribute(int)' -t widgets.yaml",
			},
			{
				Description: "Decode a raw blob file to JSON",
				Command:     "attrspec decode --ctor 'Contoso.Widgets.ColorAttribute(Contoso.Widgets.Shade)' -t widgets.yaml --json color.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if params.OutputJSON && params.CBOR {
				return fmt.Errorf("--json and --cbor are mutually exclusive")
			}
			environment, constructor, err := params.load(logger)
			if err != nil {
				return err
			}
			data, err := params.read("decode", args, environment)
			if err != nil {
				return err
			}

			spec, document, err := decodeBlob(constructor, data, environment.Context)
			if err != nil {
				return err
			}
			logger.Debug("decoded blob",
				"constructor", constructor.Signature(),
				"bytes", len(data),
				"named", len(document.Named),
			)

			if params.CBOR {
				return writeCBOR(os.Stdout, document)
			}
			if done, err := params.EmitJSON(os.Stdout, document); done {
				return err
			}
			return writeText(os.Stdout, spec, document.Digest)
		},
	}
}

// decodeBlob parses data and returns the spec with its document form.
// The document carries the blob digest.
func decodeBlob(constructor *typesys.Constructor, data []byte, resolver typesys.Resolver) (*attrspec.Spec, attrspec.Document, error) {
	spec, err := attrspec.Parse(constructor, data, resolver)
	if err != nil {
		return nil, attrspec.Document{}, err
	}
	document := attrspec.NewDocument(spec)
	document.Digest = binhash.FormatDigest(binhash.BlobDigest(constructor.Signature(), data))
	return spec, document, nil
}

func writeCBOR(w io.Writer, document attrspec.Document) error {
	data, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode CBOR: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeText prints a spec as an aligned table, one row per argument.
func writeText(w io.Writer, spec *attrspec.Spec, digest string) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "attribute\t%s\n", spec.Attribute().QualifiedName())
	fmt.Fprintf(tw, "constructor\t%s\n", spec.Constructor().Signature())
	if digest != "" {
		fmt.Fprintf(tw, "digest\t%s\n", digest)
	}
	params := spec.Constructor().Params
	for index, arg := range spec.Args() {
		fmt.Fprintf(tw, "argument %d\t%s\t%s\n", index, params[index].Name, arg)
	}
	for _, argument := range spec.NamedArgs() {
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", argument.Kind, argument.Name, argument.Type, argument.Value)
	}
	return tw.Flush()
}
