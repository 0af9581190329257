// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/typesys"
	"github.com/bureau-foundation/attrspec/lib/tui"
)

type validateParams struct {
	BlobInput
	Strict bool `flag:"strict" desc:"also require the blob to match the canonical encoding byte for byte"`
}

func validateCommand() *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check whether a blob decodes against a constructor",
		Description: `Decode a blob and report whether it is well formed. Exits 0 with
"valid" on success, exits 1 with the decode error (stage, byte offset,
and argument index) if not.

With --strict, a blob that decodes is also re-encoded and compared
byte for byte. Compilers are free to choose some encodings (for
example the type tag written for a boxed value), so a blob can be
valid without being canonical.`,
		Usage: "attrspec validate --ctor SIGNATURE [--hex] [--strict] [file]",
		Examples: []cli.Example{
			{
				Description: "Validate a blob file",
				Command:     "attrspec validate --ctor 'Contoso.Widgets.SizeAttribute(int)' -t widgets.yaml size.bin",
			},
			{
				Description: "Validate hex from a pipeline",
				Command:     "echo '01 00 07 00 00 00 00 00' | attrspec validate --hex --ctor 'Contoso.Widgets.SizeAttribute(int)' -t widgets.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			environment, constructor, err := params.load(logger)
			if err != nil {
				return err
			}
			data, err := params.read("validate", args, environment)
			if err != nil {
				return err
			}
			if !validateBlob(os.Stdout, constructor, data, environment.Context, params.Strict) {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// validateBlob writes a verdict for data to w and reports whether the
// blob is valid.
func validateBlob(w io.Writer, constructor *typesys.Constructor, data []byte, resolver typesys.Resolver, strict bool) bool {
	styles := tui.NewStyles(w, tui.DefaultTheme)

	spec, err := attrspec.Parse(constructor, data, resolver)
	if err != nil {
		fmt.Fprintln(w, styles.Error.Render("invalid: "+err.Error()))
		return false
	}

	if strict {
		canonical, err := attrspec.Marshal(spec)
		if err != nil {
			fmt.Fprintln(w, styles.Error.Render("invalid: re-encode: "+err.Error()))
			return false
		}
		if !bytes.Equal(data, canonical) {
			fmt.Fprintln(w, styles.Error.Render(describeMismatch(data, canonical)))
			return false
		}
	}

	fmt.Fprintln(w, styles.Success.Render("valid"))
	return true
}

func describeMismatch(original, canonical []byte) string {
	offset := 0
	minLength := min(len(original), len(canonical))
	for offset < minLength && original[offset] == canonical[offset] {
		offset++
	}
	return fmt.Sprintf("not canonical: first difference at byte %d (original %d bytes, canonical %d bytes)",
		offset, len(original), len(canonical))
}
