// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/blob"
	"github.com/bureau-foundation/attrspec/lib/typesys"
	"github.com/bureau-foundation/attrspec/lib/tui"
)

// maxDumpBytes is the widest byte column in a dump; longer spans are
// elided in the middle.
const maxDumpBytes = 12

func diagCommand() *cli.Command {
	var params BlobInput

	return &cli.Command{
		Name:    "diag",
		Summary: "Annotated byte dump of a custom attribute blob",
		Description: `Decode a blob and print every element next to the bytes it came from:
the prolog, each positional argument, the named argument count, and for
each named argument its kind, type tag, name, and value. Array elements
are indented under their array.

When the blob is malformed, the dump stops at the failing offset and
shows the remaining bytes with the decode error, so you can see exactly
where the encoder and decoder disagree.`,
		Usage: "attrspec diag --ctor SIGNATURE [--hex] [file]",
		Examples: []cli.Example{
			{
				Description: "Dump a hex blob",
				Command:     "echo '01 00 | 01 00 00 00 | 07 00 00 00 | 00 00' | attrspec diag --hex --ctor 'Contoso.Widgets.SizeAttribute(int[])' -t widgets.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("diag", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			environment, constructor, err := params.load(logger)
			if err != nil {
				return err
			}
			data, err := params.read("diag", args, environment)
			if err != nil {
				return err
			}
			return diagBlob(os.Stdout, constructor, data, environment.Context)
		},
	}
}

// diagBlob writes an annotated dump of data. A decode failure is
// rendered into the dump and also returned.
func diagBlob(w io.Writer, constructor *typesys.Constructor, data []byte, resolver typesys.Resolver) error {
	styles := tui.NewStyles(w, tui.DefaultTheme)

	var spans []attrspec.Span
	_, parseErr := attrspec.Parse(constructor, data, resolver, attrspec.WithTrace(func(span attrspec.Span) {
		spans = append(spans, span)
	}))

	fmt.Fprintln(w, styles.Header.Render(constructor.Signature()))
	fmt.Fprintln(w, styles.Faint.Render(fmt.Sprintf("%d bytes", len(data))))

	offsetWidth := max(4, len(fmt.Sprintf("%x", len(data))))
	end := 0
	for _, span := range spans {
		writeRow(w, styles, offsetWidth, span.Offset, data[span.Offset:span.Offset+span.Length],
			styles.Depth(span.Depth).Render(strings.Repeat("  ", span.Depth)+span.Label))
		end = max(end, span.Offset+span.Length)
	}

	if parseErr != nil {
		if end < len(data) {
			writeRow(w, styles, offsetWidth, end, data[end:], styles.Faint.Render("(not decoded)"))
		}
		fmt.Fprintln(w, styles.Error.Render("error: "+parseErr.Error()))
		return parseErr
	}
	return nil
}

func writeRow(w io.Writer, styles *tui.Styles, offsetWidth, offset int, raw []byte, label string) {
	text := elide(raw)
	fmt.Fprintf(w, "%s  %s%s  %s\n",
		styles.Offset.Render(fmt.Sprintf("%0*x", offsetWidth, offset)),
		styles.Bytes.Render(text),
		strings.Repeat(" ", max(0, maxDumpBytes*3-1-len(text))),
		label,
	)
}

// elide formats raw as hex, keeping the first and last bytes of spans
// wider than maxDumpBytes.
func elide(raw []byte) string {
	if len(raw) <= maxDumpBytes {
		return blob.FormatHex(raw)
	}
	const keep = maxDumpBytes/2 - 1
	return blob.FormatHex(raw[:keep]) + " .. " + blob.FormatHex(raw[len(raw)-keep:])
}
