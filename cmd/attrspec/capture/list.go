// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/capture"
	"github.com/bureau-foundation/attrspec/lib/codec"
	"github.com/bureau-foundation/attrspec/lib/tui"
)

type listParams struct {
	cli.JSONOutput
	Diag bool `flag:"diag" desc:"print each record in CBOR diagnostic notation instead of the table"`
}

// listEntry is one row of "capture list".
type listEntry struct {
	Index       int            `json:"index"`
	Site        string         `json:"site,omitempty"`
	Constructor string         `json:"constructor"`
	Module      string         `json:"module,omitempty"`
	Bytes       int            `json:"bytes"`
	Digest      binhash.Digest `json:"digest"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the records of a capture file",
		Description: `Print the header of a capture file and one row per record: site,
constructor, blob size, and blob digest. Digests match the ones
"attrspec decode" reports for the same constructor and blob.

With --diag the records are printed as stored, one CBOR diagnostic
notation line per record, without decoding them into records first.
Use it to inspect a capture file that fails to read.`,
		Usage: "attrspec capture list [--json | --diag] FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("list takes exactly one capture file, got %d arguments", len(args))
			}
			if params.Diag {
				return diagCapture(os.Stdout, args[0])
			}
			header, records, err := capture.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries := listEntries(records)
			if done, err := params.EmitJSON(os.Stdout, entries); done {
				return err
			}
			return writeList(os.Stdout, args[0], header, entries)
		},
	}
}

func listEntries(records []capture.Record) []listEntry {
	entries := make([]listEntry, len(records))
	for index, record := range records {
		entries[index] = listEntry{
			Index:       index,
			Site:        record.Site,
			Constructor: record.Constructor,
			Module:      record.Module,
			Bytes:       len(record.Blob),
			Digest:      record.Digest(),
		}
	}
	return entries
}

func writeList(w io.Writer, path string, header capture.Header, entries []listEntry) error {
	styles := tui.NewStyles(w, tui.DefaultTheme)
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%s: %d records, %s, %d byte payload",
		path, header.Records, header.Compression, header.PayloadSize)))

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSITE\tCONSTRUCTOR\tBYTES\tDIGEST")
	for _, entry := range entries {
		site := entry.Site
		if site == "" {
			site = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", entry.Index, site, entry.Constructor, entry.Bytes, binhash.ShortDigest(entry.Digest))
	}
	return tw.Flush()
}

// diagCapture prints the header and the stored record sequence of a
// capture file in CBOR diagnostic notation. Items that render before a
// malformed one are still printed.
func diagCapture(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	header, payload, err := capture.ReadPayload(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "%s: version %d, %s, %d records, %d byte payload\n",
		path, header.Version, header.Compression, header.Records, header.PayloadSize)

	items, err := codec.DiagnoseSequence(payload)
	for index, item := range items {
		fmt.Fprintf(w, "%d: %s\n", index, item)
	}
	if err != nil {
		return fmt.Errorf("%s: payload %w", path, err)
	}
	return nil
}
