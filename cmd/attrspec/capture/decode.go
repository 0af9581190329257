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
	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/capture"
	"github.com/bureau-foundation/attrspec/lib/speccache"
	"github.com/bureau-foundation/attrspec/lib/tui"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

type decodeParams struct {
	Types cli.TypeOptions
	cli.JSONOutput
	Workers int  `flag:"workers,w" desc:"concurrent decoders (default: decode.workers, else one per CPU)"`
	Cache   bool `flag:"cache"     desc:"use the spec cache even when the configuration disables it"`
	NoCache bool `flag:"no-cache"  desc:"bypass the spec cache"`
}

// decodedRecord is the outcome for one capture record. Exactly one of
// Document and Error is set.
type decodedRecord struct {
	Index       int                `json:"index"`
	Site        string             `json:"site,omitempty"`
	Constructor string             `json:"constructor"`
	Module      string             `json:"module,omitempty"`
	Digest      binhash.Digest     `json:"digest"`
	Cached      bool               `json:"cached,omitempty"`
	Document    *attrspec.Document `json:"document,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func decodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode every record of a capture file",
		Description: `Decode all records of a capture file concurrently and print one line
per record, or with --json the decoded documents.

Each record resolves type names against its own module (or the default
module when it names none). A record that fails to decode is reported
with its error and does not stop the others; the command exits 1 if
any record failed.

When the spec cache is enabled (cache.enabled in the configuration, or
--cache), records whose digest is already cached are not decoded
again, and new documents are stored after the batch. The cache is
emptied automatically when the type manifests or resolution settings
change.`,
		Usage: "attrspec capture decode [--workers N] [--cache | --no-cache] [--json] FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("decode takes exactly one capture file, got %d arguments", len(args))
			}
			if params.Cache && params.NoCache {
				return fmt.Errorf("--cache and --no-cache are mutually exclusive")
			}
			environment, err := params.Types.Load(logger)
			if err != nil {
				return err
			}
			_, records, err := capture.ReadFile(args[0])
			if err != nil {
				return err
			}

			options := decodeOptions{
				Contexts: environment.ContextFor,
				Default:  environment.Context,
				Workers:  environment.Config.Decode.Workers,
				Logger:   logger.With("capture", args[0]),
			}
			if params.Workers > 0 {
				options.Workers = params.Workers
			}

			if (environment.Config.Cache.Enabled || params.Cache) && !params.NoCache {
				environment.Config.Cache.Enabled = true
				if err := environment.Config.EnsurePaths(); err != nil {
					return err
				}
				cache, err := speccache.Open(environment.Config.Cache.Path, speccache.Options{
					Fingerprint: environment.Fingerprint,
					Logger:      logger,
				})
				if err != nil {
					return err
				}
				defer cache.Close()
				options.Cache = cache
			}

			results, err := decodeRecords(ctx, records, options)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(os.Stdout, results); done {
				if err != nil {
					return err
				}
			} else if err := writeResults(os.Stdout, results); err != nil {
				return err
			}
			if failedCount(results) > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// decodeOptions configures decodeRecords.
type decodeOptions struct {
	// Contexts returns the resolution context for a record's module.
	Contexts func(module string) (*typesys.Context, error)

	// Default resolves records that name no module.
	Default *typesys.Context

	// Cache, when set, is consulted before decoding and receives every
	// newly decoded document.
	Cache *speccache.Cache

	Workers int
	Logger  *slog.Logger
}

// pendingGroup is the records of one module still to be decoded.
type pendingGroup struct {
	resolver *typesys.Context
	jobs     []attrspec.Job
	indexes  []int
}

// decodeRecords decodes records, consulting the cache first. Record
// failures are reported in the results; the returned error is reserved
// for cache failures and cancellation.
func decodeRecords(ctx context.Context, records []capture.Record, options decodeOptions) ([]decodedRecord, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]decodedRecord, len(records))
	groups := make(map[string]*pendingGroup)
	var order []string

	for index, record := range records {
		results[index] = decodedRecord{
			Index:       index,
			Site:        record.Site,
			Constructor: record.Constructor,
			Module:      record.Module,
			Digest:      record.Digest(),
		}

		if options.Cache != nil {
			document, ok, err := options.Cache.Get(cacheKey(record))
			if err != nil {
				return nil, err
			}
			if ok {
				results[index].Document = &document
				results[index].Cached = true
				continue
			}
		}

		group, ok := groups[record.Module]
		if !ok {
			resolver := options.Default
			if record.Module != "" {
				var err error
				resolver, err = options.Contexts(record.Module)
				if err != nil {
					results[index].Error = err.Error()
					continue
				}
			}
			group = &pendingGroup{resolver: resolver}
			groups[record.Module] = group
			order = append(order, record.Module)
		}

		constructor, err := typesys.ParseConstructor(record.Constructor, group.resolver)
		if err != nil {
			results[index].Error = err.Error()
			continue
		}
		group.jobs = append(group.jobs, attrspec.Job{
			Label:       record.Label(),
			Constructor: constructor,
			Blob:        record.Blob,
		})
		group.indexes = append(group.indexes, index)
	}

	fresh := make(map[binhash.Digest]attrspec.Document)
	for _, module := range order {
		group := groups[module]
		if len(group.jobs) == 0 {
			continue
		}
		batch, err := attrspec.DecodeAll(ctx, group.jobs, group.resolver, attrspec.BatchOptions{
			Workers: options.Workers,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		for position, result := range batch {
			index := group.indexes[position]
			if result.Err != nil {
				results[index].Error = result.Err.Error()
				continue
			}
			document := attrspec.NewDocument(result.Spec)
			document.Digest = binhash.FormatDigest(results[index].Digest)
			results[index].Document = &document
			fresh[cacheKey(records[index])] = document
		}
	}

	if options.Cache != nil && len(fresh) > 0 {
		if err := options.Cache.PutAll(fresh); err != nil {
			return nil, err
		}
	}

	logger.Info("decoded capture",
		"records", len(records),
		"decoded", len(fresh),
		"cached", cachedCount(results),
		"failed", failedCount(results),
	)
	return results, nil
}

// cacheKey is the record digest, mixed with the module for records
// that resolve against a module other than the default.
func cacheKey(record capture.Record) binhash.Digest {
	if record.Module == "" {
		return record.Digest()
	}
	return binhash.ContextDigest(record.Module, binhash.FormatDigest(record.Digest()))
}

func cachedCount(results []decodedRecord) int {
	count := 0
	for _, result := range results {
		if result.Cached {
			count++
		}
	}
	return count
}

func failedCount(results []decodedRecord) int {
	count := 0
	for _, result := range results {
		if result.Error != "" {
			count++
		}
	}
	return count
}

// writeResults prints one line per record and a summary.
func writeResults(w io.Writer, results []decodedRecord) error {
	styles := tui.NewStyles(w, tui.DefaultTheme)
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, result := range results {
		site := result.Site
		if site == "" {
			site = result.Constructor
		}
		status := styles.Success.Render("ok")
		switch {
		case result.Error != "":
			status = styles.Error.Render("error: " + result.Error)
		case result.Cached:
			status = styles.Faint.Render("ok (cached)")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", result.Index, site, binhash.ShortDigest(result.Digest), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	failed := failedCount(results)
	_, err := fmt.Fprintf(w, "%d records: %d decoded (%d cached), %d failed\n",
		len(results), len(results)-failed, cachedCount(results), failed)
	return err
}
