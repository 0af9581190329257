// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/speccache"
)

type cacheParams struct {
	Types cli.TypeOptions
	cli.JSONOutput
}

// CacheCommand returns the "cache" command group, which inspects and
// clears the spec cache used by "capture decode".
func CacheCommand() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect or clear the decoded-spec cache",
		Description: `The spec cache stores decoded documents keyed by blob digest so that
re-decoding a capture skips blobs seen before. Its location is
cache.path in the configuration (default ${ATTRSPEC_ROOT}/specs.db).

The cache remembers the type context it was filled under. Opening it
with different manifests or resolution settings empties it, so these
commands take the same --types, --module, and --fallback flags as the
decoding commands.`,
		Subcommands: []*cli.Command{
			cacheStatsCommand(),
			cachePurgeCommand(),
		},
	}
}

func cacheStatsCommand() *cli.Command {
	var params cacheParams

	return &cli.Command{
		Name:    "stats",
		Summary: "Show the number and size of cached documents",
		Usage:   "attrspec cache stats [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("stats takes no arguments, got %q", args[0])
			}
			return withCache(&params.Types, logger, func(path string, cache *speccache.Cache) error {
				stats, err := cache.Stats()
				if err != nil {
					return err
				}
				if done, err := params.EmitJSON(os.Stdout, stats); done {
					return err
				}
				return writeStats(os.Stdout, path, stats)
			})
		},
	}
}

func cachePurgeCommand() *cli.Command {
	var params cacheParams

	return &cli.Command{
		Name:    "purge",
		Summary: "Remove every cached document",
		Usage:   "attrspec cache purge",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("purge", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("purge takes no arguments, got %q", args[0])
			}
			return withCache(&params.Types, logger, func(path string, cache *speccache.Cache) error {
				if err := cache.Purge(); err != nil {
					return err
				}
				logger.Info("purged spec cache", "path", path)
				return nil
			})
		},
	}
}

// withCache opens the configured cache for the duration of fn.
func withCache(types *cli.TypeOptions, logger *slog.Logger, fn func(path string, cache *speccache.Cache) error) error {
	environment, err := types.Load(logger)
	if err != nil {
		return err
	}
	environment.Config.Cache.Enabled = true
	if err := environment.Config.EnsurePaths(); err != nil {
		return err
	}
	path := environment.Config.Cache.Path
	cache, err := speccache.Open(path, speccache.Options{
		Fingerprint: environment.Fingerprint,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(path, cache)
}

func writeStats(w io.Writer, path string, stats speccache.Stats) error {
	_, err := fmt.Fprintf(w, "%s: %d documents, %d bytes\n", path, stats.Entries, stats.Bytes)
	return err
}
