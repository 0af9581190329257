// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	capturecmd "github.com/bureau-foundation/attrspec/cmd/attrspec/capture"
	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/cmd/attrspec/inspect"
	"github.com/bureau-foundation/attrspec/lib/capture"
	"github.com/bureau-foundation/attrspec/lib/speccache"
	"github.com/bureau-foundation/attrspec/lib/version"
)

func main() {
	err := run()
	code, silent := cli.ExitStatus(err)
	if !silent {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(code)
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCommand().Execute(ctx, os.Args[1:], cli.NewCommandLogger())
}

// rootCommand builds the complete attrspec command tree.
func rootCommand() *cli.Command {
	subcommands := inspect.Commands()
	subcommands = append(subcommands,
		capturecmd.Command(),
		capturecmd.CacheCommand(),
		versionCommand(),
	)
	return &cli.Command{
		Name: "attrspec",
		Description: `attrspec: decode ECMA-335 custom attribute blobs.

A custom attribute blob is the serialized constructor call stored in a
module's metadata. Given the constructor signature, attrspec decodes a
blob into its positional and named arguments, re-encodes documents
into blobs, and batch-decodes capture files of many blobs.

Type names resolve against the core library types and module manifests
(YAML or JSONC) named with --types or in the configuration file
($ATTRSPEC_CONFIG or --config).`,
		Subcommands: subcommands,
	}
}

func versionCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			build := version.Current(map[string]int{
				"capture":    capture.Version,
				"spec cache": speccache.FormatVersion,
			})
			if done, err := params.EmitJSON(os.Stdout, build); done {
				return err
			}
			fmt.Printf("attrspec %s\n", build.Full())
			return nil
		},
	}
}
