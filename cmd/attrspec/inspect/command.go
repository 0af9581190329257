// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/attrspec/cmd/attrspec/cli"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Commands returns the single-blob commands: decode, diag, validate,
// and encode. They are mounted directly under the root command.
func Commands() []*cli.Command {
	return []*cli.Command{
		decodeCommand(),
		diagCommand(),
		validateCommand(),
		encodeCommand(),
	}
}

// BlobInput holds the flags shared by every command that reads a blob.
// It is exported so flag binding can reach its fields when embedded.
type BlobInput struct {
	Types       cli.TypeOptions
	Constructor string `flag:"ctor"  desc:"constructor signature, e.g. 'Contoso.Widgets.ColorAttribute(string, int)'"`
	HexInput    bool   `flag:"hex,x" desc:"treat input as hex text instead of raw bytes"`
}

// load builds the type context and resolves --ctor against it.
func (p *BlobInput) load(logger *slog.Logger) (*cli.Environment, *typesys.Constructor, error) {
	if p.Constructor == "" {
		return nil, nil, fmt.Errorf("--ctor is required")
	}
	environment, err := p.Types.Load(logger)
	if err != nil {
		return nil, nil, err
	}
	constructor, err := typesys.ParseConstructor(p.Constructor, environment.Context)
	if err != nil {
		return nil, nil, err
	}
	return environment, constructor, nil
}

// read reads the blob from the trailing file argument or stdin and
// rejects any other positional argument.
func (p *BlobInput) read(command string, args []string, environment *cli.Environment) ([]byte, error) {
	data, remaining, err := readInput(args, p.HexInput, stdin, environment.Config.Decode.MaxBlobSize)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, fmt.Errorf("%s takes no positional arguments besides an optional file path, got %q", command, remaining[0])
	}
	return data, nil
}
