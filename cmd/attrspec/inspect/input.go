// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/attrspec/lib/blob"
)

// stdin is the reader used when no file argument is given.
var stdin io.Reader = os.Stdin

// readInput resolves input data from either a file (the last element
// of args, if it names a regular file on disk) or r.
//
// When hexMode is true, the input is hex text: whitespace, "|" group
// separators, and a leading 0x are ignored.
//
// Inputs larger than limit bytes (before hex decoding) are rejected.
// Returns the input bytes and the args with any consumed file path
// removed.
func readInput(args []string, hexMode bool, r io.Reader, limit int64) ([]byte, []string, error) {
	var data []byte
	remainingArgs := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			if info.Size() > limit {
				return nil, nil, fmt.Errorf("%s is %d bytes, over the %d byte limit", candidate, info.Size(), limit)
			}
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", candidate, err)
			}
			remainingArgs = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(io.LimitReader(r, limit+1))
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
		if int64(len(data)) > limit {
			return nil, nil, fmt.Errorf("input is over the %d byte limit", limit)
		}
	}

	if hexMode {
		decoded, err := blob.ParseHex(string(data))
		if err != nil {
			return nil, nil, err
		}
		data = decoded
	}

	if len(data) == 0 {
		return nil, nil, fmt.Errorf("empty input: expected an attribute blob")
	}

	return data, remainingArgs, nil
}
