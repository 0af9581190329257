// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// ExitError ends a command with a non-zero status after the command has
// already reported the outcome itself. "attrspec validate" returns one
// for an invalid blob and "capture decode" for a capture with failed
// records: the verdict is on stdout, so main prints nothing more.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitStatus maps a command's error to the process exit status. silent
// is true when the error carries its own status (an ExitError, possibly
// wrapped) and must not be printed.
func ExitStatus(err error) (code int, silent bool) {
	if err == nil {
		return 0, true
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 1, false
}

// JSONOutput adds --json to a parameter struct. Commands embed it and
// call [JSONOutput.EmitJSON] before their text rendering:
//
//	if done, err := params.EmitJSON(os.Stdout, entries); done {
//	    return err
//	}
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result as indented JSON when --json is set and
// reports whether it did. A nil slice is written as [] so consumers
// never see null for an empty listing.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	if v := reflect.ValueOf(result); v.Kind() == reflect.Slice && v.IsNil() {
		result = reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return true, encoder.Encode(result)
}
