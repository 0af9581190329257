// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// logLevel is shared by every logger NewCommandLogger builds, so a
// command can raise or lower verbosity after loading its configuration.
var logLevel = new(slog.LevelVar)

// SetLogLevel changes the level of every command logger.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// NewCommandLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable output.
// When stderr is piped or redirected (CI, scripts), uses slog.JSONHandler
// for machine-parseable output.
//
// Execute scopes the logger with the command path before calling Run;
// commands add their own context via With():
//
//	logger = logger.With("capture", path, "records", len(records))
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(w io.Writer, terminal bool) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: logLevel}
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether w is a terminal. Commands use it to decide
// whether to style their output.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
