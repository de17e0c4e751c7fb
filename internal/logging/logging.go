// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package logging provides the structured slog.Logger conventions shared by
// the analysis pipeline: dotted event names ("discovery.walk.start",
// "git.log.timeout") and a default that degrades gracefully when a
// component is constructed without one.
package logging

import (
	"io"
	"log/slog"
)

// Default returns logger if non-nil, otherwise slog.Default(). Components
// that accept an optional *slog.Logger in their constructor should route
// it through this so callers never need to special-case nil.
func Default(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Discard returns a logger that drops all output, useful for tests that
// want to exercise logging call sites without polluting test output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New builds a logger writing structured text to w at the given level,
// matching the verbosity contract of the CLI's --verbose flag (spec §6:
// progress goes to stderr iff verbose).
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
