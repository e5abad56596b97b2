// Copyright (c) LoRaDB Contributors
// SPDX-License-Identifier: Apache-2.0

// Package logger provides a structured logger setup shared by all service
// binaries.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var slogLevels = map[Level]slog.Level{
	Error: slog.LevelError,
	Warn:  slog.LevelWarn,
	Info:  slog.LevelInfo,
	Debug: slog.LevelDebug,
}

// New returns a JSON slog logger writing to w, filtered at the given level.
// An unrecognized level name yields ErrInvalidLogLevel.
func New(w io.Writer, levelText string) (*slog.Logger, error) {
	var level Level
	if err := level.UnmarshalText(levelText); err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slogLevels[level],
	})

	return slog.New(handler), nil
}

// ExitWithError terminates the process with the given code. Deferring it
// first in main lets later defers run before the process exits.
func ExitWithError(code *int) {
	os.Exit(*code)
}
