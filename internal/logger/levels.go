// Copyright 2026 The streamdiff Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the leveled, structured logging used by every
// ambient layer around the pure core (the core itself only touches this
// package through the optional Options.Logger in diffcore.Options).
// It is built on log/slog with a custom severity scale, the way the
// teacher project's logger layers TRACE beneath slog's built-in levels.
package logger

import (
	"log/slog"
	"strings"
)

// Severity levels, widened below slog's built-in Debug/Info/Warn/Error
// to make room for Trace.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
)

var severityNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

func severityName(l slog.Level) string {
	if n, ok := severityNames[l]; ok {
		return n
	}
	return l.String()
}

// ParseSeverity maps a case-insensitive severity name to its Level,
// defaulting to LevelInfo for an unrecognized value.
func ParseSeverity(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
