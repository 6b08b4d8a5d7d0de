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

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the leveled logging surface every ambient package depends
// on. Core packages (internal/wire, internal/tracker, internal/diffcore)
// never import it directly except through diffcore.Options.Logger.
type Logger interface {
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) log(level slog.Level, format string, args ...any) {
	s.l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func (s *slogLogger) Tracef(format string, args ...any) { s.log(LevelTrace, format, args...) }
func (s *slogLogger) Debugf(format string, args ...any) { s.log(LevelDebug, format, args...) }
func (s *slogLogger) Infof(format string, args ...any)  { s.log(LevelInfo, format, args...) }
func (s *slogLogger) Warnf(format string, args ...any)  { s.log(LevelWarn, format, args...) }
func (s *slogLogger) Errorf(format string, args ...any) { s.log(LevelError, format, args...) }

// Format selects the on-disk shape of log records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New builds a Logger writing at or above minSeverity to w, in either
// text or JSON form.
func New(w io.Writer, minSeverity slog.Level, format Format) Logger {
	return &slogLogger{l: slog.New(newHandler(w, minSeverity, format))}
}

// Default returns a Logger writing text-formatted INFO+ records to
// stderr, the CLI's baseline before flags are parsed.
func Default() Logger {
	return New(os.Stderr, LevelInfo, FormatText)
}

type noop struct{}

func (noop) Tracef(string, ...any) {}
func (noop) Debugf(string, ...any) {}
func (noop) Infof(string, ...any)  {}
func (noop) Warnf(string, ...any)  {}
func (noop) Errorf(string, ...any) {}

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noop{} }

func newHandler(w io.Writer, minSeverity slog.Level, format Format) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			level, _ := a.Value.Any().(slog.Level)
			a.Key = "severity"
			a.Value = slog.StringValue(severityName(level))
		case slog.TimeKey:
			if format == FormatJSON {
				t, _ := a.Value.Any().(time.Time)
				a.Key = "timestamp"
				a.Value = slog.GroupValue(
					slog.Int64("seconds", t.Unix()),
					slog.Int64("nanos", int64(t.Nanosecond())),
				)
			} else {
				a.Key = "time"
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: minSeverity, ReplaceAttr: replace}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
