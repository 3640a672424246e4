/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides centralized slog-based logging for the application.
// Console output is a compact one-line text format; an optional JSON file log is
// rotated by lumberjack. Every record carries the app name and version, and services
// add a component (storage, export, notebook, ...) and an operation.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gestaovendas/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

const AppName = "gestaovendas"

// Environment variables read by FromEnv.
const (
	EnvLevel  = "GV_LOG_LEVEL"  // debug|info|warn|error
	EnvFormat = "GV_LOG_FORMAT" // console|json
	EnvSource = "GV_LOG_SOURCE" // true|false
	EnvFile   = "GV_LOG_FILE"   // path; enables rotated JSON file logging
)

// Options controls logger initialization. Defaults: info level, console format, no source, no file.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string

	// Console overrides the console writer (stderr by default).
	Console io.Writer
}

var (
	mu         sync.RWMutex
	current    *slog.Logger
	fileWriter *lj.Logger
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init configures the application logger and installs it as slog's default.
// Calling Init again replaces the logger and closes a previously opened log file.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var handlers []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handlers = append(handlers, slog.NewJSONHandler(console, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		handlers = append(handlers, newConsoleHandler(console, lvl, opts.AddSource))
	}

	var fw *lj.Logger
	if path := strings.TrimSpace(opts.File); path != "" {
		fw = &lj.Logger{Filename: path, MaxSize: 5, MaxBackups: 3, MaxAge: 30, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(fw, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	logger := slog.New(h).With(
		slog.String("app", AppName),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	old := fileWriter
	current = logger
	fileWriter = fw
	mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	mu.Lock()
	fw := fileWriter
	fileWriter = nil
	mu.Unlock()
	if fw == nil {
		return nil
	}
	return fw.Close()
}

// FromEnv builds Options from GV_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv(EnvLevel, "info"),
		Format:    getenv(EnvFormat, "console"),
		AddSource: parseBool(os.Getenv(EnvSource)),
		File:      os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// WithComponent returns a logger tagged with the service component.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
