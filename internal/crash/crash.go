/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a last flush of unsaved notebook edits.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gestaovendas/internal/log"
	"gestaovendas/internal/version"

	"github.com/google/uuid"
)

// DirName is the crash report folder inside the data directory.
const DirName = "crash"

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target is the running application as seen by Recover.
type Target interface {
	DataDir() string
	FlushDocuments() error
}

// Recover captures a panic, logs it with the stacktrace, writes a report file under
// <dataDir>/crash and flushes open notebook documents of t (if provided).
//
// Usage: defer crash.Recover(services)
func Recover(t Target) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(t, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if t != nil {
			if err := t.FlushDocuments(); err != nil {
				l.Error("flush notebooks failed", slog.Any("err", err))
			} else {
				l.Info("notebooks flushed")
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "Ocorreu um erro fatal. Relatório salvo em: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func reportDir(t Target) string {
	if t != nil && t.DataDir() != "" {
		dir := filepath.Join(t.DataDir(), DirName)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return os.TempDir()
}

func writeReport(t Target, panicVal any, stack []byte) (string, error) {
	now := time.Now()
	fname := fmt.Sprintf("crash-%s-%s.log", now.Format("20060102-150405"), uuid.NewString())
	path := filepath.Join(reportDir(t), fname)

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Gestão de Vendas Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil {
		_, _ = fmt.Fprintf(&buf, "DataDir: %s\n", t.DataDir())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	return path, f.Sync()
}
