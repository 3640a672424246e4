/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeTarget struct {
	dir     string
	flushed int
	err     error
}

func (f *fakeTarget) DataDir() string { return f.dir }

func (f *fakeTarget) FlushDocuments() error {
	f.flushed++
	return f.err
}

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Gestão de Vendas Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportUsesDataDir(t *testing.T) {
	dir := t.TempDir()
	a, err := writeReport(&fakeTarget{dir: dir}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, err := writeReport(&fakeTarget{dir: dir}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(a) != filepath.Join(dir, DirName) {
		t.Fatalf("expected crash report under %s, got %s", DirName, a)
	}
	if a == b {
		t.Fatalf("reports written in the same second must not collide: %s", a)
	}
}

func TestRecoverFlushesAndExits(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	target := &fakeTarget{dir: t.TempDir(), err: errors.New("disk full")}
	func() {
		defer Recover(target)
		panic("boom")
	}()

	if target.flushed != 1 {
		t.Fatalf("expected one flush, got %d", target.flushed)
	}
	files, _ := os.ReadDir(filepath.Join(target.dir, DirName))
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "crash-") {
		t.Fatalf("expected one crash report, got %v", files)
	}
	b, err := os.ReadFile(filepath.Join(target.dir, DirName, files[0].Name()))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	oldExit := exitFn
	exitFn = func(int) { t.Fatalf("exit must not be called") }
	defer func() { exitFn = oldExit }()
	target := &fakeTarget{dir: t.TempDir()}
	func() {
		defer Recover(target)
	}()
	if target.flushed != 0 {
		t.Fatalf("no flush expected without a panic")
	}
}
