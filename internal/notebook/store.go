/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package notebook persists the two free-text notebooks next to the database: the order ledger
// (encomendas.txt) and general notes (anotacoes.txt). Text is stored verbatim; parsing the
// ledger is a separate pure helper.
package notebook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"
)

// Kind selects one of the notebooks.
type Kind int

const (
	KindOrders Kind = iota
	KindNotes
)

// Kinds lists every notebook kind.
var Kinds = []Kind{KindOrders, KindNotes}

// FileName returns the file backing the notebook kind.
func (k Kind) FileName() string {
	switch k {
	case KindOrders:
		return "encomendas.txt"
	case KindNotes:
		return "anotacoes.txt"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case KindOrders:
		return "orders"
	case KindNotes:
		return "notes"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps "orders"/"encomendas" and "notes"/"anotacoes" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orders", "encomendas":
		return KindOrders, nil
	case "notes", "anotacoes", "anotações":
		return KindNotes, nil
	}
	return 0, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown notebook %q", s)}
}

// Store reads and writes notebook files inside one directory.
type Store struct {
	dir string
	log *slog.Logger
}

func New(dir string) *Store {
	return &Store{dir: dir, log: applog.WithComponent("notebook")}
}

// Dir is the directory holding the notebook files.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path of kind.
func (s *Store) Path(kind Kind) string {
	return filepath.Join(s.dir, kind.FileName())
}

func (s *Store) checkKind(kind Kind) error {
	if kind.FileName() == "" {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown notebook %d", int(kind))}
	}
	return nil
}

// Load returns the stored text of kind. A missing file is an empty notebook.
func (s *Store) Load(kind Kind) (string, error) {
	if err := s.checkKind(kind); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(kind))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrIO, kind.FileName(), err)
	}
	return string(data), nil
}

// Save replaces the whole content of kind with text. The write is atomic: readers see either the
// old or the new content.
func (s *Store) Save(kind Kind, text string) error {
	if err := s.checkKind(kind); err != nil {
		return err
	}
	l := applog.WithOperation(s.log, "save").With(slog.String("file", kind.FileName()))
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		l.Error("create notebook dir failed", slog.Any("err", err))
		return fmt.Errorf("%w: create %s: %w", domain.ErrIO, s.dir, err)
	}
	if err := fsutil.WriteFileAtomic(s.Path(kind), []byte(text)); err != nil {
		l.Error("write notebook failed", slog.Any("err", err))
		return fmt.Errorf("%w: save %s: %w", domain.ErrIO, kind.FileName(), err)
	}
	l.Debug("notebook saved", slog.Int("bytes", len(text)))
	return nil
}

// Append adds line at the end of kind, starting a new line if the current text lacks a trailing newline.
func (s *Store) Append(kind Kind, line string) error {
	cur, err := s.Load(kind)
	if err != nil {
		return err
	}
	if cur != "" && !strings.HasSuffix(cur, "\n") {
		cur += "\n"
	}
	return s.Save(kind, cur+strings.TrimRight(line, "\r\n")+"\n")
}
