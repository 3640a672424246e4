/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package prefs stores the single user preference kept with the data: the UI theme name.
package prefs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"
)

const (
	FileName     = "theme_setting.txt"
	DefaultTheme = "cosmo"
)

// Store reads and writes the theme file in one directory.
type Store struct {
	dir string
	def string
	log *slog.Logger
}

// New returns a Store in dir. An empty def falls back to DefaultTheme.
func New(dir, def string) *Store {
	def = strings.TrimSpace(def)
	if def == "" {
		def = DefaultTheme
	}
	return &Store{dir: dir, def: def, log: applog.WithComponent("prefs")}
}

func (s *Store) Path() string { return filepath.Join(s.dir, FileName) }

// Default is the theme returned when nothing usable is stored.
func (s *Store) Default() string { return s.def }

// Load returns the stored theme. A missing, unreadable or empty file yields the default; this is
// never an error.
func (s *Store) Load() string {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		s.log.Debug("theme not loaded, using default", slog.String("theme", s.def), slog.Any("err", err))
		return s.def
	}
	theme := strings.TrimSpace(string(data))
	if theme == "" {
		return s.def
	}
	return theme
}

// Save overwrites the stored theme.
func (s *Store) Save(theme string) error {
	theme = strings.TrimSpace(theme)
	if theme == "" || strings.ContainsAny(theme, "\r\n") {
		return &domain.ValidationError{Field: "theme", Reason: "must be a single non-empty line"}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrIO, s.dir, err)
	}
	if err := fsutil.WriteFileAtomic(s.Path(), []byte(theme)); err != nil {
		s.log.Error("save theme failed", slog.Any("err", err))
		return fmt.Errorf("%w: save theme: %w", domain.ErrIO, err)
	}
	return nil
}
