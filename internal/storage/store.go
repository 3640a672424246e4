/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gestaovendas/internal/domain"
	applog "gestaovendas/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName      = "vendas_gestao.db"
	BackupDirName = "backups"

	// schemaVersion tracks the sales database schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2

	openTimeout = 10 * time.Second
)

// Path returns the database file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Store is an open sales database. It is safe for sequential use by one process;
// the single pooled connection serializes concurrent callers.
type Store struct {
	db   *sql.DB
	dir  string
	path string
	now  func() time.Time
	log  *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now for created_at stamps and backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open creates or opens the sales database in dir and brings its schema up to date.
// It is idempotent. Any failure to create the directory, open the file or pass the integrity
// check returns an error wrapping domain.ErrStorageUnavailable; a damaged file is copied to
// <dir>/backups before Open fails.
func Open(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: data directory is required", domain.ErrStorageUnavailable)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: create data dir: %w", domain.ErrStorageUnavailable, err)
	}
	s := &Store{dir: dir, path: Path(dir), now: time.Now, log: applog.WithComponent("storage")}
	for _, opt := range opts {
		opt(s)
	}
	_, statErr := os.Stat(s.path)
	existed := statErr == nil

	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(s.path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: open sqlite: %w", domain.ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	if existed {
		if err := checkIntegrity(ctx, db); err != nil {
			_ = db.Close()
			bak, berr := s.backupDamaged()
			l.Error("integrity check failed", slog.Any("err", err), slog.String("backup", bak), slog.Any("backup_err", berr))
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, FileName, err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: enable WAL: %w", domain.ErrStorageUnavailable, err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if err := ensureSalesSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure sales schema failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	l.Info("database ready", slog.String("path", s.path), slog.Bool("created", !existed))
	return s, nil
}

// Close releases the database. Calling it twice is harmless.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Dir is the data directory the store lives in.
func (s *Store) Dir() string { return s.dir }

// Path is the database file path.
func (s *Store) Path() string { return s.path }

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

var errClosed = errors.New("store is closed")

func (s *Store) conn() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, errClosed)
	}
	return s.db, nil
}
