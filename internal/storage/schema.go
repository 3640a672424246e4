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
	"os"
	"path/filepath"
	"strings"
	"time"

	"gestaovendas/internal/fsutil"
	"gestaovendas/internal/version"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh file is created directly at the current schema.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSalesSchema creates the sales table at the current schema. An existing v1 table is left
// alone here and upgraded by runMigrations.
func ensureSalesSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS sales (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			customer     TEXT NOT NULL,
			product      TEXT NOT NULL,
			price_cents  INTEGER NOT NULL CHECK(price_cents >= 0),
			payment_type TEXT NOT NULL DEFAULT '',
			seller       TEXT NOT NULL,
			created_at   TEXT NOT NULL,
			customer_key TEXT NOT NULL DEFAULT '',
			product_key  TEXT NOT NULL DEFAULT '',
			seller_key   TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create sales schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Written by a newer build; do not downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		switch next {
		case 2:
			err = migrateSearchKeys(ctx, tx)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", next, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// migrateSearchKeys adds the folded search columns and backfills them for existing rows.
func migrateSearchKeys(ctx context.Context, tx *sql.Tx) error {
	for _, col := range []string{"customer_key", "product_key", "seller_key"} {
		has, err := hasColumn(ctx, tx, "sales", col)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := tx.ExecContext(ctx, `ALTER TABLE sales ADD COLUMN `+col+` TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	type row struct {
		id                        int64
		customer, product, seller string
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, customer, product, seller FROM sales`)
	if err != nil {
		return fmt.Errorf("scan sales: %w", err)
	}
	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.customer, &r.product, &r.seller); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan sale: %w", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()
	for _, r := range pending {
		if _, err := tx.ExecContext(ctx, `UPDATE sales SET customer_key=?, product_key=?, seller_key=? WHERE id=?`,
			foldKey(r.customer), foldKey(r.product), foldKey(r.seller), r.id); err != nil {
			return fmt.Errorf("backfill sale %d: %w", r.id, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// foldKey is the case-insensitive form of s used by Search. NFC first so that composed and
// decomposed accents compare equal.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// checkIntegrity runs PRAGMA quick_check and reads the schema table.
func checkIntegrity(ctx context.Context, db *sql.DB) error {
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return fmt.Errorf("quick_check: %s", chk)
	}
	return nil
}

// backupDamaged copies the current database file into a timestamped backup in <dir>/backups.
func (s *Store) backupDamaged() (string, error) {
	bdir := filepath.Join(s.dir, BackupDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", err
	}
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", FileName, s.now().Format("20060102-150405")))
	if err := fsutil.CopyFile(s.path, bak); err != nil {
		return "", err
	}
	return bak, nil
}
