/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gestaovendas/internal/domain"

	"github.com/shopspring/decimal"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	st, err := Open(context.Background(), t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sale(customer, product, price, payment, seller string) domain.SaleInput {
	return domain.SaleInput{
		Customer:    customer,
		Product:     product,
		Price:       decimal.RequireFromString(price),
		PaymentType: payment,
		Seller:      seller,
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	st, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("first Open error: %v", err)
	}
	if _, err := st.Insert(ctx, sale("Ana", "Pão", "5.00", "pix", "Jeff")); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	st, err = Open(ctx, dir)
	if err != nil {
		t.Fatalf("second Open error: %v", err)
	}
	defer st.Close()
	all, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 1 || all[0].Customer != "Ana" {
		t.Fatalf("data not preserved across reopen: %+v", all)
	}
	v, err := st.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion error: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("schema = %d, want %d", v, schemaVersion)
	}
}

func TestOpenUnavailableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := Open(context.Background(), filepath.Join(blocker, "data"))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := Open(context.Background(), "  "); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable for empty dir, got %v", err)
	}
}

func TestOpenDamagedFileIsBackedUp(t *testing.T) {
	dir := t.TempDir()
	junk := bytes.Repeat([]byte("definitely not sqlite "), 256)
	if err := os.WriteFile(Path(dir), junk, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := Open(context.Background(), dir, WithClock(fixedClock(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	bak := filepath.Join(dir, BackupDirName, FileName+".20240301-093000.bak")
	got, err := os.ReadFile(bak)
	if err != nil {
		t.Fatalf("expected backup copy: %v", err)
	}
	if !bytes.Equal(got, junk) {
		t.Fatalf("backup content differs from damaged file")
	}
}

func TestMigrationV1AddsSearchKeys(t *testing.T) {
	dir := t.TempDir()
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(Path(dir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE sales (id INTEGER PRIMARY KEY AUTOINCREMENT, customer TEXT NOT NULL, product TEXT NOT NULL, price_cents INTEGER NOT NULL, payment_type TEXT NOT NULL DEFAULT '', seller TEXT NOT NULL, created_at TEXT NOT NULL);`,
		`INSERT INTO sales(customer, product, price_cents, payment_type, seller, created_at) VALUES('ÁGUA Ltda', 'Broa', 350, 'pix', 'Jeff', '2020-01-02T10:00:00Z');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	st, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()
	v, err := st.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion error: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	got, err := st.Search(ctx, "água")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].Customer != "ÁGUA Ltda" || !got[0].Price.Equal(decimal.RequireFromString("3.50")) {
		t.Fatalf("backfilled row not found: %+v", got)
	}
}

func TestOperationsOnClosedStore(t *testing.T) {
	st, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if _, err := st.ListAll(context.Background()); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestBackupWritesReadableCopy(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, WithClock(fixedClock(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))))
	for _, p := range []string{"1.00", "2.00"} {
		if _, err := st.Insert(ctx, sale("Ana", "Bolo", p, "pix", "Jeff")); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}
	path, err := st.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup error: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(BackupDirName, "vendas_gestao.20240506-070809.db")) {
		t.Fatalf("unexpected backup path %s", path)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		t.Fatalf("count backup rows: %v", err)
	}
	if n != 2 {
		t.Fatalf("backup rows = %d, want 2", n)
	}
	if _, err := st.Backup(ctx); err == nil {
		t.Fatalf("expected error when the backup name already exists")
	}
}
