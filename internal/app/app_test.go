/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gestaovendas/internal/config"
	"gestaovendas/internal/domain"
	"gestaovendas/internal/notebook"
	"gestaovendas/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	base := t.TempDir()
	return Options{
		PrimaryDir:    filepath.Join(base, "_internal_data"),
		FallbackDir:   filepath.Join(base, "Documents", "GestaoVendasData"),
		IncludeOrders: true,
	}
}

func TestOpenUsesPrimary(t *testing.T) {
	opts := testOptions(t)
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, opts.PrimaryDir, s.Dir)
	assert.False(t, s.UsedFallback)
	assert.FileExists(t, storage.Path(opts.PrimaryDir))
	assert.Equal(t, "cosmo", s.Prefs.Load())
}

func TestOpenFallsBackWhenPrimaryNotWritable(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(opts.PrimaryDir), "blocker"), nil, 0o644))
	opts.PrimaryDir = filepath.Join(filepath.Dir(opts.PrimaryDir), "blocker", "_internal_data")
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.UsedFallback)
	assert.Equal(t, opts.FallbackDir, s.Dir)
}

func TestOpenRetriesStoreInFallback(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.MkdirAll(opts.PrimaryDir, 0o755))
	require.NoError(t, os.WriteFile(storage.Path(opts.PrimaryDir), bytes.Repeat([]byte("broken "), 512), 0o644))

	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.UsedFallback)
	assert.Equal(t, opts.FallbackDir, s.Dir)
	require.ErrorIs(t, s.Resolution.PrimaryErr, domain.ErrStorageUnavailable)
	assert.FileExists(t, storage.Path(opts.FallbackDir))
}

func TestOpenFailsWhenBothUnavailable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err := Open(context.Background(), Options{
		PrimaryDir:  filepath.Join(blocker, "a"),
		FallbackDir: filepath.Join(blocker, "b"),
	})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestSaveNotebookRetriesInFallback(t *testing.T) {
	opts := testOptions(t)
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()

	// a non-empty directory where the notes file should be makes the save fail
	blocked := filepath.Join(opts.PrimaryDir, notebook.KindNotes.FileName())
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))

	require.NoError(t, s.SaveNotebook(notebook.KindNotes, "comprar farinha"))
	assert.Equal(t, opts.FallbackDir, s.Notebooks().Dir())
	got, err := s.Notebooks().Load(notebook.KindNotes)
	require.NoError(t, err)
	assert.Equal(t, "comprar farinha", got)
}

func TestDocumentSaveRetriesInFallback(t *testing.T) {
	opts := testOptions(t)
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()

	d, err := s.OpenDocument(notebook.KindNotes)
	require.NoError(t, err)
	blocked := filepath.Join(opts.PrimaryDir, notebook.KindNotes.FileName())
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))

	d.Set("comprar farinha")
	require.NoError(t, d.Flush())
	require.NoError(t, d.Err())
	assert.Equal(t, opts.FallbackDir, s.Notebooks().Dir())
	got, err := os.ReadFile(filepath.Join(opts.FallbackDir, notebook.KindNotes.FileName()))
	require.NoError(t, err)
	assert.Equal(t, "comprar farinha", string(got))
}

func TestDocumentAutosaveRetriesInFallback(t *testing.T) {
	opts := testOptions(t)
	opts.AutosaveDelay = 10 * time.Millisecond
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer s.Close()

	d, err := s.OpenDocument(notebook.KindOrders)
	require.NoError(t, err)
	blocked := filepath.Join(opts.PrimaryDir, notebook.KindOrders.FileName())
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))

	d.Set("Dona Rosa; Panetone; 2; 45,00; 23/12")
	assert.Eventually(t, func() bool { return !d.Dirty() }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, d.Err())
	orders, err := s.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Dona Rosa", orders[0].Customer)
}

func TestExportIncludesOrdersFromNotebook(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, testOptions(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Sales.Insert(ctx, domain.SaleInput{Customer: "Ana", Product: "Pão", Price: decimal.RequireFromString("5"), Seller: "Jeff"})
	require.NoError(t, err)
	require.NoError(t, s.SaveNotebook(notebook.KindOrders, "Dona Rosa; Panetone; 2; 45,00; 23/12\n"))

	out := filepath.Join(t.TempDir(), "vendas.xlsx")
	res, err := s.Exporter.Export(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Orders)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 2)
}

func TestDocumentsFlushOnClose(t *testing.T) {
	opts := testOptions(t)
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	d, err := s.OpenDocument(notebook.KindNotes)
	require.NoError(t, err)
	d.Set("nota pendente")
	require.NoError(t, s.FlushDocuments())
	d.Set("nota final")
	require.NoError(t, s.Close())

	b, err := os.ReadFile(filepath.Join(opts.PrimaryDir, notebook.KindNotes.FileName()))
	require.NoError(t, err)
	assert.Equal(t, "nota final", string(b))
}

func TestBackupAndImportThroughServices(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, testOptions(t))
	require.NoError(t, err)
	defer s.Close()

	csv := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Cliente;Produto;Valor\nAna;Pão;2,50\n"), 0o644))
	rep, err := s.Import(ctx, csv)
	require.NoError(t, err)
	require.Len(t, rep.Imported, 1)

	bak := filepath.Join(t.TempDir(), "bak.json")
	n, err := s.WriteBackup(ctx, bak)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	restored, err := s.RestoreBackup(ctx, bak)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	all, err := s.Sales.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.DataDir = "/d"
	cfg.Export.CurrencySymbol = "US$"
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "/d", opts.PrimaryDir)
	assert.Equal(t, "US$", opts.Money.Symbol)
	assert.True(t, opts.IncludeOrders)
	assert.Equal(t, "cosmo", opts.DefaultTheme)
}

func TestCloseNil(t *testing.T) {
	var s *Services
	assert.NoError(t, s.Close())
}
