/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestWriteReadRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	_, err := src.InsertMany(ctx, []domain.SaleInput{
		{Customer: "Ana", Product: "Pão", Price: decimal.RequireFromString("10.00"), PaymentType: "pix", Seller: "Jeff"},
		{Customer: "Bruno", Product: "Café", Price: decimal.RequireFromString("5.50"), Seller: "Maria"},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vendas.json")
	n, err := Write(ctx, src, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, doc.FormatVersion)
	require.Len(t, doc.Sales, 2)
	assert.True(t, doc.Sales[1].Price.Equal(decimal.RequireFromString("5.5")))
	assert.WithinDuration(t, time.Now(), doc.ExportedAt, time.Minute)

	dst := openStore(t)
	restored, err := Restore(ctx, dst, doc)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	all, err := dst.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", all[0].Customer)
	assert.Equal(t, "Maria", all[1].Seller)
}

func TestReadRejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"negative price": `{"format_version":1,"exported_at":"2024-01-01T00:00:00Z","sales":[{"customer":"a","product":"b","price":"-1","seller":"c","created_at":"2024-01-01T00:00:00Z"}]}`,
		"missing seller": `{"format_version":1,"exported_at":"2024-01-01T00:00:00Z","sales":[{"customer":"a","product":"b","price":"1","created_at":"2024-01-01T00:00:00Z"}]}`,
		"wrong version":  `{"format_version":2,"exported_at":"2024-01-01T00:00:00Z","sales":[]}`,
		"unknown field":  `{"format_version":1,"exported_at":"2024-01-01T00:00:00Z","sales":[],"extra":true}`,
		"not even json":  `{"format_version":`,
		"bad created_at": `{"format_version":1,"exported_at":"2024-01-01T00:00:00Z","sales":[{"customer":"a","product":"b","price":"1","seller":"c","created_at":"ontem"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			_, err := Read(p)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestReadAcceptsNumericPrice(t *testing.T) {
	p := filepath.Join(t.TempDir(), "legacy.json")
	body := `{"format_version":1,"exported_at":"2024-01-01T00:00:00Z","sales":[{"customer":"a","product":"b","price":3.25,"seller":"c","created_at":"2024-01-01T00:00:00Z"}]}`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	doc, err := Read(p)
	require.NoError(t, err)
	assert.True(t, doc.Sales[0].Price.Equal(decimal.RequireFromString("3.25")))
}

type failingInserter struct{}

func (failingInserter) InsertMany(context.Context, []domain.SaleInput) ([]domain.Sale, error) {
	return nil, errors.New("boom")
}

func TestRestoreRejects(t *testing.T) {
	ctx := context.Background()
	_, err := Restore(ctx, failingInserter{}, Document{FormatVersion: 9})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = Restore(ctx, failingInserter{}, Document{FormatVersion: FormatVersion})
	assert.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sales", ve.Field)
	_, err = Restore(ctx, failingInserter{}, Document{FormatVersion: FormatVersion, Sales: []domain.Sale{{Customer: "a"}}})
	assert.EqualError(t, err, "boom")
}
