/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
}

func textPrinter(buf *bytes.Buffer) *Printer {
	return &Printer{Format: "text", W: buf, Money: money.BRL, Loc: time.UTC}
}

func fixtureSales() []domain.Sale {
	return []domain.Sale{
		{
			ID: 1, Customer: "Ana Souza", Product: "Pão de Queijo", Price: decimal.RequireFromString("7.50"),
			PaymentType: "pix", Seller: "Jefferson", CreatedAt: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			ID: 12, Customer: "João", Product: "Café", Price: decimal.RequireFromString("3.5"),
			Seller: "Maria", CreatedAt: time.Date(2024, 3, 6, 8, 5, 9, 0, time.UTC),
		},
	}
}

func TestPrinterSalesGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, textPrinter(&buf).Sales(fixtureSales()))
	newGoldie(t).Assert(t, "sales_table", buf.Bytes())
}

func TestPrinterSaleGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, textPrinter(&buf).Sale(fixtureSales()[0]))
	newGoldie(t).Assert(t, "sale", buf.Bytes())
}

func TestPrinterSummaryGolden(t *testing.T) {
	sum := domain.SalesSummary{
		Count:         3,
		Total:         decimal.RequireFromString("18.75"),
		AverageTicket: decimal.RequireFromString("6.25"),
		TopProducts: []domain.Bucket{
			{Key: "Pão de Queijo", Count: 2, Total: decimal.RequireFromString("15")},
			{Key: "Café", Count: 1, Total: decimal.RequireFromString("3.75")},
		},
		ByPayment: []domain.Bucket{
			{Key: "pix", Count: 2, Total: decimal.RequireFromString("15")},
			{Key: "", Count: 1, Total: decimal.RequireFromString("3.75")},
		},
		ByMonth: []domain.Bucket{
			{Key: "2024-03", Count: 3, Total: decimal.RequireFromString("18.75")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, textPrinter(&buf).Summary(sum))
	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

func TestPrinterOrdersGolden(t *testing.T) {
	orders := []domain.Order{
		{Customer: "Ana", Product: "Bolo de Cenoura", Quantity: 2, UnitPrice: decimal.RequireFromString("45"), Delivery: "24/12"},
		{Customer: "Bruno", Product: "Torta", Quantity: 1, UnitPrice: decimal.RequireFromString("15")},
	}
	var buf bytes.Buffer
	require.NoError(t, textPrinter(&buf).Orders(orders, []int{3}))
	newGoldie(t).Assert(t, "orders", buf.Bytes())
}

func TestPrinterEmptySales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, textPrinter(&buf).Sales(nil))
	assert.Equal(t, "Nenhuma venda encontrada.\n", buf.String())
}

func TestPrinterJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: "json", W: &buf, Money: money.BRL}
	require.NoError(t, p.Sales(fixtureSales()))

	var resp struct {
		Status string        `json:"status"`
		Data   []domain.Sale `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Pão de Queijo", resp.Data[0].Product)
	assert.True(t, resp.Data[1].Price.Equal(decimal.RequireFromString("3.50")))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError, Message: "usage"}))
	assert.Equal(t, ExitUnavailable, GetExitCode(WrapExitError("open", fmt.Errorf("%w: disk", domain.ErrStorageUnavailable))))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError("add", &domain.ValidationError{Field: "customer", Reason: "is required"})))

	wrapped := fmt.Errorf("outer: %w", &ExitError{Code: ExitUnavailable, Message: "x"})
	assert.Equal(t, ExitUnavailable, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError("venda não registrada", &domain.ValidationError{Field: "product", Reason: "is required"})
	assert.Equal(t, "venda não registrada: invalid product: is required", err.Error())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
