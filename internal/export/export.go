/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the sales ledger into files: an xlsx workbook with a grand-total row
// (plus the order ledger on a second sheet when available) and a printable PDF report.
// Files are rendered in memory and then written atomically; a failed export leaves no file.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gestaovendas/internal/domain"
	applog "gestaovendas/internal/log"
	"gestaovendas/internal/money"

	"github.com/shopspring/decimal"
)

// ErrNothingToExport is returned (wrapped with domain.ErrExport) when there are no sales.
var ErrNothingToExport = errors.New("no sales to export")

const (
	SalesSheet    = "Vendas"
	OrdersSheet   = "Encomendas"
	TotalLabel    = "TOTAL GERAL"
	TimestampForm = "02/01/2006 15:04:05"
)

// SalesHeader is the column header row of the sales sheet.
var SalesHeader = []string{"Cliente", "Produto", "Preço", "Pagamento", "Vendedor", "Data/Hora"}

// OrdersHeader is the column header row of the orders sheet.
var OrdersHeader = []string{"Cliente", "Produto", "Quantidade", "Valor Unitário", "Total", "Entrega"}

// SaleLister is the read side of the storage engine used by the exporter.
type SaleLister interface {
	ListAll(ctx context.Context) ([]domain.Sale, error)
}

// OrderSource yields the parsed order ledger.
type OrderSource interface {
	Orders() ([]domain.Order, error)
}

// OrderFunc adapts a function to OrderSource.
type OrderFunc func() ([]domain.Order, error)

func (f OrderFunc) Orders() ([]domain.Order, error) { return f() }

// Kind is an export file format.
type Kind string

const (
	KindXLSX Kind = "xlsx"
	KindPDF  Kind = "pdf"
)

// ParseKind accepts "xlsx"/"excel" and "pdf".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return KindXLSX, nil
	case "pdf":
		return KindPDF, nil
	}
	return "", &domain.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", s)}
}

// KindFromPath guesses the format from the file extension, defaulting to xlsx.
func KindFromPath(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return KindPDF
	}
	return KindXLSX
}

// Result describes a written export.
type Result struct {
	Path   string
	Kind   Kind
	Rows   int // sales rows, excluding header and total
	Orders int
	Total  decimal.Decimal
}

// Exporter renders exports from a SaleLister. It only reads from the store.
type Exporter struct {
	sales  SaleLister
	orders OrderSource
	money  money.Format
	loc    *time.Location
	now    func() time.Time
	log    *slog.Logger
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithOrders adds the order ledger to exports.
func WithOrders(src OrderSource) Option { return func(e *Exporter) { e.orders = src } }

// WithMoney sets the currency display format.
func WithMoney(f money.Format) Option { return func(e *Exporter) { e.money = f } }

// WithLocation sets the time zone used to print sale timestamps. Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Exporter) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now for report headers.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

func New(sales SaleLister, opts ...Option) *Exporter {
	e := &Exporter{
		sales: sales,
		money: money.BRL,
		loc:   time.Local,
		now:   time.Now,
		log:   applog.WithComponent("export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run exports to path in the given format.
func (e *Exporter) Run(ctx context.Context, path string, kind Kind) (Result, error) {
	switch kind {
	case KindXLSX:
		return e.Export(ctx, path)
	case KindPDF:
		return e.ExportPDF(ctx, path)
	}
	return Result{}, fmt.Errorf("%w: unsupported format %q", domain.ErrExport, kind)
}

// snapshot is the data of one export run.
type snapshot struct {
	sales  []domain.Sale
	total  decimal.Decimal
	orders []domain.Order
	oTotal decimal.Decimal
}

func (e *Exporter) collect(ctx context.Context) (snapshot, error) {
	var snap snapshot
	sales, err := e.sales.ListAll(ctx)
	if err != nil {
		return snap, fmt.Errorf("%w: list sales: %w", domain.ErrExport, err)
	}
	if len(sales) == 0 {
		return snap, fmt.Errorf("%w: %w", domain.ErrExport, ErrNothingToExport)
	}
	snap.sales = sales
	snap.total = decimal.Zero
	for _, s := range sales {
		snap.total = snap.total.Add(s.Price)
	}
	snap.oTotal = decimal.Zero
	if e.orders != nil {
		orders, err := e.orders.Orders()
		if err != nil {
			// The order sheet is optional; export the sales anyway.
			e.log.Warn("order ledger unavailable", slog.Any("err", err))
		}
		snap.orders = orders
		for _, o := range orders {
			snap.oTotal = snap.oTotal.Add(o.Total())
		}
	}
	return snap, nil
}

func (e *Exporter) stamp(t time.Time) string {
	return t.In(e.loc).Format(TimestampForm)
}
