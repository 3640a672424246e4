/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gestaovendas/internal/domain"
	applog "gestaovendas/internal/log"
	"gestaovendas/internal/money"

	"github.com/shopspring/decimal"
)

// Defaults for columns absent from the sheet.
const (
	DefaultPayment = "Não Informado"
	DefaultSeller  = "Importado"
)

// ErrNoRows is returned when a sheet has no importable row.
var ErrNoRows = errors.New("no valid rows to import")

// RowError reports a skipped row. Line is the spreadsheet row number (the header is line 1).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Inserter inserts a batch of sales atomically.
type Inserter interface {
	InsertMany(ctx context.Context, ins []domain.SaleInput) ([]domain.Sale, error)
}

// Report summarizes an import.
type Report struct {
	Path     string
	Mapping  Mapping
	Imported []domain.Sale
	Skipped  []RowError
}

// Build turns table rows into sale inputs using m. The price of a sale is quantity times unit
// price; quantity defaults to 1. Rows that cannot be converted are skipped and reported; blank rows
// are ignored.
func Build(t Table, m Mapping) ([]domain.SaleInput, []RowError) {
	var (
		out  []domain.SaleInput
		errs []RowError
	)
	for i, row := range t.Rows {
		if blank(row) {
			continue
		}
		in, err := buildRow(row, m)
		if err != nil {
			errs = append(errs, RowError{Line: i + 2, Err: err})
			continue
		}
		out = append(out, in)
	}
	return out, errs
}

func buildRow(row []string, m Mapping) (domain.SaleInput, error) {
	get := func(f Field) (string, bool) {
		idx, ok := m[f]
		if !ok || idx < 0 || idx >= len(row) {
			return "", ok
		}
		return strings.TrimSpace(row[idx]), ok
	}
	qty := decimal.NewFromInt(1)
	if q, _ := get(FieldQuantity); q != "" {
		d, err := money.Parse(q)
		if err != nil || !d.IsInteger() || !d.IsPositive() {
			return domain.SaleInput{}, &domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("%q is not a positive integer", q)}
		}
		qty = d
	}
	unit, _ := get(FieldUnitPrice)
	price, err := money.Parse(unit)
	if err != nil {
		return domain.SaleInput{}, err
	}
	customer, _ := get(FieldCustomer)
	product, _ := get(FieldProduct)
	payment, _ := get(FieldPayment)
	if payment == "" {
		payment = DefaultPayment
	}
	seller, _ := get(FieldSeller)
	if seller == "" {
		seller = DefaultSeller
	}
	in := domain.SaleInput{
		Customer:    customer,
		Product:     product,
		Price:       price.Mul(qty),
		PaymentType: payment,
		Seller:      seller,
	}.Normalize()
	if err := in.Validate(); err != nil {
		return domain.SaleInput{}, err
	}
	return in, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Import reads path, maps its columns automatically and inserts every valid row in one
// transaction. Nothing is inserted when required columns are missing or no row is valid.
func Import(ctx context.Context, ins Inserter, path string) (Report, error) {
	l := applog.WithOperation(applog.WithComponent("import"), "import").With(slog.String("path", path))
	rep := Report{Path: path}
	t, err := ReadTable(path)
	if err != nil {
		return rep, err
	}
	m, missing := AutoMap(t.Header)
	rep.Mapping = m
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		return rep, &domain.ValidationError{Field: "columns", Reason: "no column found for " + strings.Join(names, ", ")}
	}
	inputs, skipped := Build(t, m)
	rep.Skipped = skipped
	for _, s := range skipped {
		l.Warn("row skipped", slog.Int("line", s.Line), slog.Any("err", s.Err))
	}
	if len(inputs) == 0 {
		return rep, ErrNoRows
	}
	sales, err := ins.InsertMany(ctx, inputs)
	if err != nil {
		return rep, fmt.Errorf("insert imported sales: %w", err)
	}
	rep.Imported = sales
	l.Info("import finished", slog.Int("imported", len(sales)), slog.Int("skipped", len(skipped)))
	return rep, nil
}
