/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"

	"github.com/xuri/excelize/v2"
)

// Export writes all sales to an xlsx workbook at path. The "Vendas" sheet holds one row per sale
// and a final TOTAL GERAL row; an "Encomendas" sheet is added when the order source has orders.
// With no sales it fails with ErrNothingToExport and writes nothing.
func (e *Exporter) Export(ctx context.Context, path string) (Result, error) {
	l := applog.WithOperation(e.log, "xlsx").With(slog.String("path", path))
	snap, err := e.collect(ctx)
	if err != nil {
		l.Warn("export aborted", slog.Any("err", err))
		return Result{}, err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := e.fillWorkbook(f, snap); err != nil {
		l.Error("render workbook failed", slog.Any("err", err))
		return Result{}, fmt.Errorf("%w: render workbook: %w", domain.ErrExport, err)
	}
	if err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	}); err != nil {
		l.Error("write workbook failed", slog.Any("err", err))
		return Result{}, fmt.Errorf("%w: %w", domain.ErrExport, err)
	}
	res := Result{Path: path, Kind: KindXLSX, Rows: len(snap.sales), Orders: len(snap.orders), Total: snap.total}
	l.Info("export written", slog.Int("rows", res.Rows), slog.Int("orders", res.Orders), slog.String("total", res.Total.StringFixed(2)))
	return res, nil
}

type styles struct {
	header, money, totalLabel, totalMoney int
}

func (e *Exporter) newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	numFmt := e.money.ExcelNumberFormat()
	bold := &excelize.Font{Bold: true}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: bold,
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return st, err
	}
	if st.totalLabel, err = f.NewStyle(&excelize.Style{Font: bold}); err != nil {
		return st, err
	}
	st.totalMoney, err = f.NewStyle(&excelize.Style{Font: bold, CustomNumFmt: &numFmt})
	return st, err
}

func (e *Exporter) fillWorkbook(f *excelize.File, snap snapshot) error {
	st, err := e.newStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetSheetName(f.GetSheetName(0), SalesSheet); err != nil {
		return err
	}
	if err := writeHeader(f, SalesSheet, SalesHeader, st.header); err != nil {
		return err
	}
	row := 2
	for _, s := range snap.sales {
		if err := f.SetSheetRow(SalesSheet, cell(1, row), &[]any{s.Customer, s.Product}); err != nil {
			return err
		}
		if err := setMoney(f, SalesSheet, cell(3, row), s.Price.InexactFloat64(), st.money); err != nil {
			return err
		}
		if err := f.SetSheetRow(SalesSheet, cell(4, row), &[]any{s.PaymentType, s.Seller, e.stamp(s.CreatedAt)}); err != nil {
			return err
		}
		row++
	}
	if err := writeTotal(f, SalesSheet, row, 2, 3, snap.total.InexactFloat64(), st); err != nil {
		return err
	}
	if err := setWidths(f, SalesSheet, []float64{28, 32, 14, 16, 20, 20}); err != nil {
		return err
	}
	if len(snap.orders) == 0 {
		return nil
	}
	if _, err := f.NewSheet(OrdersSheet); err != nil {
		return err
	}
	if err := writeHeader(f, OrdersSheet, OrdersHeader, st.header); err != nil {
		return err
	}
	row = 2
	for _, o := range snap.orders {
		if err := f.SetSheetRow(OrdersSheet, cell(1, row), &[]any{o.Customer, o.Product, o.Quantity}); err != nil {
			return err
		}
		if err := setMoney(f, OrdersSheet, cell(4, row), o.UnitPrice.InexactFloat64(), st.money); err != nil {
			return err
		}
		if err := setMoney(f, OrdersSheet, cell(5, row), o.Total().InexactFloat64(), st.money); err != nil {
			return err
		}
		if err := f.SetCellStr(OrdersSheet, cell(6, row), o.Delivery); err != nil {
			return err
		}
		row++
	}
	if err := writeTotal(f, OrdersSheet, row, 4, 5, snap.oTotal.InexactFloat64(), st); err != nil {
		return err
	}
	return setWidths(f, OrdersSheet, []float64{28, 32, 12, 16, 16, 18})
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cell(len(header), 1), style)
}

// writeTotal puts the grand-total label in labelCol and the amount in valueCol of row.
func writeTotal(f *excelize.File, sheet string, row, labelCol, valueCol int, total float64, st styles) error {
	if err := f.SetCellStr(sheet, cell(labelCol, row), TotalLabel); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(labelCol, row), cell(labelCol, row), st.totalLabel); err != nil {
		return err
	}
	return setMoney(f, sheet, cell(valueCol, row), total, st.totalMoney)
}

func setMoney(f *excelize.File, sheet, ref string, v float64, style int) error {
	if err := f.SetCellFloat(sheet, ref, v, -1, 64); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, ref, ref, style)
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
