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
	"strconv"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"

	"github.com/jung-kurt/gofpdf"
)

// PDF layout in millimetres on A4 landscape.
const (
	pdfMargin    = 12.0
	pdfRowHeight = 7.0
	pdfFontSize  = 9.0
)

var (
	salesColWidths  = []float64{55, 60, 30, 35, 45, 48}
	ordersColWidths = []float64{55, 70, 25, 35, 35, 53}
)

// ExportPDF writes a printable report of all sales to path: the same rows and grand total as the
// workbook, followed by the order ledger when present. Same empty policy as Export.
func (e *Exporter) ExportPDF(ctx context.Context, path string) (Result, error) {
	l := applog.WithOperation(e.log, "pdf").With(slog.String("path", path))
	snap, err := e.collect(ctx)
	if err != nil {
		l.Warn("export aborted", slog.Any("err", err))
		return Result{}, err
	}
	pdf := e.renderPDF(snap)
	if err := pdf.Error(); err != nil {
		l.Error("render pdf failed", slog.Any("err", err))
		return Result{}, fmt.Errorf("%w: render pdf: %w", domain.ErrExport, err)
	}
	if err := fsutil.WriteAtomic(path, func(w io.Writer) error { return pdf.Output(w) }); err != nil {
		l.Error("write pdf failed", slog.Any("err", err))
		return Result{}, fmt.Errorf("%w: %w", domain.ErrExport, err)
	}
	res := Result{Path: path, Kind: KindPDF, Rows: len(snap.sales), Orders: len(snap.orders), Total: snap.total}
	l.Info("export written", slog.Int("rows", res.Rows), slog.Int("orders", res.Orders))
	return res, nil
}

func (e *Exporter) renderPDF(snap snapshot) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	// Core fonts are cp1252; translate so accented Portuguese text renders.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Relatório de Vendas"), false)
	pdf.SetCreator("gestaovendas", false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Relatório de Vendas"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.CellFormat(0, 6, tr("Gerado em "+e.stamp(e.now())), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	rows := make([][]string, 0, len(snap.sales))
	for _, s := range snap.sales {
		rows = append(rows, []string{s.Customer, s.Product, e.money.String(s.Price), s.PaymentType, s.Seller, e.stamp(s.CreatedAt)})
	}
	e.pdfTable(pdf, tr, SalesHeader, salesColWidths, rows, 1, 2, e.money.String(snap.total), 2)

	if len(snap.orders) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(OrdersSheet), "", 1, "L", false, 0, "")
		rows = rows[:0]
		for _, o := range snap.orders {
			rows = append(rows, []string{o.Customer, o.Product, strconv.Itoa(o.Quantity), e.money.String(o.UnitPrice), e.money.String(o.Total()), o.Delivery})
		}
		e.pdfTable(pdf, tr, OrdersHeader, ordersColWidths, rows, 3, 4, e.money.String(snap.oTotal), 3, 4)
	}
	return pdf
}

// pdfTable draws header, rows and a total row with the label in column labelCol and the amount in valueCol.
// Amount columns are right-aligned.
func (e *Exporter) pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, header []string, widths []float64, rows [][]string, labelCol, valueCol int, total string, amountCols ...int) {
	right := map[int]bool{}
	for _, c := range amountCols {
		right[c] = true
	}
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(221, 235, 247)
		for i, h := range header {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}
	_, pageH := pdf.GetPageSize()
	drawHeader()
	for _, r := range rows {
		if pdf.GetY()+pdfRowHeight > pageH-pdfMargin-6 {
			pdf.AddPage()
			drawHeader()
		}
		for i, v := range r {
			align := "L"
			if right[i] {
				align = "R"
			}
			pdf.CellFormat(widths[i], pdfRowHeight, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", pdfFontSize)
	for i := range header {
		txt, align := "", "L"
		switch i {
		case labelCol:
			txt = TotalLabel
		case valueCol:
			txt, align = total, "R"
		}
		pdf.CellFormat(widths[i], pdfRowHeight, tr(txt), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
