/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pricing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"

	"github.com/xuri/excelize/v2"
)

const (
	// HistoryFile is the suggested name of the calculation history workbook.
	HistoryFile  = "historico_de_calculos.xlsx"
	HistorySheet = "Histórico"
	historyStamp = "02-01-2006 15:04:05"
)

// HistoryHeader is the first row of the history sheet.
var HistoryHeader = []string{
	"Data e Hora", "Nome do Produto", "Custo do Produto (R$)", "Gasto Operacional (R$)",
	"Imposto (%)", "Taxa Transação (%)", "Margem Lucro (%)",
	"Preço de Venda Total (R$)", "Lucro Bruto Total (R$)",
	"Unidades", "Preço por Unidade (R$)", "Lucro por Unidade (R$)",
}

// AppendHistory adds q as a new row of the history workbook at path, creating the workbook with
// its header when it does not exist. The unit columns stay empty when the quote has no units.
// The workbook is replaced atomically; a failure leaves the previous file in place.
func AppendHistory(path string, q Quote, at time.Time) (int, error) {
	l := applog.WithOperation(applog.WithComponent("pricing"), "history").With(slog.String("path", path))
	if !q.Price.IsPositive() {
		return 0, &domain.ValidationError{Field: "price", Reason: "calculate a price before saving"}
	}
	f, sheet, err := openHistory(path)
	if err != nil {
		l.Error("open history failed", slog.Any("err", err))
		return 0, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", domain.ErrIO, sheet, err)
	}
	row := len(rows) + 1
	if row == 1 {
		if err := writeHistoryHeader(f, sheet); err != nil {
			return 0, fmt.Errorf("%w: write header: %w", domain.ErrIO, err)
		}
		row = 2
	}
	values := []any{
		at.Format(historyStamp), q.Product,
		q.Cost.Round(2).InexactFloat64(), q.Operating.Round(2).InexactFloat64(),
		q.TaxPct.Round(2).InexactFloat64(), q.FeePct.Round(2).InexactFloat64(), q.MarginPct.Round(2).InexactFloat64(),
		q.Price.InexactFloat64(), q.Profit.InexactFloat64(),
	}
	if q.Units > 0 {
		values = append(values, q.Units, q.UnitPrice.InexactFloat64(), q.UnitProfit.InexactFloat64())
	}
	ref, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, ref, &values); err != nil {
		return 0, fmt.Errorf("%w: write row: %w", domain.ErrIO, err)
	}
	if err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	}); err != nil {
		l.Error("save history failed", slog.Any("err", err))
		return 0, fmt.Errorf("%w: save %s: %w", domain.ErrIO, path, err)
	}
	l.Info("calculation saved", slog.Int("row", row))
	return row, nil
}

// openHistory opens the workbook at path, or a new one when the file does not exist. The history
// sheet is used when present, else the first sheet.
func openHistory(path string) (*excelize.File, string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), HistorySheet); err != nil {
			_ = f.Close()
			return nil, "", err
		}
		return f, HistorySheet, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %w", domain.ErrIO, path, err)
	}
	sheet := HistorySheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	return f, sheet, nil
}

func writeHistoryHeader(f *excelize.File, sheet string) error {
	if err := f.SetSheetRow(sheet, "A1", &HistoryHeader); err != nil {
		return err
	}
	for i, h := range HistoryHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(len([]rune(h))+5)); err != nil {
			return err
		}
	}
	return nil
}
