/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package importer loads sales from spreadsheets (.xlsx or .csv) whose columns are mapped to sale
// fields by header heuristics, and inserts them in a single transaction.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gestaovendas/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Table is a header row plus data rows, all as text.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads the first sheet of an .xlsx file or a .csv file.
func ReadTable(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return Table{}, fmt.Errorf("%w: open %s: %w", domain.ErrIO, filepath.Base(path), err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
	return Table{}, &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(path))}
}

func readXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: open %s: %w", domain.ErrIO, filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("%w: read sheet %q: %w", domain.ErrIO, sheet, err)
	}
	return toTable(rows)
}

// ReadCSV reads CSV text. The delimiter (';', ',' or tab) is detected from the header line.
func ReadCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: read csv: %w", domain.ErrIO, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("malformed csv: %v", err)}
	}
	return toTable(rows)
}

func detectDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	best, bestN := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func toTable(rows [][]string) (Table, error) {
	if len(rows) == 0 {
		return Table{}, &domain.ValidationError{Field: "file", Reason: "no header row"}
	}
	t := Table{Header: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	t.Rows = rows[1:]
	return t, nil
}
