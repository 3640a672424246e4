/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backup writes and restores portable JSON snapshots of the sales table.
// Documents are validated against an embedded JSON Schema before they are decoded.
package backup

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/fsutil"
	applog "gestaovendas/internal/log"
	"gestaovendas/internal/version"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// FormatVersion is the document format written by Write.
const FormatVersion = 1

//go:embed schema/backup.schema.json
var schemaJSON []byte

// Document is the on-disk backup format.
type Document struct {
	FormatVersion int           `json:"format_version"`
	ExportedAt    time.Time     `json:"exported_at"`
	AppVersion    string        `json:"app_version,omitempty"`
	Sales         []domain.Sale `json:"sales"`
}

// Lister reads every sale.
type Lister interface {
	ListAll(ctx context.Context) ([]domain.Sale, error)
}

// Inserter inserts sales in one transaction.
type Inserter interface {
	InsertMany(ctx context.Context, ins []domain.SaleInput) ([]domain.Sale, error)
}

// Write snapshots all sales to path and returns how many were written.
func Write(ctx context.Context, l Lister, path string) (int, error) {
	log := applog.WithOperation(applog.WithComponent("backup"), "write").With(slog.String("path", path))
	sales, err := l.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sales: %w", err)
	}
	doc := Document{
		FormatVersion: FormatVersion,
		ExportedAt:    time.Now().UTC(),
		AppVersion:    version.String(),
		Sales:         sales,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode backup: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n')); err != nil {
		log.Error("write backup failed", slog.Any("err", err))
		return 0, fmt.Errorf("%w: write backup: %w", domain.ErrIO, err)
	}
	log.Info("backup written", slog.Int("sales", len(sales)))
	return len(sales), nil
}

// Read loads and validates a backup document.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read backup: %w", domain.ErrIO, err)
	}
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: decode backup: %w", domain.ErrValidation, err)
	}
	return doc, nil
}

// Validate checks data against the backup schema. Violations wrap domain.ErrValidation.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: backup is not valid JSON: %w", domain.ErrValidation, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: backup schema: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// Restore inserts the sales of doc as new sales. Ids and timestamps are assigned anew by the store;
// the insert is all-or-nothing.
func Restore(ctx context.Context, ins Inserter, doc Document) ([]domain.Sale, error) {
	if doc.FormatVersion != FormatVersion {
		return nil, &domain.ValidationError{Field: "format_version", Reason: fmt.Sprintf("unsupported version %d", doc.FormatVersion)}
	}
	if len(doc.Sales) == 0 {
		return nil, &domain.ValidationError{Field: "sales", Reason: "backup contains no sales"}
	}
	inputs := make([]domain.SaleInput, len(doc.Sales))
	for i, s := range doc.Sales {
		inputs[i] = s.Input()
	}
	out, err := ins.InsertMany(ctx, inputs)
	if err != nil {
		return nil, err
	}
	applog.WithComponent("backup").Info("backup restored", slog.Int("sales", len(out)))
	return out, nil
}
