/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package app wires the data layer together for one running process: it resolves the data
// directory once, opens the sales store and creates the notebook, preference and export services
// on top of it. There is no package-level state; callers own the returned *Services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gestaovendas/internal/backup"
	"gestaovendas/internal/config"
	"gestaovendas/internal/datadir"
	"gestaovendas/internal/domain"
	"gestaovendas/internal/export"
	"gestaovendas/internal/importer"
	applog "gestaovendas/internal/log"
	"gestaovendas/internal/money"
	"gestaovendas/internal/notebook"
	"gestaovendas/internal/prefs"
	"gestaovendas/internal/storage"
)

// Options configures Open. Empty directories mean the platform defaults.
type Options struct {
	PrimaryDir    string
	FallbackDir   string
	DefaultTheme  string
	Money         money.Format
	IncludeOrders bool
	AutosaveDelay time.Duration
	Clock         func() time.Time
}

// OptionsFromConfig maps the user configuration onto Options.
func OptionsFromConfig(cfg config.AppConfig) Options {
	opts := Options{
		PrimaryDir:    cfg.Storage.DataDir,
		FallbackDir:   cfg.Storage.FallbackDir,
		DefaultTheme:  cfg.General.DefaultTheme,
		Money:         money.BRL,
		IncludeOrders: cfg.Export.IncludeOrders,
		AutosaveDelay: time.Duration(cfg.General.NotebookAutosaveMs) * time.Millisecond,
	}
	if sym := strings.TrimSpace(cfg.Export.CurrencySymbol); sym != "" {
		opts.Money = money.BRL.WithSymbol(sym)
	}
	return opts
}

// Services is the open data layer.
type Services struct {
	Dir          string
	UsedFallback bool
	Resolution   datadir.Resolution

	Sales    *storage.Store
	Prefs    *prefs.Store
	Exporter *export.Exporter

	opts Options
	log  *slog.Logger

	nbMu     sync.Mutex
	notebook *notebook.Store

	mu   sync.Mutex
	docs []*notebook.Document
}

// Open resolves the data directory and opens every service in it. When the store cannot be
// opened in the primary directory it is retried once in the fallback directory; any other
// failure is fatal.
func Open(ctx context.Context, opts Options) (*Services, error) {
	l := applog.WithOperation(applog.WithComponent("app"), "open")
	if opts.PrimaryDir == "" {
		opts.PrimaryDir = datadir.DefaultPrimary()
	}
	if opts.FallbackDir == "" {
		opts.FallbackDir = datadir.DefaultFallback()
	}
	if opts.Money == (money.Format{}) {
		opts.Money = money.BRL
	}
	res, err := datadir.Resolve(opts.PrimaryDir, opts.FallbackDir)
	if err != nil {
		l.Error("no writable data directory", slog.Any("err", err))
		return nil, err
	}
	var storeOpts []storage.Option
	if opts.Clock != nil {
		storeOpts = append(storeOpts, storage.WithClock(opts.Clock))
	}
	st, err := storage.Open(ctx, res.Dir, storeOpts...)
	if err != nil && errors.Is(err, domain.ErrStorageUnavailable) && !res.UsedFallback && canFallback(res) {
		l.Warn("store unavailable in primary dir, retrying in fallback", slog.String("dir", res.Dir), slog.Any("err", err))
		if ferr := datadir.Ensure(res.Fallback); ferr != nil {
			return nil, fmt.Errorf("%w: primary: %v; fallback: %v", domain.ErrStorageUnavailable, err, ferr)
		}
		res.PrimaryErr = err
		res.Dir = res.Fallback
		res.UsedFallback = true
		st, err = storage.Open(ctx, res.Dir, storeOpts...)
	}
	if err != nil {
		l.Error("open store failed", slog.Any("err", err))
		return nil, err
	}

	s := &Services{
		Dir:          res.Dir,
		UsedFallback: res.UsedFallback,
		Resolution:   res,
		Sales:        st,
		notebook:     notebook.New(res.Dir),
		Prefs:        prefs.New(res.Dir, opts.DefaultTheme),
		opts:         opts,
		log:          applog.WithComponent("app"),
	}
	s.Exporter = s.newExporter()
	l.Info("services ready", slog.String("dir", s.Dir), slog.Bool("fallback", s.UsedFallback))
	return s, nil
}

func canFallback(res datadir.Resolution) bool {
	return strings.TrimSpace(res.Fallback) != "" && filepath.Clean(res.Fallback) != filepath.Clean(res.Dir)
}

func (s *Services) newExporter() *export.Exporter {
	eopts := []export.Option{export.WithMoney(s.opts.Money)}
	if s.opts.IncludeOrders {
		eopts = append(eopts, export.WithOrders(export.OrderFunc(s.Orders)))
	}
	if s.opts.Clock != nil {
		eopts = append(eopts, export.WithClock(s.opts.Clock))
	}
	return export.New(s.Sales, eopts...)
}

// DataDir returns the resolved data directory.
func (s *Services) DataDir() string { return s.Dir }

// Notebooks returns the notebook store currently in use. It changes to the fallback directory
// after a failed write in the primary one.
func (s *Services) Notebooks() *notebook.Store {
	s.nbMu.Lock()
	defer s.nbMu.Unlock()
	return s.notebook
}

// LoadNotebook reads a notebook from the current notebook store.
func (s *Services) LoadNotebook(kind notebook.Kind) (string, error) {
	return s.Notebooks().Load(kind)
}

// Orders parses the order notebook.
func (s *Services) Orders() ([]domain.Order, error) {
	text, err := s.LoadNotebook(notebook.KindOrders)
	if err != nil {
		return nil, err
	}
	return notebook.ParseLedger(text).Orders, nil
}

// SaveNotebook saves a notebook. If the write fails with an I/O error while the notebook lives in
// the primary directory, the notebook store moves to the fallback directory and the save is retried once.
func (s *Services) SaveNotebook(kind notebook.Kind, text string) error {
	return s.withNotebookFallback(func(nb *notebook.Store) error { return nb.Save(kind, text) })
}

// AppendNotebook appends a line to a notebook with the same fallback as SaveNotebook.
func (s *Services) AppendNotebook(kind notebook.Kind, line string) error {
	return s.withNotebookFallback(func(nb *notebook.Store) error { return nb.Append(kind, line) })
}

// withNotebookFallback runs write against the notebook store. Writes are serialized so that an
// autosave and a command never race on the switch to the fallback directory.
func (s *Services) withNotebookFallback(write func(nb *notebook.Store) error) error {
	s.nbMu.Lock()
	defer s.nbMu.Unlock()
	err := write(s.notebook)
	if err == nil || !errors.Is(err, domain.ErrIO) {
		return err
	}
	fb := s.Resolution.Fallback
	if strings.TrimSpace(fb) == "" || filepath.Clean(s.notebook.Dir()) == filepath.Clean(fb) {
		return err
	}
	if ferr := datadir.Ensure(fb); ferr != nil {
		return fmt.Errorf("%w (fallback: %v)", err, ferr)
	}
	s.log.Warn("notebook write failed, moving notebooks to fallback dir", slog.String("dir", fb), slog.Any("err", err))
	s.notebook = notebook.New(fb)
	return write(s.notebook)
}

// OpenDocument opens an autosaving notebook document that is flushed on Close and after a crash.
// Its saves, autosaves included, go through SaveNotebook and so share its fallback.
func (s *Services) OpenDocument(kind notebook.Kind) (*notebook.Document, error) {
	d, err := notebook.Open(s.Notebooks(), kind, s.opts.AutosaveDelay, notebook.WithSaver(s.SaveNotebook))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.docs = append(s.docs, d)
	s.mu.Unlock()
	return d, nil
}

// FlushDocuments saves every open document with unsaved edits.
func (s *Services) FlushDocuments() error {
	s.mu.Lock()
	docs := append([]*notebook.Document(nil), s.docs...)
	s.mu.Unlock()
	var errs []error
	for _, d := range docs {
		if err := d.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Import loads a spreadsheet into the store.
func (s *Services) Import(ctx context.Context, path string) (importer.Report, error) {
	return importer.Import(ctx, s.Sales, path)
}

// WriteBackup writes a JSON snapshot of all sales to path.
func (s *Services) WriteBackup(ctx context.Context, path string) (int, error) {
	return backup.Write(ctx, s.Sales, path)
}

// RestoreBackup inserts the sales of the backup at path as new sales.
func (s *Services) RestoreBackup(ctx context.Context, path string) ([]domain.Sale, error) {
	doc, err := backup.Read(path)
	if err != nil {
		return nil, err
	}
	return backup.Restore(ctx, s.Sales, doc)
}

// Close flushes and closes open documents and the store.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	docs := s.docs
	s.docs = nil
	s.mu.Unlock()
	var errs []error
	for _, d := range docs {
		if err := d.Err(); err != nil {
			s.log.Warn("last autosave failed, retrying on close", slog.String("file", d.Kind().FileName()), slog.Any("err", err))
		}
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Sales.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
