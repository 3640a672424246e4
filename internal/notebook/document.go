/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notebook

import (
	"log/slog"
	"sync"
	"time"

	"gestaovendas/internal/undo"
)

// Document is an open notebook buffer with debounced autosave. Set marks the buffer dirty and,
// when a delay is configured, schedules a save after the edits settle. Close flushes.
// Edits are recorded for Undo and Redo.
type Document struct {
	store *Store
	save  SaveFunc
	kind  Kind
	delay time.Duration
	hist  *undo.History

	mu      sync.Mutex
	text    string
	dirty   bool
	timer   *time.Timer
	closed  bool
	lastErr error
}

// SaveFunc persists the text of a notebook.
type SaveFunc func(kind Kind, text string) error

// DocOption configures a Document.
type DocOption func(*Document)

// WithSaver routes saves through fn instead of writing to the store directly.
func WithSaver(fn SaveFunc) DocOption {
	return func(d *Document) {
		if fn != nil {
			d.save = fn
		}
	}
}

// Open loads kind from store into a new Document. delay <= 0 disables autosave.
func Open(store *Store, kind Kind, delay time.Duration, opts ...DocOption) (*Document, error) {
	text, err := store.Load(kind)
	if err != nil {
		return nil, err
	}
	d := &Document{store: store, save: store.Save, kind: kind, delay: delay, text: text, hist: undo.NewHistory(undo.Config{})}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Kind is the notebook this document edits.
func (d *Document) Kind() Kind { return d.kind }

// Text returns the current buffer.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Dirty reports unsaved changes.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Err returns the error of the last background save, if any.
func (d *Document) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Set replaces the buffer.
func (d *Document) Set(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || text == d.text {
		return
	}
	d.hist.Record(d.text, time.Now())
	d.replaceLocked(text)
}

// Undo restores the text before the last edit. It reports false when there is nothing to undo.
func (d *Document) Undo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	prev, ok := d.hist.Undo(d.text)
	if ok {
		d.replaceLocked(prev)
	}
	return ok
}

// Redo reapplies the last undone edit.
func (d *Document) Redo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	next, ok := d.hist.Redo(d.text)
	if ok {
		d.replaceLocked(next)
	}
	return ok
}

func (d *Document) replaceLocked(text string) {
	d.text = text
	d.dirty = true
	if d.delay <= 0 {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.autosave)
}

func (d *Document) autosave() {
	if err := d.Flush(); err != nil {
		d.store.log.Warn("autosave failed", slog.String("file", d.kind.FileName()), slog.Any("err", err))
	}
}

// Flush saves the buffer if it is dirty.
func (d *Document) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flushLocked()
}

func (d *Document) flushLocked() error {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.dirty {
		return nil
	}
	if err := d.save(d.kind, d.text); err != nil {
		d.lastErr = err
		return err
	}
	d.dirty = false
	d.lastErr = nil
	return nil
}

// Close flushes pending changes and stops autosave. Further Set calls are ignored.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	err := d.flushLocked()
	d.closed = true
	return err
}
