/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps the undo/redo history of a text buffer.
package undo

import (
	"sync"
	"time"
)

// Snapshot is a buffer state that an undo step restores.
type Snapshot struct {
	Text string
	TS   time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap on the undo stack; the oldest states are dropped when exceeded.
	MaxBytes int
	// MaxDepth limits the number of undo steps (0 means unlimited).
	MaxDepth int
	// MinInterval groups edits recorded within the interval into one undo step.
	MinInterval time.Duration
}

// History is an undo/redo stack of buffer states. It is safe for concurrent use.
type History struct {
	cfg  Config
	mu   sync.Mutex
	undo []Snapshot
	redo []Snapshot
	// accounting for the undo stack only
	totalBytes int
	lastTS     time.Time
}

func NewHistory(cfg Config) *History {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024 // 4 MiB
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 200
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 750 * time.Millisecond
	}
	return &History{cfg: cfg}
}

// Record saves prev, the state before an edit made at ts. Edits within MinInterval of the
// previous edit extend the same step, so undo returns to the state before the burst.
// Any new edit clears the redo stack.
func (h *History) Record(prev string, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redo = nil
	burst := len(h.undo) > 0 && !h.lastTS.IsZero() && ts.Sub(h.lastTS) < h.cfg.MinInterval
	h.lastTS = ts
	if burst {
		return
	}
	h.undo = append(h.undo, Snapshot{Text: prev, TS: ts})
	h.totalBytes += len(prev)
	h.enforceCapsLocked()
}

// Undo returns the state to restore and stores cur for Redo.
func (h *History) Undo(cur string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return "", false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.totalBytes -= len(s.Text)
	h.redo = append(h.redo, Snapshot{Text: cur, TS: time.Now()})
	h.lastTS = time.Time{}
	return s.Text, true
}

// Redo reverses the last Undo and stores cur for Undo.
func (h *History) Redo(cur string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return "", false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, Snapshot{Text: cur, TS: time.Now()})
	h.totalBytes += len(cur)
	h.lastTS = time.Time{}
	h.enforceCapsLocked()
	return s.Text, true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo = nil, nil
	h.totalBytes = 0
	h.lastTS = time.Time{}
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (totalBytes, undoDepth, redoDepth int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalBytes, len(h.undo), len(h.redo)
}

func (h *History) enforceCapsLocked() {
	drop := 0
	if len(h.undo) > h.cfg.MaxDepth {
		drop = len(h.undo) - h.cfg.MaxDepth
	}
	bytes := h.totalBytes
	for i := 0; i < drop; i++ {
		bytes -= len(h.undo[i].Text)
	}
	// keep at least the newest state even if it alone exceeds MaxBytes
	for bytes > h.cfg.MaxBytes && drop < len(h.undo)-1 {
		bytes -= len(h.undo[drop].Text)
		drop++
	}
	if drop == 0 {
		return
	}
	h.undo = append([]Snapshot(nil), h.undo[drop:]...)
	h.totalBytes = bytes
}
