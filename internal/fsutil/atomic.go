/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fsutil holds the small file helpers shared by the flat-file stores and the exporters.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempPath returns a unique sibling path for path, used as the staging file of an atomic write.
func TempPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
}

// WriteFileAtomic writes data to a temp file next to path, flushes it to disk and renames it over path.
// On failure the temp file is removed and path is left untouched.
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic is WriteFileAtomic for streaming producers such as document renderers.
func WriteAtomic(path string, fill func(w io.Writer) error) (err error) {
	if path == "" {
		return errors.New("path is empty")
	}
	temp := TempPath(path)
	defer func() {
		if err != nil {
			_ = os.Remove(temp)
		}
	}()
	if err := writeFileSync(temp, fill); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	// os.Rename replaces an existing destination in one step on every supported platform.
	if err := os.Rename(temp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFileSync writes to a file and ensures it is flushed to disk.
func writeFileSync(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fill(f); err != nil {
		return err
	}
	return f.Sync()
}

// CopyFile copies src to dst, overwriting dst.
func CopyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
