/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package datadir picks the single writable directory that holds the database, the notebook files
// and the theme preference. Resolution happens once at startup and the result is passed down.
package datadir

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gestaovendas/internal/domain"
	applog "gestaovendas/internal/log"
)

const (
	PrimaryDirName  = "_internal_data"
	FallbackDirName = "GestaoVendasData"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Dir          string
	Primary      string
	Fallback     string
	UsedFallback bool
	PrimaryErr   error // why the primary was rejected, if it was
}

// DefaultPrimary returns <executable dir>/_internal_data, or ./_internal_data when the executable
// path cannot be determined.
func DefaultPrimary() string {
	exe, err := os.Executable()
	if err != nil {
		abs, _ := filepath.Abs(PrimaryDirName)
		return abs
	}
	return filepath.Join(filepath.Dir(exe), PrimaryDirName)
}

// DefaultFallback returns <home>/Documents/GestaoVendasData.
func DefaultFallback() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), FallbackDirName)
	}
	return filepath.Join(home, "Documents", FallbackDirName)
}

// Resolve returns primary when it can be created and written to, otherwise fallback.
// When neither is usable the error wraps domain.ErrStorageUnavailable and carries both causes.
func Resolve(primary, fallback string) (Resolution, error) {
	l := applog.WithOperation(applog.WithComponent("datadir"), "resolve")
	res := Resolution{Primary: primary, Fallback: fallback}
	perr := Ensure(primary)
	if perr == nil {
		res.Dir = primary
		return res, nil
	}
	res.PrimaryErr = perr
	l.Warn("primary data dir not writable", slog.String("dir", primary), slog.Any("err", perr))
	if strings.TrimSpace(fallback) == "" || filepath.Clean(fallback) == filepath.Clean(primary) {
		return res, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, perr)
	}
	if ferr := Ensure(fallback); ferr != nil {
		l.Error("fallback data dir not writable", slog.String("dir", fallback), slog.Any("err", ferr))
		return res, fmt.Errorf("%w: primary: %v; fallback: %v", domain.ErrStorageUnavailable, perr, ferr)
	}
	res.Dir = fallback
	res.UsedFallback = true
	l.Info("using fallback data dir", slog.String("dir", fallback))
	return res, nil
}

// Ensure creates dir when needed and checks that a file can be created inside it.
func Ensure(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("data dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}
