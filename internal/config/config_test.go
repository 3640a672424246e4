/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	for _, k := range []string{EnvDataDir, EnvFallbackDir, EnvDefaultTheme, EnvExportDir, EnvCurrencySymbol, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.DefaultTheme != "cosmo" || cfg.Export.CurrencySymbol != "R$" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Storage.DataDir = "/srv/padaria"
	cfg.General.DefaultTheme = "darkly"
	cfg.Export.IncludeOrders = false
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Storage.DataDir != "/srv/padaria" || got.General.DefaultTheme != "darkly" || got.Export.IncludeOrders {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.General.DefaultTheme != "cosmo" {
		t.Fatalf("defaults should survive a bad file: %#v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, "/data/vendas")
	t.Setenv(EnvCurrencySymbol, "€")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogSource, "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.DataDir != "/data/vendas" || cfg.Export.CurrencySymbol != "€" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Source {
		t.Fatalf("logging overrides not applied: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("storage.data_dir"); !ok || env != EnvDataDir {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("export.dir"); ok {
		t.Fatalf("export.dir is not overridden")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "Warn"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/gv.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "warn" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/gv.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}
