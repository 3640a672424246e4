/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestKeysCoverEveryEnvOverride(t *testing.T) {
	keys := Keys()
	if len(keys) != 11 {
		t.Fatalf("Keys() = %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
	envs := map[string]bool{}
	for _, k := range keys {
		envs[fields[k].env] = true
	}
	for _, env := range []string{EnvDataDir, EnvFallbackDir, EnvDefaultTheme, EnvExportDir, EnvCurrencySymbol, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		if !envs[env] {
			t.Fatalf("no key for %s", env)
		}
	}
}

func TestGetSet(t *testing.T) {
	cfg := Defaults()
	cases := []struct{ key, in, want string }{
		{"storage.data_dir", " /srv/padaria ", "/srv/padaria"},
		{"general.notebook_autosave_ms", "500", "500"},
		{"export.include_orders", "false", "false"},
		{"logging.level", "WARN", "warn"},
		{"logging.format", "json", "json"},
		{"logging.source", "1", "true"},
	}
	for _, tc := range cases {
		if err := Set(&cfg, tc.key, tc.in); err != nil {
			t.Fatalf("Set(%s, %q) error: %v", tc.key, tc.in, err)
		}
		got, err := Get(cfg, tc.key)
		if err != nil || got != tc.want {
			t.Fatalf("Get(%s) = %q, %v; want %q", tc.key, got, err, tc.want)
		}
	}
	if cfg.Export.IncludeOrders || cfg.General.NotebookAutosaveMs != 500 {
		t.Fatalf("Set did not update the struct: %#v", cfg)
	}
}

func TestSetRejects(t *testing.T) {
	cfg := Defaults()
	if err := Set(&cfg, "storage.nope", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, err := Get(cfg, "nope"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	for key, v := range map[string]string{
		"logging.level":                "verbose",
		"logging.format":               "xml",
		"export.include_orders":        "talvez",
		"general.notebook_autosave_ms": "0",
	} {
		err := Set(&cfg, key, v)
		if err == nil || !strings.HasPrefix(err.Error(), key+" ") {
			t.Fatalf("Set(%s, %q) = %v", key, v, err)
		}
	}
	if cfg != Defaults() {
		t.Fatalf("rejected values changed the config: %#v", cfg)
	}
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	isolate(t)
	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg.General.DefaultTheme = "darkly"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvDataDir, "/env/only")
	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got.Storage.DataDir != "" || got.General.DefaultTheme != "darkly" {
		t.Fatalf("LoadFile() = %#v", got)
	}
	if env, ok := EnvOverrideFor("storage.data_dir"); !ok || env != EnvDataDir {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("export.include_orders"); ok {
		t.Fatalf("export.include_orders has no env override")
	}
}
