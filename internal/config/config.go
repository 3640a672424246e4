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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gestaovendas/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user config directory.
// Environment variables are read-only overrides applied after the file.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// The active theme is not stored here; it lives in the data directory next to the database
// so that it travels with the data. General.DefaultTheme is only the first-run value.

type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`     // empty: <executable dir>/_internal_data
	FallbackDir string `yaml:"fallback_dir"` // empty: <home>/Documents/GestaoVendasData
}

type GeneralConfig struct {
	DefaultTheme string `yaml:"default_theme"`
	// NotebookAutosaveMs debounces notebook autosave; 0 saves only on close.
	NotebookAutosaveMs int `yaml:"notebook_autosave_ms"`
}

type ExportConfig struct {
	Dir            string `yaml:"dir"` // default directory suggested for exports
	CurrencySymbol string `yaml:"currency_symbol"`
	IncludeOrders  bool   `yaml:"include_orders"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	General       GeneralConfig `yaml:"general"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DefaultTheme: "cosmo", NotebookAutosaveMs: 1500},
		Export:        ExportConfig{CurrencySymbol: "R$", IncludeOrders: true},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "GV_CONFIG"
	EnvDataDir        = "GV_DATA_DIR"
	EnvFallbackDir    = "GV_FALLBACK_DIR"
	EnvDefaultTheme   = "GV_DEFAULT_THEME"
	EnvExportDir      = "GV_EXPORT_DIR"
	EnvCurrencySymbol = "GV_CURRENCY_SYMBOL"
	EnvLogLevel       = "GV_LOG_LEVEL"
	EnvLogFormat      = "GV_LOG_FORMAT"
	EnvLogSource      = "GV_LOG_SOURCE"
	EnvLogFile        = "GV_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GV_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GestaoVendas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GestaoVendas")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gestaovendas")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "gestaovendas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A missing file is not an error; a malformed file is reported but defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var loadErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, loadErr
}

// Save writes cfg as YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.Storage.DataDir); s != "" {
		dst.Storage.DataDir = s
	}
	if s := strings.TrimSpace(src.Storage.FallbackDir); s != "" {
		dst.Storage.FallbackDir = s
	}
	if s := strings.TrimSpace(src.General.DefaultTheme); s != "" {
		dst.General.DefaultTheme = s
	}
	if src.General.NotebookAutosaveMs > 0 {
		dst.General.NotebookAutosaveMs = src.General.NotebookAutosaveMs
	}
	if s := strings.TrimSpace(src.Export.Dir); s != "" {
		dst.Export.Dir = s
	}
	if s := strings.TrimSpace(src.Export.CurrencySymbol); s != "" {
		dst.Export.CurrencySymbol = s
	}
	// booleans: copy directly from the file so user preferences persist
	dst.Export.IncludeOrders = src.Export.IncludeOrders
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFallbackDir)); v != "" {
		cfg.Storage.FallbackDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultTheme)); v != "" {
		cfg.General.DefaultTheme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCurrencySymbol)); v != "" {
		cfg.Export.CurrencySymbol = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	f, ok := fields[key]
	if !ok || f.env == "" || strings.TrimSpace(os.Getenv(f.env)) == "" {
		return "", false
	}
	return f.env, true
}
