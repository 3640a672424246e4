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
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned for a dotted key that names no setting.
var ErrUnknownKey = errors.New("unknown config key")

type field struct {
	env string
	get func(c *AppConfig) string
	set func(c *AppConfig, v string) error
}

func str(p func(c *AppConfig) *string) (func(c *AppConfig) string, func(c *AppConfig, v string) error) {
	return func(c *AppConfig) string { return *p(c) },
		func(c *AppConfig, v string) error { *p(c) = strings.TrimSpace(v); return nil }
}

func oneOf(p func(c *AppConfig) *string, allowed ...string) (func(c *AppConfig) string, func(c *AppConfig, v string) error) {
	get, _ := str(p)
	return get, func(c *AppConfig, v string) error {
		v = strings.ToLower(strings.TrimSpace(v))
		for _, a := range allowed {
			if v == a {
				*p(c) = v
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

func boolean(p func(c *AppConfig) *bool) (func(c *AppConfig) string, func(c *AppConfig, v string) error) {
	return func(c *AppConfig) string { return strconv.FormatBool(*p(c)) },
		func(c *AppConfig, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return errors.New("must be true or false")
			}
			*p(c) = b
			return nil
		}
}

var fields = func() map[string]field {
	m := map[string]field{}
	add := func(key, env string, get func(c *AppConfig) string, set func(c *AppConfig, v string) error) {
		m[key] = field{env: env, get: get, set: set}
	}
	g, s := str(func(c *AppConfig) *string { return &c.Storage.DataDir })
	add("storage.data_dir", EnvDataDir, g, s)
	g, s = str(func(c *AppConfig) *string { return &c.Storage.FallbackDir })
	add("storage.fallback_dir", EnvFallbackDir, g, s)
	g, s = str(func(c *AppConfig) *string { return &c.General.DefaultTheme })
	add("general.default_theme", EnvDefaultTheme, g, s)
	add("general.notebook_autosave_ms", "",
		func(c *AppConfig) string { return strconv.Itoa(c.General.NotebookAutosaveMs) },
		func(c *AppConfig, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n <= 0 {
				return errors.New("must be a positive number of milliseconds")
			}
			c.General.NotebookAutosaveMs = n
			return nil
		})
	g, s = str(func(c *AppConfig) *string { return &c.Export.Dir })
	add("export.dir", EnvExportDir, g, s)
	g, s = str(func(c *AppConfig) *string { return &c.Export.CurrencySymbol })
	add("export.currency_symbol", EnvCurrencySymbol, g, s)
	g, s = boolean(func(c *AppConfig) *bool { return &c.Export.IncludeOrders })
	add("export.include_orders", "", g, s)
	g, s = oneOf(func(c *AppConfig) *string { return &c.Logging.Level }, "debug", "info", "warn", "error")
	add("logging.level", EnvLogLevel, g, s)
	g, s = oneOf(func(c *AppConfig) *string { return &c.Logging.Format }, "console", "json")
	add("logging.format", EnvLogFormat, g, s)
	g, s = boolean(func(c *AppConfig) *bool { return &c.Logging.Source })
	add("logging.source", EnvLogSource, g, s)
	g, s = str(func(c *AppConfig) *string { return &c.Logging.File })
	add("logging.file", EnvLogFile, g, s)
	return m
}()

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key in cfg as text.
func Get(cfg AppConfig, key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(&cfg), nil
}

// Set parses value and stores it under key in cfg.
func Set(cfg *AppConfig, key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(cfg, value); err != nil {
		return fmt.Errorf("%s %w", key, err)
	}
	return nil
}

// LoadFile reads the config file over the defaults without applying environment overrides.
// Use it to edit and Save the file so that overrides are not written back.
func LoadFile() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	return cfg, nil
}
