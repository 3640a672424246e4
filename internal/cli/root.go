/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the command-line shell over the data layer.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"gestaovendas/internal/app"
	"gestaovendas/internal/config"
	"gestaovendas/internal/crash"
	applog "gestaovendas/internal/log"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir     string
	FallbackDir string
	Output      string // "text" | "json"
	Verbose     bool

	cfg     config.AppConfig
	printer *Printer
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "gestaovendas",
		Short:         "Gestão de Vendas - registro de vendas, encomendas e anotações",
		Long:          "Registro local de vendas de uma padaria: vendas em SQLite, caderno de encomendas e anotações, exportação para Excel e PDF.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(opts.Output) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)}
			}
			opts.setup(cmd)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default <executable dir>/_internal_data)")
	cmd.PersistentFlags().StringVar(&opts.FallbackDir, "fallback-dir", "", "fallback data directory (default ~/Documents/GestaoVendasData)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newSalesCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newBackupCommand(opts))
	cmd.AddCommand(newRestoreCommand(opts))
	cmd.AddCommand(newDBCommand(opts))
	cmd.AddCommand(newNotesCommand(opts))
	cmd.AddCommand(newOrdersCommand(opts))
	cmd.AddCommand(newPricingCommand(opts))
	cmd.AddCommand(newThemeCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}

// setup loads the configuration, applies flag overrides and initializes logging.
func (o *RootOptions) setup(cmd *cobra.Command) {
	cfg, cfgErr := config.Load()
	if o.DataDir != "" {
		cfg.Storage.DataDir = o.DataDir
	}
	if o.FallbackDir != "" {
		cfg.Storage.FallbackDir = o.FallbackDir
	}
	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	applog.Init(applog.Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   cmd.ErrOrStderr(),
	})
	if cfgErr != nil {
		applog.WithComponent("cli").Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	o.cfg = cfg
	o.printer = &Printer{Format: o.Output, W: cmd.OutOrStdout(), Money: app.OptionsFromConfig(cfg).Money}
}

// withServices opens the data layer for one command and tears it down afterwards.
// A panic inside fn produces a crash report and flushes open notebook documents.
func (o *RootOptions) withServices(cmd *cobra.Command, fn func(ctx context.Context, s *app.Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.Open(ctx, app.OptionsFromConfig(o.cfg))
	if err != nil {
		return WrapExitError("não foi possível abrir os dados", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			applog.WithComponent("cli").Warn("close failed", slog.Any("err", cerr))
		}
	}()
	defer crash.Recover(s)
	if s.UsedFallback {
		applog.WithComponent("cli").Info("using fallback data directory", slog.String("dir", s.Dir))
	}
	return fn(ctx, s)
}

// isValidOutput checks if the output format is one of the allowed values.
func isValidOutput(format string) bool {
	for _, f := range ValidOutputs {
		if f == format {
			return true
		}
	}
	return false
}
