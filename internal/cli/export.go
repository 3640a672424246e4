/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"errors"
	"path/filepath"

	"gestaovendas/internal/app"
	"gestaovendas/internal/export"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	var format string
	var withOrders bool
	cmd := &cobra.Command{
		Use:   "export <arquivo>",
		Short: "Exportar vendas (e encomendas) para Excel ou PDF",
		Long: `Exporta todas as vendas para uma planilha .xlsx ou um relatório .pdf, com uma linha
"TOTAL GERAL" ao final. Sem --format, o tipo é deduzido da extensão do arquivo.
Caminhos relativos partem da pasta de exportação configurada, quando houver.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if dir := opts.cfg.Export.Dir; dir != "" && !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			kind := export.KindFromPath(path)
			if cmd.Flags().Changed("format") {
				k, err := export.ParseKind(format)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: err.Error()}
				}
				kind = k
			}
			if cmd.Flags().Changed("with-orders") {
				opts.cfg.Export.IncludeOrders = withOrders
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				out := <-s.Exporter.Start(ctx, path, kind)
				if out.Err != nil {
					if errors.Is(out.Err, export.ErrNothingToExport) {
						return WrapExitError("nada para exportar", out.Err)
					}
					return WrapExitError("falha na exportação", out.Err)
				}
				r := out.Result
				if opts.printer.json() {
					return opts.printer.JSON(map[string]any{
						"path": r.Path, "kind": string(r.Kind), "rows": r.Rows, "orders": r.Orders, "total": r.Total,
					})
				}
				return opts.printer.Message("Exportado para %s: %d venda(s), %d encomenda(s), total %s.",
					r.Path, r.Rows, r.Orders, opts.printer.Money.String(r.Total))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format (xlsx|pdf)")
	cmd.Flags().BoolVar(&withOrders, "with-orders", true, "include the order notebook")
	return cmd
}
