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

	"gestaovendas/internal/app"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <planilha>",
		Short: "Importar vendas de .xlsx ou .csv",
		Long: `Importa vendas de uma planilha. As colunas são reconhecidas pelo cabeçalho
(cliente, produto, quantidade, valor unitário, vendedor, pagamento). Todas as linhas válidas
são gravadas em uma única transação; linhas inválidas são listadas e ignoradas.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				rep, err := s.Import(ctx, args[0])
				if err != nil {
					return WrapExitError("importação cancelada", err)
				}
				if opts.printer.json() {
					skipped := make([]string, 0, len(rep.Skipped))
					for _, e := range rep.Skipped {
						skipped = append(skipped, e.Error())
					}
					return opts.printer.JSON(map[string]any{"imported": len(rep.Imported), "skipped": skipped})
				}
				if err := opts.printer.Message("%d venda(s) importada(s) de %s.", len(rep.Imported), rep.Path); err != nil {
					return err
				}
				for _, e := range rep.Skipped {
					if err := opts.printer.Message("  ignorada: %v", e); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newBackupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <arquivo.json>",
		Short: "Salvar todas as vendas em um arquivo JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				n, err := s.WriteBackup(ctx, args[0])
				if err != nil {
					return WrapExitError("backup não gravado", err)
				}
				return opts.printer.Message("%d venda(s) salvas em %s.", n, args[0])
			})
		},
	}
}

func newRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <arquivo.json>",
		Short: "Adicionar as vendas de um backup JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sales, err := s.RestoreBackup(ctx, args[0])
				if err != nil {
					return WrapExitError("backup não restaurado", err)
				}
				return opts.printer.Message("%d venda(s) restaurada(s).", len(sales))
			})
		},
	}
}

func newDBCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manutenção do banco de dados",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Copiar o banco para a pasta de backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				path, err := s.Sales.Backup(ctx)
				if err != nil {
					return WrapExitError("cópia do banco falhou", err)
				}
				return opts.printer.Message("Banco copiado para %s.", path)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Mostrar a pasta de dados em uso",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				if opts.printer.json() {
					return opts.printer.JSON(map[string]any{
						"dir": s.Dir, "database": s.Sales.Path(), "fallback": s.UsedFallback,
					})
				}
				return opts.printer.Message("%s", s.Sales.Path())
			})
		},
	})
	return cmd
}
