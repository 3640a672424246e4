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
	"strconv"

	"gestaovendas/internal/app"
	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"
	"gestaovendas/internal/notebook"

	"github.com/spf13/cobra"
)

func newOrdersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"encomendas"},
		Short:   "Caderno de encomendas: listar com total e adicionar",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "total",
		Short: "Listar as encomendas com o TOTAL GERAL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				text, err := s.LoadNotebook(notebook.KindOrders)
				if err != nil {
					return WrapExitError("caderno não lido", err)
				}
				l := notebook.ParseLedger(text)
				return opts.printer.Orders(l.Orders, l.Skipped)
			})
		},
	})
	cmd.AddCommand(newOrdersAddCommand(opts))
	return cmd
}

func newOrdersAddCommand(opts *RootOptions) *cobra.Command {
	var delivery string
	cmd := &cobra.Command{
		Use:   "add <cliente> <produto> <quantidade> <valor unitário>",
		Short: "Adicionar uma encomenda ao caderno",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil || qty <= 0 {
				return WrapExitError("quantidade inválida", &domain.ValidationError{Field: "quantity", Reason: "must be a positive integer"})
			}
			price, err := money.Parse(args[3])
			if err != nil {
				return WrapExitError("valor inválido", err)
			}
			line := notebook.FormatOrder(domain.Order{
				Customer: args[0], Product: args[1], Quantity: qty, UnitPrice: price, Delivery: delivery,
			})
			if _, err := notebook.ParseOrder(line); err != nil {
				return WrapExitError("encomenda inválida", err)
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				if err := s.AppendNotebook(notebook.KindOrders, line); err != nil {
					return WrapExitError("caderno não salvo", err)
				}
				return opts.printer.Message("Encomenda adicionada: %s", line)
			})
		},
	}
	cmd.Flags().StringVarP(&delivery, "delivery", "d", "", "delivery date or note")
	return cmd
}
