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
	"strings"

	"gestaovendas/internal/app"
	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"

	"github.com/spf13/cobra"
)

func newSalesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sales",
		Aliases: []string{"vendas"},
		Short:   "Registrar, listar, buscar, editar e excluir vendas",
	}
	cmd.AddCommand(newSalesAddCommand(opts))
	cmd.AddCommand(newSalesListCommand(opts))
	cmd.AddCommand(newSalesSearchCommand(opts))
	cmd.AddCommand(newSalesEditCommand(opts))
	cmd.AddCommand(newSalesDeleteCommand(opts))
	cmd.AddCommand(newSalesSummaryCommand(opts))
	return cmd
}

type saleFlags struct {
	customer, product, price, payment, seller string
}

func (f *saleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.customer, "customer", "c", "", "customer name")
	cmd.Flags().StringVarP(&f.product, "product", "p", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "price, e.g. 5,50 or 5.50")
	cmd.Flags().StringVar(&f.payment, "payment", "", "payment type ("+strings.Join(domain.PaymentTypes, ", ")+", ...)")
	cmd.Flags().StringVarP(&f.seller, "seller", "s", "", "seller name")
}

func newSalesAddCommand(opts *RootOptions) *cobra.Command {
	var f saleFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Registrar uma venda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := money.Parse(f.price)
			if err != nil {
				return WrapExitError("preço inválido", err)
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sale, err := s.Sales.Insert(ctx, domain.SaleInput{
					Customer:    f.customer,
					Product:     f.product,
					Price:       price,
					PaymentType: f.payment,
					Seller:      f.seller,
				})
				if err != nil {
					return WrapExitError("venda não registrada", err)
				}
				return opts.printer.Sale(sale)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newSalesListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Listar todas as vendas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sales, err := s.Sales.ListAll(ctx)
				if err != nil {
					return WrapExitError("falha ao listar vendas", err)
				}
				return opts.printer.Sales(sales)
			})
		},
	}
}

func newSalesSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <texto>",
		Short: "Buscar vendas por cliente, produto ou vendedor",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sales, err := s.Sales.Search(ctx, query)
				if err != nil {
					return WrapExitError("falha na busca", err)
				}
				return opts.printer.Sales(sales)
			})
		},
	}
}

func newSalesEditCommand(opts *RootOptions) *cobra.Command {
	var f saleFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Alterar campos de uma venda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var u domain.SaleUpdate
			if cmd.Flags().Changed("customer") {
				u.Customer = &f.customer
			}
			if cmd.Flags().Changed("product") {
				u.Product = &f.product
			}
			if cmd.Flags().Changed("payment") {
				u.PaymentType = &f.payment
			}
			if cmd.Flags().Changed("seller") {
				u.Seller = &f.seller
			}
			if cmd.Flags().Changed("price") {
				price, err := money.Parse(f.price)
				if err != nil {
					return WrapExitError("preço inválido", err)
				}
				u.Price = &price
			}
			if u.IsEmpty() {
				return &ExitError{Code: ExitCommandError, Message: "nada para alterar: informe ao menos um campo"}
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sale, err := s.Sales.Update(ctx, id, u)
				if err != nil {
					return WrapExitError("venda não alterada", err)
				}
				return opts.printer.Sale(sale)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newSalesDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Excluir uma venda permanentemente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				if err := s.Sales.Delete(ctx, id); err != nil {
					return WrapExitError("venda não excluída", err)
				}
				return opts.printer.Message("Venda %d excluída.", id)
			})
		},
	}
}

func newSalesSummaryCommand(opts *RootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Painel: faturamento, ticket médio, produtos e pagamentos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				sum, err := s.Sales.Summary(ctx, top)
				if err != nil {
					return WrapExitError("falha ao resumir vendas", err)
				}
				return opts.printer.Summary(sum)
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of products to show (0 = all)")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ExitError{Code: ExitCommandError, Message: "id inválido: " + s}
	}
	return id, nil
}
