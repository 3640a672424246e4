/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"
	"gestaovendas/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type pricingFlags struct {
	product                           string
	cost, operating, tax, fee, margin string
	units                             int
	save                              string
}

func newPricingCommand(opts *RootOptions) *cobra.Command {
	var f pricingFlags
	cmd := &cobra.Command{
		Use:     "pricing",
		Aliases: []string{"preco"},
		Short:   "Calcular o preço de venda ideal de um produto",
		Long: `Calcula o preço de venda que cobre custo, gasto operacional, imposto e taxa de transação
e ainda deixa a margem de lucro pedida. Percentuais são sobre o preço de venda e precisam
somar menos de 100%. Com --save, o cálculo é acrescentado a uma planilha de histórico;
caminhos relativos partem da pasta de exportação configurada, quando houver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := pricing.Input{Product: f.product, Units: f.units}
			amounts := []struct {
				flag string
				raw  string
				dst  *decimal.Decimal
			}{
				{"cost", f.cost, &in.Cost},
				{"operating", f.operating, &in.Operating},
				{"tax", f.tax, &in.TaxPct},
				{"fee", f.fee, &in.FeePct},
				{"margin", f.margin, &in.MarginPct},
			}
			for _, a := range amounts {
				if !cmd.Flags().Changed(a.flag) {
					continue
				}
				d, err := money.Parse(a.raw)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("--%s: valor inválido %q", a.flag, a.raw)}
				}
				*a.dst = d
			}
			q, err := pricing.Calculate(in)
			if err != nil {
				return validationExit(err)
			}
			var saved string
			var row int
			if f.save != "" {
				saved = f.save
				if dir := opts.cfg.Export.Dir; dir != "" && !filepath.IsAbs(saved) {
					saved = filepath.Join(dir, saved)
				}
				row, err = pricing.AppendHistory(saved, q, time.Now())
				if err != nil {
					if errors.Is(err, domain.ErrValidation) {
						return validationExit(err)
					}
					return WrapExitError("histórico não salvo", err)
				}
			}
			return opts.printer.Quote(q, saved, row)
		},
	}
	cmd.Flags().StringVar(&f.product, "product", "", "product name")
	cmd.Flags().StringVar(&f.cost, "cost", "", "product cost, e.g. 10,00")
	cmd.Flags().StringVar(&f.operating, "operating", "", "operating cost")
	cmd.Flags().StringVar(&f.tax, "tax", "", "tax percentage of the sale price")
	cmd.Flags().StringVar(&f.fee, "fee", "", "transaction fee percentage")
	cmd.Flags().StringVar(&f.margin, "margin", "", "desired profit margin percentage")
	cmd.Flags().IntVar(&f.units, "units", 0, "units in the batch, for per-unit values")
	cmd.Flags().StringVar(&f.save, "save", "", "append the calculation to this history workbook (.xlsx)")
	_ = cmd.MarkFlagRequired("cost")
	return cmd
}

func validationExit(err error) *ExitError {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &ExitError{Code: ExitCommandError, Message: ve.Error(), Err: err}
	}
	return &ExitError{Code: ExitCommandError, Message: err.Error()}
}

// Quote prints a price calculation. saved and row describe the history entry, if any.
func (p *Printer) Quote(q pricing.Quote, saved string, row int) error {
	if p.json() {
		data := map[string]any{"quote": q, "breakdown": q.Breakdown()}
		if saved != "" {
			data["saved"] = map[string]any{"path": saved, "row": row}
		}
		return p.JSON(data)
	}
	tw := tabwriter.NewWriter(p.W, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "Produto:\t%s\n", q.Product)
	fmt.Fprintf(tw, "Custo total:\t%s\n", p.Money.String(q.TotalCost))
	fmt.Fprintf(tw, "Preço de venda:\t%s\n", p.Money.String(q.Price))
	fmt.Fprintf(tw, "Lucro bruto:\t%s\n", p.Money.String(q.Profit))
	if q.Units > 0 {
		fmt.Fprintf(tw, "Preço por unidade:\t%s\n", p.Money.String(q.UnitPrice))
		fmt.Fprintf(tw, "Lucro por unidade:\t%s\n", p.Money.String(q.UnitProfit))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if parts := q.Breakdown(); len(parts) > 0 {
		fmt.Fprintln(p.W, "\nComposição do preço:")
		tw = tabwriter.NewWriter(p.W, 0, 8, 2, ' ', 0)
		for _, c := range parts {
			fmt.Fprintf(tw, "  %s\t%s\t%s%%\n", c.Label, p.Money.String(c.Value), c.Share.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if saved != "" {
		_, err := fmt.Fprintf(p.W, "\nCálculo salvo em %s (linha %d).\n", saved, row)
		return err
	}
	return nil
}
