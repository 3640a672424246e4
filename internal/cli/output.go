/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"

	"github.com/shopspring/decimal"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or missing record
	ExitCommandError = 2 // Usage error
	ExitUnavailable  = 3 // No writable data directory or unreadable database
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps err with an exit code chosen from its kind.
func WrapExitError(message string, err error) *ExitError {
	code := ExitFailure
	if errors.Is(err, domain.ErrStorageUnavailable) {
		code = ExitUnavailable
	}
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope of --output json.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Printer renders command results as text tables or JSON.
type Printer struct {
	Format string // "text" | "json"
	W      io.Writer
	Money  money.Format
	Loc    *time.Location
}

func (p *Printer) json() bool { return p.Format == "json" }

func (p *Printer) loc() *time.Location {
	if p.Loc == nil {
		return time.Local
	}
	return p.Loc
}

// JSON writes data in the JSON envelope.
func (p *Printer) JSON(data any) error {
	enc := json.NewEncoder(p.W)
	enc.SetIndent("", "  ")
	return enc.Encode(Response{Status: "ok", Data: data})
}

// Message prints a confirmation line, or {"message": ...} in JSON mode.
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json() {
		return p.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.W, msg)
	return err
}

// Sales prints a sales table followed by the grand total.
func (p *Printer) Sales(sales []domain.Sale) error {
	if p.json() {
		return p.JSON(sales)
	}
	if len(sales) == 0 {
		_, err := fmt.Fprintln(p.W, "Nenhuma venda encontrada.")
		return err
	}
	tw := tabwriter.NewWriter(p.W, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCliente\tProduto\tPreço\tPagamento\tVendedor\tData/Hora")
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Price)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Customer, s.Product, p.Money.String(s.Price), orDash(s.PaymentType), s.Seller,
			s.CreatedAt.In(p.loc()).Format("02/01/2006 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.W, "\nTotal: %s em %d venda(s)\n", p.Money.String(total), len(sales))
	return err
}

// Sale prints one sale as a key/value block.
func (p *Printer) Sale(s domain.Sale) error {
	if p.json() {
		return p.JSON(s)
	}
	tw := tabwriter.NewWriter(p.W, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", s.ID)
	fmt.Fprintf(tw, "Cliente:\t%s\n", s.Customer)
	fmt.Fprintf(tw, "Produto:\t%s\n", s.Product)
	fmt.Fprintf(tw, "Preço:\t%s\n", p.Money.String(s.Price))
	fmt.Fprintf(tw, "Pagamento:\t%s\n", orDash(s.PaymentType))
	fmt.Fprintf(tw, "Vendedor:\t%s\n", s.Seller)
	fmt.Fprintf(tw, "Data/Hora:\t%s\n", s.CreatedAt.In(p.loc()).Format("02/01/2006 15:04:05"))
	return tw.Flush()
}

// Summary prints the dashboard figures.
func (p *Printer) Summary(sum domain.SalesSummary) error {
	if p.json() {
		return p.JSON(sum)
	}
	fmt.Fprintf(p.W, "Vendas: %d\n", sum.Count)
	fmt.Fprintf(p.W, "Faturamento: %s\n", p.Money.String(sum.Total))
	fmt.Fprintf(p.W, "Ticket médio: %s\n", p.Money.String(sum.AverageTicket))
	sections := []struct {
		title   string
		buckets []domain.Bucket
	}{
		{"Produtos mais vendidos", sum.TopProducts},
		{"Formas de pagamento", sum.ByPayment},
		{"Faturamento por mês", sum.ByMonth},
	}
	for _, sec := range sections {
		if len(sec.buckets) == 0 {
			continue
		}
		fmt.Fprintf(p.W, "\n%s:\n", sec.title)
		tw := tabwriter.NewWriter(p.W, 0, 8, 2, ' ', 0)
		for _, b := range sec.buckets {
			key := b.Key
			if key == "" {
				key = "Não informado"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", key, p.Money.String(b.Total), b.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Orders prints the parsed order ledger with its total.
func (p *Printer) Orders(orders []domain.Order, skipped []int) error {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total())
	}
	if p.json() {
		return p.JSON(map[string]any{"orders": orders, "skipped_lines": skipped, "total": total})
	}
	tw := tabwriter.NewWriter(p.W, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Cliente\tProduto\tQtd\tUnitário\tTotal\tEntrega")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", o.Customer, o.Product, o.Quantity,
			p.Money.String(o.UnitPrice), p.Money.String(o.Total()), orDash(o.Delivery))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(p.W, "\nTOTAL GERAL: %s\n", p.Money.String(total))
	if len(skipped) > 0 {
		fmt.Fprintf(p.W, "Linhas ignoradas: %v\n", skipped)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
