/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pricing computes the ideal sale price of a product from its costs, the desired margin,
// card fees and taxes, all expressed as shares of the final price.
package pricing

import (
	"fmt"

	"gestaovendas/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultProduct names a calculation whose product was left blank.
const DefaultProduct = "Não informado"

var hundred = decimal.NewFromInt(100)

// Input holds the values typed into the calculator. Percentages are of the sale price.
type Input struct {
	Product   string          `json:"product"`
	Cost      decimal.Decimal `json:"cost"`      // purchase or production cost
	Operating decimal.Decimal `json:"operating"` // fixed and variable costs per item
	TaxPct    decimal.Decimal `json:"tax_pct"`
	FeePct    decimal.Decimal `json:"fee_pct"` // card machine fee
	MarginPct decimal.Decimal `json:"margin_pct"`
	Units     int             `json:"units,omitempty"` // split the result over this many units; 0 disables the split
}

// Quote is the result of Calculate. Amounts are rounded to cents.
type Quote struct {
	Input
	TotalCost  decimal.Decimal `json:"total_cost"`
	Price      decimal.Decimal `json:"price"`
	Tax        decimal.Decimal `json:"tax"`
	Fee        decimal.Decimal `json:"fee"`
	Profit     decimal.Decimal `json:"profit"`
	UnitPrice  decimal.Decimal `json:"unit_price"` // zero without Units
	UnitProfit decimal.Decimal `json:"unit_profit"`
}

// Component is one line of the price breakdown.
type Component struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Share decimal.Decimal `json:"share"` // percent of the price, two decimals
}

// Calculate returns price = (cost + operating) / (1 - (margin + fee + tax)/100).
// The percentages must add up to less than 100.
func Calculate(in Input) (Quote, error) {
	if in.Product == "" {
		in.Product = DefaultProduct
	}
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"cost", in.Cost}, {"operating", in.Operating},
		{"tax_pct", in.TaxPct}, {"fee_pct", in.FeePct}, {"margin_pct", in.MarginPct},
	} {
		if f.v.IsNegative() {
			return Quote{}, &domain.ValidationError{Field: f.name, Reason: "must not be negative"}
		}
	}
	if in.Units < 0 {
		return Quote{}, &domain.ValidationError{Field: "units", Reason: "must not be negative"}
	}
	pct := in.MarginPct.Add(in.FeePct).Add(in.TaxPct)
	if pct.GreaterThanOrEqual(hundred) {
		return Quote{}, &domain.ValidationError{
			Field:  "percentages",
			Reason: fmt.Sprintf("margin, fee and tax add up to %s%%; the sum must be below 100%%", pct.StringFixed(2)),
		}
	}

	cost := in.Cost.Add(in.Operating)
	price := cost.Div(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
	tax := price.Mul(in.TaxPct).Div(hundred)
	fee := price.Mul(in.FeePct).Div(hundred)
	profit := price.Sub(cost).Sub(tax).Sub(fee)

	q := Quote{
		Input:     in,
		TotalCost: cost.Round(2),
		Price:     price.Round(2),
		Tax:       tax.Round(2),
		Fee:       fee.Round(2),
		Profit:    profit.Round(2),
	}
	if in.Units > 0 {
		n := decimal.NewFromInt(int64(in.Units))
		q.UnitPrice = price.Div(n).Round(2)
		q.UnitProfit = profit.Div(n).Round(2)
	}
	return q, nil
}

// Breakdown splits the price into cost, taxes, fee and profit. It is empty for a zero price.
func (q Quote) Breakdown() []Component {
	if !q.Price.IsPositive() {
		return nil
	}
	parts := []Component{
		{Label: "Custo Total (Produto + Op.)", Value: q.TotalCost},
		{Label: "Impostos", Value: q.Tax},
		{Label: "Taxa de Transação", Value: q.Fee},
		{Label: "Lucro Bruto", Value: q.Profit},
	}
	for i := range parts {
		parts[i].Share = parts[i].Value.Mul(hundred).Div(q.Price).Round(2)
	}
	return parts
}
