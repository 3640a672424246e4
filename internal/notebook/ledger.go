/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notebook

import (
	"fmt"
	"strconv"
	"strings"

	"gestaovendas/internal/domain"
	"gestaovendas/internal/money"

	"github.com/shopspring/decimal"
)

// Ledger lines look like
//
//	customer; product; quantity; unit price; delivery
//
// The delivery field is optional. Blank lines and lines starting with '#' are ignored.

// Ledger is the parsed view of the order notebook.
type Ledger struct {
	Orders  []domain.Order
	Skipped []int // 1-based line numbers that could not be parsed
}

// Total sums every order total.
func (l Ledger) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, o := range l.Orders {
		sum = sum.Add(o.Total())
	}
	return sum
}

// FormatOrder renders o as one ledger line without a trailing newline.
func FormatOrder(o domain.Order) string {
	fields := []string{
		strings.TrimSpace(o.Customer),
		strings.TrimSpace(o.Product),
		strconv.Itoa(o.Quantity),
		money.Format{Decimal: ",", Group: "."}.Plain(o.UnitPrice),
	}
	if d := strings.TrimSpace(o.Delivery); d != "" {
		fields = append(fields, d)
	}
	return strings.Join(fields, "; ")
}

// ParseLedger parses the order notebook text. Malformed lines are reported in Skipped.
func ParseLedger(text string) Ledger {
	var l Ledger
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		o, err := ParseOrder(line)
		if err != nil {
			l.Skipped = append(l.Skipped, i+1)
			continue
		}
		l.Orders = append(l.Orders, o)
	}
	return l
}

// ParseOrder parses a single ledger line.
func ParseOrder(line string) (domain.Order, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 4 || len(parts) > 5 {
		return domain.Order{}, &domain.ValidationError{Field: "order", Reason: fmt.Sprintf("expected 4 or 5 fields, got %d", len(parts))}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	o := domain.Order{Customer: parts[0], Product: parts[1]}
	if o.Customer == "" || o.Product == "" {
		return domain.Order{}, &domain.ValidationError{Field: "order", Reason: "customer and product are required"}
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil || qty <= 0 {
		return domain.Order{}, &domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("%q is not a positive integer", parts[2])}
	}
	o.Quantity = qty
	price, err := money.Parse(parts[3])
	if err != nil {
		return domain.Order{}, err
	}
	if price.IsNegative() {
		return domain.Order{}, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	o.UnitPrice = price
	if len(parts) == 5 {
		o.Delivery = parts[4]
	}
	return o, nil
}
