/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"strings"
)

// Field is a sale attribute a column can be mapped to.
type Field int

const (
	FieldIgnore Field = iota
	FieldCustomer
	FieldProduct
	FieldQuantity
	FieldUnitPrice
	FieldSeller
	FieldPayment
)

var fieldNames = map[Field]string{
	FieldIgnore:    "ignore",
	FieldCustomer:  "customer",
	FieldProduct:   "product",
	FieldQuantity:  "quantity",
	FieldUnitPrice: "unit_price",
	FieldSeller:    "seller",
	FieldPayment:   "payment",
}

func (f Field) String() string { return fieldNames[f] }

// RequiredFields must be mapped for an import to proceed.
var RequiredFields = []Field{FieldCustomer, FieldProduct, FieldUnitPrice}

// Mapping assigns a column index to each mapped field.
type Mapping map[Field]int

// Header keyword tiers, most specific first. A header maps to the first tier with a matching term.
var guessRules = []struct {
	field Field
	terms []string
}{
	{FieldCustomer, []string{"cliente", "comprador", "customer", "client", "buyer"}},
	{FieldProduct, []string{"produto", "item", "descrição", "descricao", "product", "description"}},
	{FieldQuantity, []string{"qtd", "quant", "qty"}},
	{FieldUnitPrice, []string{"valor unit", "preço unit", "preco unit", "valor unid", "preço unid", "preco unid", "unit price", "price per"}},
	{FieldSeller, []string{"vendedor", "seller", "salesperson", "vendor"}},
	{FieldUnitPrice, []string{"valor", "preço", "preco", "price", "amount"}},
	{FieldPayment, []string{"pagamento", "forma", "tipo", "payment", "method", "type"}},
	{FieldCustomer, []string{"nome", "name"}},
}

// GuessField maps a column header to a sale field, or FieldIgnore.
func GuessField(header string) Field {
	col := strings.ToLower(strings.TrimSpace(header))
	if col == "" {
		return FieldIgnore
	}
	for _, r := range guessRules {
		for _, term := range r.terms {
			if strings.Contains(col, term) {
				return r.field
			}
		}
	}
	return FieldIgnore
}

// AutoMap guesses a mapping for headers; the first column wins when several map to one field.
// missing lists the required fields left unmapped.
func AutoMap(headers []string) (m Mapping, missing []Field) {
	m = Mapping{}
	for i, h := range headers {
		f := GuessField(h)
		if f == FieldIgnore {
			continue
		}
		if _, taken := m[f]; !taken {
			m[f] = i
		}
	}
	for _, f := range RequiredFields {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	return m, missing
}
