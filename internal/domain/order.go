/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "github.com/shopspring/decimal"

// Order is one entry of the order ledger. The ledger itself is stored as plain text;
// Order is the parsed view used for totals and exports.
type Order struct {
	Customer  string
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	Delivery  string // free text, e.g. "24/12"
}

// Total is quantity times unit price.
func (o Order) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
