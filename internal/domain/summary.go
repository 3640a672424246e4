/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "github.com/shopspring/decimal"

// SalesSummary aggregates the sales table for the dashboard.
type SalesSummary struct {
	Count         int
	Total         decimal.Decimal
	AverageTicket decimal.Decimal
	TopProducts   []Bucket // by revenue, descending
	ByPayment     []Bucket // by count, descending
	ByMonth       []Bucket // Key is "YYYY-MM", ascending
}

// Bucket is one group of a summary breakdown.
type Bucket struct {
	Key   string
	Count int
	Total decimal.Decimal
}
