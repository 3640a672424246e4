/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"sort"

	"gestaovendas/internal/domain"

	"github.com/shopspring/decimal"
)

// Summary aggregates all sales for the dashboard: totals, average ticket, the topN products by
// revenue (all when topN <= 0), the payment breakdown and revenue per month.
func (s *Store) Summary(ctx context.Context, topN int) (domain.SalesSummary, error) {
	db, err := s.conn()
	if err != nil {
		return domain.SalesSummary{}, err
	}
	sum := domain.SalesSummary{Total: decimal.Zero, AverageTicket: decimal.Zero}

	var totalCents int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(price_cents), 0) FROM sales`).Scan(&sum.Count, &totalCents); err != nil {
		return domain.SalesSummary{}, fmt.Errorf("summary totals: %w", err)
	}
	sum.Total = fromCents(totalCents)
	if sum.Count > 0 {
		sum.AverageTicket = sum.Total.DivRound(decimal.NewFromInt(int64(sum.Count)), 2)
	}

	if sum.TopProducts, err = s.buckets(ctx, `SELECT product, COUNT(*), SUM(price_cents) FROM sales
		GROUP BY product_key ORDER BY SUM(price_cents) DESC, product ASC`); err != nil {
		return domain.SalesSummary{}, fmt.Errorf("summary products: %w", err)
	}
	if topN > 0 && len(sum.TopProducts) > topN {
		sum.TopProducts = sum.TopProducts[:topN]
	}
	if sum.ByPayment, err = s.buckets(ctx, `SELECT payment_type, COUNT(*), SUM(price_cents) FROM sales
		GROUP BY payment_type ORDER BY COUNT(*) DESC, payment_type ASC`); err != nil {
		return domain.SalesSummary{}, fmt.Errorf("summary payments: %w", err)
	}
	if sum.ByMonth, err = s.buckets(ctx, `SELECT substr(created_at, 1, 7), COUNT(*), SUM(price_cents) FROM sales
		GROUP BY substr(created_at, 1, 7)`); err != nil {
		return domain.SalesSummary{}, fmt.Errorf("summary months: %w", err)
	}
	sort.Slice(sum.ByMonth, func(i, j int) bool { return sum.ByMonth[i].Key < sum.ByMonth[j].Key })
	return sum, nil
}

func (s *Store) buckets(ctx context.Context, q string) ([]domain.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Bucket
	for rows.Next() {
		var (
			b     domain.Bucket
			cents int64
		)
		if err := rows.Scan(&b.Key, &b.Count, &cents); err != nil {
			return nil, err
		}
		b.Total = fromCents(cents)
		out = append(out, b)
	}
	return out, rows.Err()
}
