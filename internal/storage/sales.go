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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gestaovendas/internal/domain"

	"github.com/shopspring/decimal"
)

const saleColumns = `id, customer, product, price_cents, payment_type, seller, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert validates in, assigns an id and creation time and persists the sale.
// Invalid input yields a *domain.ValidationError and leaves the table unchanged.
func (s *Store) Insert(ctx context.Context, in domain.SaleInput) (domain.Sale, error) {
	db, err := s.conn()
	if err != nil {
		return domain.Sale{}, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Sale{}, err
	}
	sale, err := s.insertOne(ctx, db, in)
	if err != nil {
		return domain.Sale{}, err
	}
	s.log.Debug("sale inserted", slog.Int64("id", sale.ID))
	return sale, nil
}

// InsertMany inserts all inputs in one transaction. Any invalid input aborts the whole batch
// with a ValidationError naming its index; nothing is written in that case.
func (s *Store) InsertMany(ctx context.Context, ins []domain.SaleInput) ([]domain.Sale, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	norm := make([]domain.SaleInput, len(ins))
	for i, in := range ins {
		norm[i] = in.Normalize()
		if err := norm[i].Validate(); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return nil, &domain.ValidationError{Field: fmt.Sprintf("sales[%d].%s", i, ve.Field), Reason: ve.Reason}
			}
			return nil, err
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	out := make([]domain.Sale, 0, len(norm))
	for _, in := range norm {
		sale, err := s.insertOne(ctx, tx, in)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		out = append(out, sale)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}
	s.log.Info("sales inserted", slog.Int("count", len(out)))
	return out, nil
}

func (s *Store) insertOne(ctx context.Context, x execer, in domain.SaleInput) (domain.Sale, error) {
	created := s.stamp()
	res, err := x.ExecContext(ctx, `INSERT INTO sales (customer, product, price_cents, payment_type, seller, created_at, customer_key, product_key, seller_key)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Customer, in.Product, toCents(in.Price), in.PaymentType, in.Seller, created.Format(time.RFC3339Nano),
		foldKey(in.Customer), foldKey(in.Product), foldKey(in.Seller))
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale id: %w", err)
	}
	return domain.Sale{
		ID:          id,
		Customer:    in.Customer,
		Product:     in.Product,
		Price:       fromCents(toCents(in.Price)),
		PaymentType: in.PaymentType,
		Seller:      in.Seller,
		CreatedAt:   created,
	}, nil
}

// Get returns the sale with id or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (domain.Sale, error) {
	db, err := s.conn()
	if err != nil {
		return domain.Sale{}, err
	}
	return getSale(ctx, db, id)
}

func getSale(ctx context.Context, q queryer, id int64) (domain.Sale, error) {
	sale, err := scanSale(q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, fmt.Errorf("sale %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("get sale %d: %w", id, err)
	}
	return sale, nil
}

// Update applies the non-nil fields of u to sale id. The id and creation time never change.
// A missing id yields domain.ErrNotFound; invalid changes yield a ValidationError. Either way nothing is written.
func (s *Store) Update(ctx context.Context, id int64, u domain.SaleUpdate) (domain.Sale, error) {
	db, err := s.conn()
	if err != nil {
		return domain.Sale{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := getSale(ctx, tx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if u.IsEmpty() {
		return cur, nil
	}
	in := u.Apply(cur.Input()).Normalize()
	if err := in.Validate(); err != nil {
		return domain.Sale{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sales SET customer=?, product=?, price_cents=?, payment_type=?, seller=?,
		customer_key=?, product_key=?, seller_key=? WHERE id=?`,
		in.Customer, in.Product, toCents(in.Price), in.PaymentType, in.Seller,
		foldKey(in.Customer), foldKey(in.Product), foldKey(in.Seller), id); err != nil {
		return domain.Sale{}, fmt.Errorf("update sale %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("commit update %d: %w", id, err)
	}
	s.log.Debug("sale updated", slog.Int64("id", id))
	return domain.Sale{
		ID:          id,
		Customer:    in.Customer,
		Product:     in.Product,
		Price:       fromCents(toCents(in.Price)),
		PaymentType: in.PaymentType,
		Seller:      in.Seller,
		CreatedAt:   cur.CreatedAt,
	}, nil
}

// Delete removes sale id permanently, or returns domain.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM sales WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("sale %d: %w", id, domain.ErrNotFound)
	}
	s.log.Debug("sale deleted", slog.Int64("id", id))
	return nil
}

// ListAll returns every sale ordered by id.
func (s *Store) ListAll(ctx context.Context) ([]domain.Sale, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return querySales(ctx, db, `SELECT `+saleColumns+` FROM sales ORDER BY id`)
}

// Search returns sales whose customer, product or seller contains query, ignoring case, ordered by id.
// The query is trimmed; an empty query lists everything. Wildcard characters match literally.
func (s *Store) Search(ctx context.Context, query string) ([]domain.Sale, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.ListAll(ctx)
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	key := foldKey(q)
	return querySales(ctx, db, `SELECT `+saleColumns+` FROM sales
		WHERE instr(customer_key, ?) > 0 OR instr(product_key, ?) > 0 OR instr(seller_key, ?) > 0
		ORDER BY id`, key, key, key)
}

func querySales(ctx context.Context, db *sql.DB, q string, args ...any) ([]domain.Sale, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()
	out := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(r scanner) (domain.Sale, error) {
	var (
		sale    domain.Sale
		cents   int64
		created string
	)
	if err := r.Scan(&sale.ID, &sale.Customer, &sale.Product, &cents, &sale.PaymentType, &sale.Seller, &created); err != nil {
		return domain.Sale{}, err
	}
	sale.Price = fromCents(cents)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %d created_at %q: %w", sale.ID, created, err)
	}
	sale.CreatedAt = t.UTC()
	return sale, nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
