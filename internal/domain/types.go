/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// This file defines the core records of the sales ledger.
// Sales are owned by the storage engine; everything else holds transient copies.

// Well-known payment types offered by the shell. Any other text is accepted and stored as given.
const (
	PaymentCash     = "dinheiro"
	PaymentCard     = "cartao"
	PaymentPix      = "pix"
	PaymentTransfer = "transferencia"
)

// PaymentTypes lists the well-known payment types in display order.
var PaymentTypes = []string{PaymentCash, PaymentCard, PaymentPix, PaymentTransfer}

// MaxPrice is the largest price a sale may carry. Prices are stored as integer cents.
var MaxPrice = decimal.New(1, 12)

// Sale is a single recorded transaction.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Sale struct {
	ID          int64           `json:"id"`
	Customer    string          `json:"customer"`
	Product     string          `json:"product"`
	Price       decimal.Decimal `json:"price"`
	PaymentType string          `json:"payment_type"`
	Seller      string          `json:"seller"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaleInput carries the user-provided fields of a new sale.
type SaleInput struct {
	Customer    string
	Product     string
	Price       decimal.Decimal
	PaymentType string
	Seller      string
}

// SaleUpdate lists field changes for an existing sale. Nil fields are left unchanged.
type SaleUpdate struct {
	Customer    *string
	Product     *string
	Price       *decimal.Decimal
	PaymentType *string
	Seller      *string
}

// IsEmpty reports whether the update changes nothing.
func (u SaleUpdate) IsEmpty() bool {
	return u.Customer == nil && u.Product == nil && u.Price == nil && u.PaymentType == nil && u.Seller == nil
}

// Normalize trims text fields and rounds the price to cents.
func (in SaleInput) Normalize() SaleInput {
	return SaleInput{
		Customer:    strings.TrimSpace(in.Customer),
		Product:     strings.TrimSpace(in.Product),
		Price:       in.Price.Round(2),
		PaymentType: strings.TrimSpace(in.PaymentType),
		Seller:      strings.TrimSpace(in.Seller),
	}
}

// Validate checks required fields and the price sign. Call it on a normalized input.
func (in SaleInput) Validate() error {
	if in.Customer == "" {
		return &ValidationError{Field: "customer", Reason: "is required"}
	}
	if in.Product == "" {
		return &ValidationError{Field: "product", Reason: "is required"}
	}
	if in.Seller == "" {
		return &ValidationError{Field: "seller", Reason: "is required"}
	}
	if in.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if in.Price.GreaterThan(MaxPrice) {
		return &ValidationError{Field: "price", Reason: "is too large"}
	}
	return nil
}

// Input returns the editable fields of s.
func (s Sale) Input() SaleInput {
	return SaleInput{
		Customer:    s.Customer,
		Product:     s.Product,
		Price:       s.Price,
		PaymentType: s.PaymentType,
		Seller:      s.Seller,
	}
}

// Apply returns a copy of in with the non-nil fields of u applied.
func (u SaleUpdate) Apply(in SaleInput) SaleInput {
	if u.Customer != nil {
		in.Customer = *u.Customer
	}
	if u.Product != nil {
		in.Product = *u.Product
	}
	if u.Price != nil {
		in.Price = *u.Price
	}
	if u.PaymentType != nil {
		in.PaymentType = *u.PaymentType
	}
	if u.Seller != nil {
		in.Seller = *u.Seller
	}
	return in
}
