/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package money parses user-typed amounts and formats decimals for display.
// Amounts are shopspring decimals everywhere; floats never carry money.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gestaovendas/internal/domain"
)

// Format describes how amounts are displayed.
type Format struct {
	Symbol  string // e.g. "R$"; empty for a bare number
	Decimal string
	Group   string
}

// BRL is the default display format: R$ 1.234,50.
var BRL = Format{Symbol: "R$", Decimal: ",", Group: "."}

// WithSymbol returns f with the currency symbol replaced.
func (f Format) WithSymbol(sym string) Format {
	f.Symbol = strings.TrimSpace(sym)
	return f
}

// String renders d rounded to cents.
func (f Format) String(d decimal.Decimal) string {
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	s := f.Plain(d.Abs())
	if f.Symbol == "" {
		return sign + s
	}
	return sign + f.Symbol + " " + s
}

// Plain renders d rounded to cents with separators but without the symbol.
func (f Format) Plain(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")
	dec := f.Decimal
	if dec == "" {
		dec = "."
	}
	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.Group)
		}
		b.WriteRune(c)
	}
	b.WriteString(dec)
	b.WriteString(frac)
	return b.String()
}

// ExcelNumberFormat returns a spreadsheet number format code showing the symbol.
// Excel format codes always use ',' for grouping and '.' for decimals; the viewer localizes them.
func (f Format) ExcelNumberFormat() string {
	if f.Symbol == "" {
		return "#,##0.00"
	}
	return fmt.Sprintf("\"%s\" #,##0.00", f.Symbol)
}

// Parse reads an amount as typed by a user: "5", "5,50", "5.50", "R$ 1.234,50", "1,234.50".
// When both separators appear the right-most one is the decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
		s = strings.TrimPrefix(s, "R$")
	}
	if s == "" {
		return decimal.Zero, &domain.ValidationError{Field: "price", Reason: "is required"}
	}
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case lastDot >= 0 && sym && len(s)-lastDot-1 == 3:
		s = strings.Replace(s, ".", "", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: "price", Reason: fmt.Sprintf("%q is not an amount", raw)}
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
