package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaleInputNormalizeAndValidate(t *testing.T) {
	in := SaleInput{Customer: "  Ana ", Product: "Pão", Price: decimal.RequireFromString("5.005"), Seller: "Jeff\t"}
	n := in.Normalize()
	if n.Customer != "Ana" || n.Seller != "Jeff" {
		t.Fatalf("fields not trimmed: %+v", n)
	}
	if !n.Price.Equal(decimal.RequireFromString("5.01")) {
		t.Fatalf("price not rounded to cents: %s", n.Price)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}

func TestSaleInputValidateRejects(t *testing.T) {
	base := SaleInput{Customer: "Ana", Product: "Pão", Price: decimal.NewFromInt(5), Seller: "Jeff"}
	cases := map[string]SaleInput{
		"customer": {Product: base.Product, Price: base.Price, Seller: base.Seller},
		"product":  {Customer: base.Customer, Price: base.Price, Seller: base.Seller},
		"seller":   {Customer: base.Customer, Product: base.Product, Price: base.Price},
		"price":    {Customer: base.Customer, Product: base.Product, Price: decimal.NewFromInt(-1), Seller: base.Seller},
	}
	for field, in := range cases {
		err := in.Normalize().Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", field, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: expected ValidationError for field, got %v", field, err)
		}
	}
}

func TestSaleUpdateApply(t *testing.T) {
	price := decimal.RequireFromString("6.50")
	seller := "Maria"
	u := SaleUpdate{Price: &price, Seller: &seller}
	if u.IsEmpty() {
		t.Fatalf("update should not be empty")
	}
	got := u.Apply(SaleInput{Customer: "Ana", Product: "Pão", Price: decimal.NewFromInt(5), PaymentType: PaymentCash, Seller: "Jeff"})
	if !got.Price.Equal(price) || got.Seller != "Maria" || got.Customer != "Ana" || got.PaymentType != PaymentCash {
		t.Fatalf("unexpected apply result: %+v", got)
	}
	if !(SaleUpdate{}).IsEmpty() {
		t.Fatalf("zero update should be empty")
	}
}

func TestOrderTotal(t *testing.T) {
	o := Order{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")}
	if !o.Total().Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("Total = %s", o.Total())
	}
}
