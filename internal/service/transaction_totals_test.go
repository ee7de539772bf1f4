package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeSaleTotalsPartialPayment(t *testing.T) {
	// Two tires at 50,000 each, 10,000 discount, 60,000 paid in cash and the
	// rest flagged as receivable.
	items := []SaleItemRequest{
		{Name: "Tire 185/65R15", UnitPrice: d(50000), Quantity: 2},
	}
	payments := []PaymentRequest{
		{Method: model.PayCash, Amount: d(60000)},
		{Method: model.PayReceivable, Amount: d(30000)},
	}

	totals, err := ComputeSaleTotals(items, d(10000), payments)
	if err != nil {
		t.Fatalf("ComputeSaleTotals: %v", err)
	}
	if !totals.Subtotal.Equal(d(100000)) {
		t.Errorf("subtotal = %s, want 100000", totals.Subtotal)
	}
	if !totals.Total.Equal(d(90000)) {
		t.Errorf("total = %s, want 90000", totals.Total)
	}
	if !totals.AmountPaid.Equal(d(60000)) {
		t.Errorf("amount paid = %s, want 60000 (receivable entries excluded)", totals.AmountPaid)
	}
	if !totals.Remaining.Equal(d(30000)) {
		t.Errorf("remaining = %s, want 30000", totals.Remaining)
	}
}

func TestComputeSaleTotalsFullyPaid(t *testing.T) {
	items := []SaleItemRequest{
		{Name: "Tire 205/55R16", UnitPrice: d(75000), Quantity: 1},
		{Name: "Balancing", UnitPrice: d(15000), Quantity: 1},
	}
	payments := []PaymentRequest{
		{Method: model.PayQris, Amount: d(90000)},
	}

	totals, err := ComputeSaleTotals(items, decimal.Zero, payments)
	if err != nil {
		t.Fatalf("ComputeSaleTotals: %v", err)
	}
	if !totals.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", totals.Remaining)
	}
}

func TestComputeSaleTotalsRejectsBadInput(t *testing.T) {
	item := func(price int64) []SaleItemRequest {
		return []SaleItemRequest{{Name: "Tire", UnitPrice: d(price), Quantity: 1}}
	}

	cases := []struct {
		name     string
		items    []SaleItemRequest
		discount decimal.Decimal
		payments []PaymentRequest
	}{
		{"negative unit price", item(-1), decimal.Zero, nil},
		{"negative discount", item(50000), d(-1), nil},
		{"discount exceeds subtotal", item(50000), d(50001), nil},
		{"negative payment", item(50000), decimal.Zero, []PaymentRequest{{Method: model.PayCash, Amount: d(-1)}}},
		{"overpayment", item(50000), decimal.Zero, []PaymentRequest{{Method: model.PayCash, Amount: d(60000)}}},
	}
	for _, tc := range cases {
		_, err := ComputeSaleTotals(tc.items, tc.discount, tc.payments)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected validation error, got %T", tc.name, err)
		}
	}
}

func TestComputeSaleTotalsNoPayments(t *testing.T) {
	// A sale recorded entirely on credit: nothing paid up front.
	items := []SaleItemRequest{{Name: "Tire", UnitPrice: d(40000), Quantity: 4}}

	totals, err := ComputeSaleTotals(items, decimal.Zero, nil)
	if err != nil {
		t.Fatalf("ComputeSaleTotals: %v", err)
	}
	if !totals.AmountPaid.IsZero() {
		t.Errorf("amount paid = %s, want 0", totals.AmountPaid)
	}
	if !totals.Remaining.Equal(d(160000)) {
		t.Errorf("remaining = %s, want 160000", totals.Remaining)
	}
}
