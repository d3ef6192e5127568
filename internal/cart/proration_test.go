package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
)

func TestProrateIsPennyExact(t *testing.T) {
	bundle := &models.Bundle{
		ID:                 uuid.New(),
		Name:               "Combo familiar",
		DiscountPercentage: decimal.NewFromInt(20),
		Products: []models.BundleProduct{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(2500)},
		},
	}

	lines := Prorate(bundle)
	if len(lines) != 2 {
		t.Fatalf("expected 2 prorated lines, got %d", len(lines))
	}

	wantPrices := []string{"800", "2000"}
	discountedTotal := decimal.Zero
	for i, line := range lines {
		if line.ProratedUnitPrice.String() != wantPrices[i] {
			t.Fatalf("line %d: expected prorated price %s, got %s", i, wantPrices[i], line.ProratedUnitPrice)
		}
		discountedTotal = discountedTotal.Add(line.ProratedUnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if want := decimal.NewFromInt(3600); !discountedTotal.Equal(want) {
		t.Fatalf("expected prorated lines to sum to %s, got %s", want, discountedTotal)
	}
}

func TestProrateRoundsHalfUp(t *testing.T) {
	bundle := &models.Bundle{
		DiscountPercentage: decimal.NewFromInt(50),
		Products: []models.BundleProduct{
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("1.01")},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("0.99")},
		},
	}

	lines := Prorate(bundle)
	if got := lines[0].ProratedUnitPrice.String(); got != "0.51" {
		t.Fatalf("expected 0.51, got %s", got)
	}
	if got := lines[1].ProratedUnitPrice.String(); got != "0.5" {
		t.Fatalf("expected 0.5, got %s", got)
	}
}

func TestProrateZeroTotalLeavesPricesUntouched(t *testing.T) {
	bundle := &models.Bundle{
		DiscountPercentage: decimal.NewFromInt(50),
		Products: []models.BundleProduct{
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.Zero},
		},
	}

	lines := Prorate(bundle)
	if !lines[0].ProratedUnitPrice.IsZero() {
		t.Fatalf("expected zero prorated price, got %s", lines[0].ProratedUnitPrice)
	}
}
