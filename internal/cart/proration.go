package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// ProratedLine is one bundle member with its discounted unit price.
type ProratedLine struct {
	ProductID         uuid.UUID
	Quantity          int
	UnitPrice         decimal.Decimal
	ProratedUnitPrice decimal.Decimal
}

// Prorate distributes the bundle discount across member products. Each
// member's unit price is scaled by discountedTotal/originalTotal and rounded
// half up to cents, so per-line totals add back up to the discounted bundle
// price. A zero original total leaves prices untouched.
func Prorate(bundle *models.Bundle) []ProratedLine {
	originalTotal := decimal.Zero
	for _, member := range bundle.Products {
		originalTotal = originalTotal.Add(member.UnitPrice.Mul(decimal.NewFromInt(int64(member.Quantity))))
	}

	factor := decimal.NewFromInt(1)
	if originalTotal.IsPositive() {
		discountedTotal := originalTotal.Mul(hundred.Sub(bundle.DiscountPercentage)).Div(hundred)
		factor = discountedTotal.Div(originalTotal)
	}

	lines := make([]ProratedLine, 0, len(bundle.Products))
	for _, member := range bundle.Products {
		lines = append(lines, ProratedLine{
			ProductID:         member.ProductID,
			Quantity:          member.Quantity,
			UnitPrice:         member.UnitPrice,
			ProratedUnitPrice: member.UnitPrice.Mul(factor).Round(2),
		})
	}
	return lines
}
