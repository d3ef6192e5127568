package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product entry in a user's cart. A standalone line carries
// only the catalog unit price; a bundle-derived line additionally carries the
// prorated unit price override and the bundle provenance fields. One line per
// (user_id, product_id): adds replace rather than duplicate.
type CartLine struct {
	ID                       uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                   uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_lines_user_product_key,priority:1"`
	ProductID                uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_lines_user_product_key,priority:2"`
	Quantity                 int              `gorm:"column:quantity;not null"`
	UnitPrice                decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	UnitPriceOverride        *decimal.Decimal `gorm:"column:unit_price_override;type:numeric(12,2)"`
	BundleID                 *uuid.UUID       `gorm:"column:bundle_id;type:uuid"`
	BundleName               *string          `gorm:"column:bundle_name"`
	BundleDiscountPercentage *decimal.Decimal `gorm:"column:bundle_discount_percentage;type:numeric(5,2)"`
	CreatedAt                time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveUnitPrice resolves the price used for totals: an override, when
// present, always wins over the catalog price.
func (l CartLine) EffectiveUnitPrice() decimal.Decimal {
	if l.UnitPriceOverride != nil {
		return *l.UnitPriceOverride
	}
	return l.UnitPrice
}

// LineTotal is the effective unit price times the quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}
