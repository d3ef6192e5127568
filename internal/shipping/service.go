package shipping

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

type zoneLoader interface {
	GetByCity(ctx context.Context, cityID string) (*models.ShippingZone, error)
}

// Quote is the derived shipping answer for a destination and subtotal.
type Quote struct {
	Cost           decimal.Decimal `json:"cost"`
	EstimatedDays  int             `json:"estimated_days"`
	IsFreeShipping bool            `json:"is_free_shipping"`
}

// Service computes shipping quotes from the zone table plus the store-wide
// free shipping threshold.
type Service interface {
	Quote(ctx context.Context, cityID string, subtotal decimal.Decimal) (*Quote, error)
}

type service struct {
	zones     zoneLoader
	threshold decimal.Decimal
}

// NewService builds a shipping service. threshold is the subtotal at or above
// which shipping cost is waived store-wide.
func NewService(zones zoneLoader, threshold decimal.Decimal) (Service, error) {
	if zones == nil {
		return nil, fmt.Errorf("zone loader required")
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("free shipping threshold must not be negative")
	}
	return &service{zones: zones, threshold: threshold}, nil
}

// Quote looks up the zone cost for the city and layers the threshold
// promotion on top: at or above the threshold the effective cost is forced
// to zero whatever the zone table says. The quote is free exactly when the
// effective cost is zero.
func (s *service) Quote(ctx context.Context, cityID string, subtotal decimal.Decimal) (*Quote, error) {
	if cityID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city id is required")
	}
	if subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}

	zone, err := s.zones.GetByCity(ctx, cityID)
	if err != nil {
		return nil, err
	}

	cost := zone.Cost
	if subtotal.GreaterThanOrEqual(s.threshold) {
		cost = decimal.Zero
	}
	return &Quote{
		Cost:           cost,
		EstimatedDays:  zone.DeliveryDays,
		IsFreeShipping: cost.IsZero(),
	}, nil
}
