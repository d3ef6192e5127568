package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingZone is a city-keyed rate bucket: base shipping cost plus the
// delivery-day estimate for that destination.
type ShippingZone struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CityID       string          `gorm:"column:city_id;not null;uniqueIndex:shipping_zones_city_key"`
	CityName     string          `gorm:"column:city_name;not null"`
	Cost         decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null"`
	DeliveryDays int             `gorm:"column:delivery_days;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
