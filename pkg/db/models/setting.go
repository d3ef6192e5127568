package models

import (
	"encoding/json"
	"time"
)

// Setting is a jsonb key/value store configuration entry. The dice-discount
// feature flag and reward map live here and are mutated only through the admin
// surface.
type Setting struct {
	Key       string          `gorm:"column:key;primaryKey"`
	Value     json.RawMessage `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
