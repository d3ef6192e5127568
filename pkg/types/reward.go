package types

import (
	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/enums"
)

// Reward is the prize attached to a dice total. Value carries the magnitude for
// kinds that need one (percentage discounts); free shipping and free gifts leave
// it unset. Persisted as jsonb on roll attempts and inside the reward map setting.
type Reward struct {
	Kind  enums.RewardKind `json:"type"`
	Value *decimal.Decimal `json:"value,omitempty"`
	Label string           `json:"label"`
}

// Equal reports whether two rewards resolve to the same prize.
func (r Reward) Equal(other Reward) bool {
	if r.Kind != other.Kind || r.Label != other.Label {
		return false
	}
	if (r.Value == nil) != (other.Value == nil) {
		return false
	}
	if r.Value != nil && !r.Value.Equal(*other.Value) {
		return false
	}
	return true
}
