package enums

import "fmt"

// RewardKind represents the canonical reward_kind enum in Postgres.
type RewardKind string

const (
	RewardKindFreeShipping       RewardKind = "free_shipping"
	RewardKindPercentageDiscount RewardKind = "percentage_discount"
	RewardKindFreeGift           RewardKind = "free_gift"
)

var validRewardKinds = []RewardKind{
	RewardKindFreeShipping,
	RewardKindPercentageDiscount,
	RewardKindFreeGift,
}

// String implements fmt.Stringer.
func (k RewardKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known RewardKind.
func (k RewardKind) IsValid() bool {
	for _, candidate := range validRewardKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseRewardKind converts raw input into a RewardKind.
func ParseRewardKind(value string) (RewardKind, error) {
	for _, candidate := range validRewardKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reward kind %q", value)
}
