package rewards

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/enums"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

// Dice totals produced by two six-sided dice.
const (
	MinDiceTotal = 2
	MaxDiceTotal = 12
)

// Config is the fully validated dice-discount configuration. An instance is
// only ever built through Parse, so holders can assume every total in
// [MinDiceTotal, MaxDiceTotal] is mapped and every reward is well formed.
type Config struct {
	Enabled               bool
	MaxDiscountPercentage decimal.Decimal
	AllowedPages          []string
	RewardMap             map[int]types.Reward
}

// RewardFor returns the reward mapped to the given dice total.
func (c *Config) RewardFor(total int) (types.Reward, error) {
	reward, ok := c.RewardMap[total]
	if !ok {
		return types.Reward{}, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("no reward mapped for dice total %d", total))
	}
	return reward, nil
}

// Raw converts the validated configuration back to its wire shape. Admin
// reads return this form, so a read-modify-write round trip presents the
// same keys the update endpoint accepts.
func (c *Config) Raw() RawConfig {
	rewardMap := make(map[string]types.Reward, len(c.RewardMap))
	for total, reward := range c.RewardMap {
		rewardMap[strconv.Itoa(total)] = reward
	}
	return RawConfig{
		Enabled:               c.Enabled,
		MaxDiscountPercentage: c.MaxDiscountPercentage,
		AllowedPages:          c.AllowedPages,
		RewardMap:             rewardMap,
	}
}

// RawConfig mirrors the persisted jsonb shape before validation.
type RawConfig struct {
	Enabled               bool                    `json:"enabled"`
	MaxDiscountPercentage decimal.Decimal         `json:"max_discount_percentage"`
	AllowedPages          []string                `json:"allowed_pages"`
	RewardMap             map[string]types.Reward `json:"reward_map"`
}

// Parse validates the raw configuration and returns the usable form. Any
// defect is reported as a configuration error so callers fail closed rather
// than roll against a partial table.
func Parse(raw RawConfig) (*Config, error) {
	if raw.MaxDiscountPercentage.IsNegative() || raw.MaxDiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "max discount percentage must be between 0 and 100")
	}

	rewardMap := make(map[int]types.Reward, MaxDiceTotal-MinDiceTotal+1)
	for key, reward := range raw.RewardMap {
		total, err := strconv.Atoi(key)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward map key %q is not a dice total", key))
		}
		if total < MinDiceTotal || total > MaxDiceTotal {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward map key %d is outside the dice range", total))
		}
		if err := validateReward(total, reward, raw.MaxDiscountPercentage); err != nil {
			return nil, err
		}
		rewardMap[total] = reward
	}

	for total := MinDiceTotal; total <= MaxDiceTotal; total++ {
		if _, ok := rewardMap[total]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward map is missing dice total %d", total))
		}
	}

	return &Config{
		Enabled:               raw.Enabled,
		MaxDiscountPercentage: raw.MaxDiscountPercentage,
		AllowedPages:          raw.AllowedPages,
		RewardMap:             rewardMap,
	}, nil
}

func validateReward(total int, reward types.Reward, maxDiscount decimal.Decimal) error {
	if !reward.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward for total %d has unknown type %q", total, reward.Kind))
	}
	if reward.Label == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward for total %d is missing a label", total))
	}

	switch reward.Kind {
	case enums.RewardKindPercentageDiscount:
		if reward.Value == nil {
			return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("percentage reward for total %d is missing a value", total))
		}
		if !reward.Value.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("percentage reward for total %d must be positive", total))
		}
		if reward.Value.GreaterThan(maxDiscount) {
			return pkgerrors.New(pkgerrors.CodeConfiguration,
				fmt.Sprintf("percentage reward for total %d exceeds the %s%% cap", total, maxDiscount.String()))
		}
	case enums.RewardKindFreeShipping, enums.RewardKindFreeGift:
		if reward.Value != nil {
			return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("reward for total %d must not carry a value", total))
		}
	}
	return nil
}

// DecodeRawConfig assembles a RawConfig from the individual settings rows.
func DecodeRawConfig(enabled, maxDiscount, allowedPages, rewardMap json.RawMessage) (RawConfig, error) {
	var raw RawConfig
	if err := json.Unmarshal(enabled, &raw.Enabled); err != nil {
		return RawConfig{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "decode dice_discount_enabled")
	}
	if err := json.Unmarshal(maxDiscount, &raw.MaxDiscountPercentage); err != nil {
		return RawConfig{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "decode dice_max_discount_percentage")
	}
	if len(allowedPages) > 0 {
		if err := json.Unmarshal(allowedPages, &raw.AllowedPages); err != nil {
			return RawConfig{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "decode dice_allowed_pages")
		}
	}
	if err := json.Unmarshal(rewardMap, &raw.RewardMap); err != nil {
		return RawConfig{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "decode dice_reward_map")
	}
	return raw, nil
}
