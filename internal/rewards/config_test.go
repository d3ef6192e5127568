package rewards

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/pkg/enums"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

func validRawConfig() RawConfig {
	rewardMap := make(map[string]types.Reward)
	for total := MinDiceTotal; total <= MaxDiceTotal; total++ {
		if total == 7 {
			rewardMap[strconv.Itoa(total)] = types.Reward{
				Kind:  enums.RewardKindFreeShipping,
				Label: "Envío gratis",
			}
			continue
		}
		value := decimal.NewFromInt(int64(total))
		rewardMap[strconv.Itoa(total)] = types.Reward{
			Kind:  enums.RewardKindPercentageDiscount,
			Value: &value,
			Label: fmt.Sprintf("%d%% de descuento", total),
		}
	}
	return RawConfig{
		Enabled:               true,
		MaxDiscountPercentage: decimal.NewFromInt(30),
		AllowedPages:          []string{"/", "/productos"},
		RewardMap:             rewardMap,
	}
}

func TestParseAcceptsFullRange(t *testing.T) {
	cfg, err := Parse(validRawConfig())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for total := MinDiceTotal; total <= MaxDiceTotal; total++ {
		reward, err := cfg.RewardFor(total)
		if err != nil {
			t.Fatalf("RewardFor(%d) returned error: %v", total, err)
		}
		if reward.Label == "" {
			t.Fatalf("RewardFor(%d) returned empty label", total)
		}
	}
}

func TestParseRejectsMissingTotal(t *testing.T) {
	raw := validRawConfig()
	delete(raw.RewardMap, "9")
	assertConfigurationError(t, raw)
}

func TestParseRejectsOutOfRangeTotal(t *testing.T) {
	raw := validRawConfig()
	raw.RewardMap["13"] = types.Reward{Kind: enums.RewardKindFreeGift, Label: "Regalo"}
	assertConfigurationError(t, raw)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	raw := validRawConfig()
	raw.RewardMap["4"] = types.Reward{Kind: enums.RewardKind("cashback"), Label: "Cashback"}
	assertConfigurationError(t, raw)
}

func TestParseRejectsPercentageAboveCap(t *testing.T) {
	raw := validRawConfig()
	over := decimal.NewFromInt(45)
	raw.RewardMap["5"] = types.Reward{
		Kind:  enums.RewardKindPercentageDiscount,
		Value: &over,
		Label: "45% de descuento",
	}
	assertConfigurationError(t, raw)
}

func TestParseRejectsPercentageWithoutValue(t *testing.T) {
	raw := validRawConfig()
	raw.RewardMap["6"] = types.Reward{
		Kind:  enums.RewardKindPercentageDiscount,
		Label: "Descuento",
	}
	assertConfigurationError(t, raw)
}

func TestParseRejectsValueOnFreeShipping(t *testing.T) {
	raw := validRawConfig()
	value := decimal.NewFromInt(10)
	raw.RewardMap["7"] = types.Reward{
		Kind:  enums.RewardKindFreeShipping,
		Value: &value,
		Label: "Envío gratis",
	}
	assertConfigurationError(t, raw)
}

func TestParseRejectsMissingLabel(t *testing.T) {
	raw := validRawConfig()
	raw.RewardMap["8"] = types.Reward{Kind: enums.RewardKindFreeGift}
	assertConfigurationError(t, raw)
}

func TestParseRejectsCapOutOfBounds(t *testing.T) {
	raw := validRawConfig()
	raw.MaxDiscountPercentage = decimal.NewFromInt(101)
	assertConfigurationError(t, raw)
}

func TestRewardForUnmappedTotal(t *testing.T) {
	cfg, err := Parse(validRawConfig())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	delete(cfg.RewardMap, 11)
	if _, err := cfg.RewardFor(11); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func assertConfigurationError(t *testing.T, raw RawConfig) {
	t.Helper()
	_, err := Parse(raw)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected %s, got %s", pkgerrors.CodeConfiguration, typed.Code())
	}
}
