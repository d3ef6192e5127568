package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/api/responses"
	"github.com/sduquej/mercadito-backend/api/validators"
	"github.com/sduquej/mercadito-backend/internal/rewards"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

type rewardConfigPayload struct {
	Enabled               bool                    `json:"enabled"`
	MaxDiscountPercentage decimal.Decimal         `json:"max_discount_percentage" validate:"required"`
	AllowedPages          []string                `json:"allowed_pages"`
	RewardMap             map[string]types.Reward `json:"reward_map" validate:"required"`
}

// AdminGetRewardConfig returns the current dice-discount configuration.
func AdminGetRewardConfig(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		cfg, err := svc.Load(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg.Raw())
	}
}

// AdminPutRewardConfig validates and replaces the dice-discount configuration.
func AdminPutRewardConfig(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		var payload rewardConfigPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cfg, err := svc.Update(ctx, rewards.RawConfig{
			Enabled:               payload.Enabled,
			MaxDiscountPercentage: payload.MaxDiscountPercentage,
			AllowedPages:          payload.AllowedPages,
			RewardMap:             payload.RewardMap,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg.Raw())
	}
}
