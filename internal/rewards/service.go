package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sduquej/mercadito-backend/internal/settings"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

type settingsStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	UpsertMany(ctx context.Context, values map[string]json.RawMessage) error
}

// Service loads and administers the dice-discount configuration.
type Service interface {
	Load(ctx context.Context) (*Config, error)
	Update(ctx context.Context, raw RawConfig) (*Config, error)
}

type service struct {
	store settingsStore
}

// NewService builds a rewards configuration service.
func NewService(store settingsStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("settings store required")
	}
	return &service{store: store}, nil
}

// Load reads the persisted configuration and validates it. A missing or
// malformed configuration is a configuration error, never a silent default.
func (s *service) Load(ctx context.Context) (*Config, error) {
	enabled, err := s.fetch(ctx, settings.KeyDiceDiscountEnabled)
	if err != nil {
		return nil, err
	}
	maxDiscount, err := s.fetch(ctx, settings.KeyDiceMaxDiscountPercent)
	if err != nil {
		return nil, err
	}
	rewardMap, err := s.fetch(ctx, settings.KeyDiceRewardMap)
	if err != nil {
		return nil, err
	}
	allowedPages, err := s.fetchOptional(ctx, settings.KeyDiceAllowedPages)
	if err != nil {
		return nil, err
	}

	raw, err := DecodeRawConfig(enabled, maxDiscount, allowedPages, rewardMap)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Update validates the incoming configuration and persists every section in
// one transactional write. Nothing is written when validation fails; the
// failure is reported as a validation error since it concerns the admin's
// payload, not stored state.
func (s *service) Update(ctx context.Context, raw RawConfig) (*Config, error) {
	cfg, err := Parse(raw)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, typed.Message())
		}
		return nil, err
	}

	sections := map[string]any{
		settings.KeyDiceDiscountEnabled:    raw.Enabled,
		settings.KeyDiceMaxDiscountPercent: raw.MaxDiscountPercentage,
		settings.KeyDiceAllowedPages:       raw.AllowedPages,
		settings.KeyDiceRewardMap:          raw.RewardMap,
	}
	values := make(map[string]json.RawMessage, len(sections))
	for key, value := range sections {
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s", key))
		}
		values[key] = payload
	}
	if err := s.store.UpsertMany(ctx, values); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist dice discount settings")
	}
	return cfg, nil
}

func (s *service) fetch(ctx context.Context, key string) (json.RawMessage, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("setting %s is not configured", key))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load %s", key))
	}
	return value, nil
}

func (s *service) fetchOptional(ctx context.Context, key string) (json.RawMessage, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load %s", key))
	}
	return value, nil
}
