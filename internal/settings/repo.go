package settings

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
)

// Store configuration keys owned by the dice-discount feature.
const (
	KeyDiceDiscountEnabled    = "dice_discount_enabled"
	KeyDiceRewardMap          = "dice_reward_map"
	KeyDiceMaxDiscountPercent = "dice_max_discount_percentage"
	KeyDiceAllowedPages       = "dice_allowed_pages"
)

// Repository exposes persistence operations for jsonb settings.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the raw value stored at key. Returns gorm.ErrRecordNotFound when
// the key is absent.
func (r *Repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return setting.Value, nil
}

// UpsertMany writes every key/value pair inside one transaction, so related
// settings are never left half-replaced.
func (r *Repository) UpsertMany(ctx context.Context, values map[string]json.RawMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsert(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, key string, value json.RawMessage) error {
	setting := models.Setting{Key: key, Value: value}
	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}
