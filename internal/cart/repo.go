package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

// Repository persists cart lines keyed on (user_id, product_id).
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the line for (user, product), replacing any previous line for
// that product including its pricing and bundle provenance.
func (r *Repository) Upsert(ctx context.Context, line *models.CartLine) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity",
				"unit_price",
				"unit_price_override",
				"bundle_id",
				"bundle_name",
				"bundle_discount_percentage",
				"updated_at",
			}),
		}).
		Create(line).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert cart line")
	}
	return nil
}

// ListByUser returns the user's cart lines, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

// Delete removes the line for (user, product) if present.
func (r *Repository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

// Clear removes every line belonging to the user.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
