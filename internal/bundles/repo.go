package bundles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

// Repository exposes read access to promotional bundles.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bundle repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActive loads an active bundle with its product lines.
func (r *Repository) GetActive(ctx context.Context, id uuid.UUID) (*models.Bundle, error) {
	var bundle models.Bundle
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("id = ? AND is_active = ?", id, true).
		First(&bundle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle")
	}
	return &bundle, nil
}

// ListActive returns all active bundles with their product lines.
func (r *Repository) ListActive(ctx context.Context) ([]models.Bundle, error) {
	var items []models.Bundle
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bundles")
	}
	return items, nil
}
