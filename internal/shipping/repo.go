package shipping

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

// Repository reads the city-keyed shipping rate table.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shipping zone repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByCity loads the rate bucket for a city.
func (r *Repository) GetByCity(ctx context.Context, cityID string) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no shipping zone for city")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping zone")
	}
	return &zone, nil
}

// List returns every configured zone ordered by city name.
func (r *Repository) List(ctx context.Context) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.db.WithContext(ctx).Order("city_name ASC").Find(&zones).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping zones")
	}
	return zones, nil
}
