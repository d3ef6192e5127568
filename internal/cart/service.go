package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

type lineStore interface {
	Upsert(ctx context.Context, line *models.CartLine) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type productLoader interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type bundleLoader interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.Bundle, error)
}

// Service owns per-user cart state and the pricing rules over it.
type Service interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartLine, error)
	AddBundle(ctx context.Context, userID, bundleID uuid.UUID) ([]models.CartLine, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Subtotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	lines    lineStore
	products productLoader
	bundles  bundleLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(lines lineStore, products productLoader, bundles bundleLoader) (Service, error) {
	if lines == nil {
		return nil, fmt.Errorf("cart line store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if bundles == nil {
		return nil, fmt.Errorf("bundle loader required")
	}
	return &service{lines: lines, products: products, bundles: bundles}, nil
}

// AddItem puts a standalone product line in the cart. Adding a product that
// is already present, bundled or not, replaces the line with a plain catalog
// priced one (last write wins per product).
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetActive(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := &models.CartLine{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if err := s.lines.Upsert(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// AddBundle prorates the bundle discount across its members and upserts one
// line per member, replacing any existing line for the same product. Lines
// written before a mid-bundle failure stand; the error reports every member
// that could not be written.
func (s *service) AddBundle(ctx context.Context, userID, bundleID uuid.UUID) ([]models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	bundle, err := s.bundles.GetActive(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if len(bundle.Products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle has no products")
	}

	var written []models.CartLine
	var failures error
	for _, prorated := range Prorate(bundle) {
		override := prorated.ProratedUnitPrice
		discount := bundle.DiscountPercentage
		name := bundle.Name
		line := models.CartLine{
			UserID:                   userID,
			ProductID:                prorated.ProductID,
			Quantity:                 prorated.Quantity,
			UnitPrice:                prorated.UnitPrice,
			UnitPriceOverride:        &override,
			BundleID:                 &bundle.ID,
			BundleName:               &name,
			BundleDiscountPercentage: &discount,
		}
		if err := s.lines.Upsert(ctx, &line); err != nil {
			failures = multierr.Append(failures, fmt.Errorf("product %s: %w", prorated.ProductID, err))
			continue
		}
		written = append(written, line)
	}
	if failures != nil {
		return written, pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "add bundle to cart")
	}
	return written, nil
}

// RemoveItem drops the product's line from the cart.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.lines.Delete(ctx, userID, productID)
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.lines.Clear(ctx, userID)
}

// List returns the user's cart lines.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.lines.ListByUser(ctx, userID)
}

// Subtotal loads the cart and sums effective line totals.
func (s *service) Subtotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	lines, err := s.List(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return ComputeCartTotal(lines), nil
}

// ComputeCartTotal sums each line's effective unit price times quantity. The
// override, when present, always wins over the catalog price.
func ComputeCartTotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}
