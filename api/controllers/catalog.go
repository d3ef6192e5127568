package controllers

import (
	"context"
	"net/http"

	"github.com/sduquej/mercadito-backend/api/responses"
	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
)

type productLister interface {
	ListActive(ctx context.Context) ([]models.Product, error)
}

type bundleLister interface {
	ListActive(ctx context.Context) ([]models.Bundle, error)
}

// ProductsList returns the active catalog.
func ProductsList(repo productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product repository unavailable"))
			return
		}

		items, err := repo.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// BundlesList returns the active bundles with their member products.
func BundlesList(repo bundleLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundle repository unavailable"))
			return
		}

		items, err := repo.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
