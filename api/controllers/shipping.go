package controllers

import (
	"net/http"
	"strings"

	"github.com/sduquej/mercadito-backend/api/responses"
	"github.com/sduquej/mercadito-backend/internal/cart"
	"github.com/sduquej/mercadito-backend/internal/shipping"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
)

// ShippingQuote prices delivery to a city against the user's current cart
// subtotal.
func ShippingQuote(shippingSvc shipping.Service, cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if shippingSvc == nil || cartSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cityID := strings.TrimSpace(r.URL.Query().Get("city_id"))
		if cityID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "city_id is required"))
			return
		}

		subtotal, err := cartSvc.Subtotal(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := shippingSvc.Quote(ctx, cityID, subtotal)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
