package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/api/responses"
	couponsvc "github.com/selormtech/storefront-backend/internal/coupons"
	productsvc "github.com/selormtech/storefront-backend/internal/products"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	zonesvc "github.com/selormtech/storefront-backend/internal/zones"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type storefrontResponse struct {
	Store    *models.Store         `json:"store"`
	Products []models.Product      `json:"products"`
	Zones    []models.DeliveryZone `json:"zones"`
}

// GetStorefront returns the public view of a store: its profile, active
// catalog, and delivery zones. Suspended stores are not served.
func GetStorefront(storeSvc storesvc.Service, products productsvc.Service, zones zonesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeSvc.GetBySlug(r.Context(), chi.URLParam(r, "storeSlug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if store.Status == enums.StoreStatusSuspended {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
			return
		}

		catalog, err := products.List(r.Context(), store.ID, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deliveryZones, err := zones.List(r.Context(), store.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Public payloads never expose the wallet.
		store.WalletBalance = decimal.Zero
		responses.WriteSuccess(w, storefrontResponse{
			Store:    store,
			Products: catalog,
			Zones:    deliveryZones,
		})
	}
}

type couponCheckResponse struct {
	Code  string           `json:"code"`
	Type  enums.CouponType `json:"type"`
	Value decimal.Decimal  `json:"value"`
}

// CheckCoupon validates a cart's discount code without consuming a use.
func CheckCoupon(coupons couponsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeSvc.GetBySlug(r.Context(), chi.URLParam(r, "storeSlug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if store.Status == enums.StoreStatusSuspended {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
			return
		}

		coupon, err := coupons.Check(r.Context(), store.ID, r.URL.Query().Get("code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, couponCheckResponse{
			Code:  coupon.Code,
			Type:  coupon.Type,
			Value: coupon.Value,
		})
	}
}
