package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	couponsvc "github.com/selormtech/storefront-backend/internal/coupons"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type couponRequest struct {
	Code      string     `json:"code" validate:"required"`
	Type      string     `json:"type" validate:"required,oneof=percent fixed"`
	Value     string     `json:"value" validate:"required"`
	MaxUses   *int       `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateCoupon adds a discount code to the caller's store.
func CreateCoupon(svc couponsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponType, err := enums.ParseCouponType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type"))
			return
		}
		value, err := decimal.NewFromString(payload.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "value must be a decimal string"))
			return
		}

		coupon, err := svc.Create(r.Context(), storeID, couponsvc.CreateCouponInput{
			Code:      payload.Code,
			Type:      couponType,
			Value:     value,
			MaxUses:   payload.MaxUses,
			ExpiresAt: payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// DeleteCoupon removes a discount code.
func DeleteCoupon(svc couponsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponID"), "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListCoupons returns the store's discount codes.
func ListCoupons(svc couponsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupons, err := svc.List(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}
