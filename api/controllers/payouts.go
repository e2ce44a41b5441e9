package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	payoutsvc "github.com/selormtech/storefront-backend/internal/payouts"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type payoutRequestBody struct {
	Amount      string `json:"amount" validate:"required"`
	Method      string `json:"method" validate:"required,oneof=mobile_money bank_transfer"`
	Destination string `json:"destination" validate:"required"`
}

// RequestPayout opens a pending withdrawal against the store wallet. The
// amount leaves the balance immediately.
func RequestPayout(svc payoutsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload payoutRequestBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string"))
			return
		}
		method, err := enums.ParsePayoutMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payout method"))
			return
		}

		payout, err := svc.Request(r.Context(), storeID, payoutsvc.RequestInput{
			Amount:      amount,
			Method:      method,
			Destination: payload.Destination,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payout)
	}
}

// ListPayouts returns the store's payout history.
func ListPayouts(svc payoutsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payouts, err := svc.ListForStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payouts)
	}
}

// GetPayout returns one payout of the caller's store.
func GetPayout(svc payoutsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "payoutID"), "payoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.GetForStore(r.Context(), id, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}
