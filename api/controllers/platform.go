package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	payoutsvc "github.com/selormtech/storefront-backend/internal/payouts"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	updatesvc "github.com/selormtech/storefront-backend/internal/updates"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// PlatformListStores returns every store on the platform.
func PlatformListStores(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stores)
	}
}

type verificationRequest struct {
	Status string `json:"status" validate:"required,oneof=pending verified rejected"`
}

// PlatformSetVerification moves a store through platform review.
func PlatformSetVerification(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeID"), "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload verificationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseVerificationStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid verification status"))
			return
		}

		store, err := svc.SetVerification(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type storeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// PlatformSetStoreStatus suspends or reactivates a store.
func PlatformSetStoreStatus(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeID"), "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload storeStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.SetStatus(r.Context(), id, enums.StoreStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type tierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=hustler pro wholesaler"`
}

// PlatformChangeTier moves a store between subscription tiers.
func PlatformChangeTier(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeID"), "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload tierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tier, err := enums.ParseStoreTier(payload.Tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store tier"))
			return
		}

		store, err := svc.ChangeTier(r.Context(), id, tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// PlatformListPendingPayouts lists every payout awaiting review.
func PlatformListPendingPayouts(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payouts, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payouts)
	}
}

type payoutDecisionRequest struct {
	Note string `json:"note"`
}

// PlatformApprovePayout authorizes a pending payout.
func PlatformApprovePayout(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "payoutID"), "payoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload payoutDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.Approve(r.Context(), id, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}

type payoutRejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// PlatformRejectPayout rejects a pending payout and refunds the wallet.
func PlatformRejectPayout(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "payoutID"), "payoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload payoutRejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.Reject(r.Context(), id, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}

type broadcastRequest struct {
	Title   string `json:"title" validate:"required"`
	Version string `json:"version"`
	Content string `json:"content" validate:"required"`
}

// PlatformBroadcastUpdate publishes an announcement to every store admin.
func PlatformBroadcastUpdate(svc updatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload broadcastRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := svc.Broadcast(r.Context(), updatesvc.BroadcastInput{
			Title:   payload.Title,
			Version: payload.Version,
			Content: payload.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, update)
	}
}

// ListUpdates returns recent platform announcements. Store admins read the
// same feed platform admins publish to.
func ListUpdates(svc updatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates, err := svc.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updates)
	}
}
