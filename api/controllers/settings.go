package controllers

import (
	"net/http"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type settingsRequest struct {
	Name       *string `json:"name,omitempty"`
	OwnerPhone *string `json:"owner_phone,omitempty"`
}

// GetSettings returns the caller's store record.
func GetSettings(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// UpdateSettings applies a partial update to the caller's store.
func UpdateSettings(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.UpdateSettings(r.Context(), storeID, storesvc.SettingsInput{
			Name:       payload.Name,
			OwnerPhone: payload.OwnerPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}
