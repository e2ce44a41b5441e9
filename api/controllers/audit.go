package controllers

import (
	"net/http"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	auditsvc "github.com/selormtech/storefront-backend/internal/audit"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// ListStoreAudit returns the store's recent activity trail.
func ListStoreAudit(recorder auditsvc.Recorder, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := recorder.ListByStore(r.Context(), storeID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// PlatformListAudit returns the platform-wide activity feed.
func PlatformListAudit(recorder auditsvc.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := recorder.ListRecent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
