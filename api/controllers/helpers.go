package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/api/middleware"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// tenantStoreID resolves the store the request operates on. Store members
// carry their store id in the claims; platform admins browsing a tenant
// surface are resolved through the route slug instead.
func tenantStoreID(r *http.Request, storeSvc storesvc.Service) (uuid.UUID, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if p.StoreID != nil {
		return *p.StoreID, nil
	}
	if !p.IsPlatformAdmin {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no store associated with account")
	}

	slug := middleware.StoreSlugFromContext(r.Context())
	if slug == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug missing from route")
	}
	store, err := storeSvc.GetBySlug(r.Context(), slug)
	if err != nil {
		return uuid.Nil, err
	}
	return store.ID, nil
}
