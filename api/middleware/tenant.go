package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/selormtech/storefront-backend/api/responses"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// TenantContext binds the {storeSlug} route parameter to the principal's
// tenant. The principal must belong to the store named in the URL; a
// platform admin may act on any store. A mismatch reads as forbidden, not
// as a hint that the other store exists.
func TenantContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "storeSlug")))
			if slug == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store slug required"))
				return
			}

			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			if !p.IsPlatformAdmin {
				if p.StoreID == nil || !strings.EqualFold(p.StoreSlug, slug) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store access denied"))
					return
				}
			}

			ctx := withStoreSlug(r.Context(), slug)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, slug)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStore rejects principals with no tenant of their own, such as
// storeless platform admins hitting store-member-only endpoints.
func RequireStore(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || p.StoreID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
