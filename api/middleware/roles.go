package middleware

import (
	"net/http"

	"github.com/selormtech/storefront-backend/api/responses"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// RequirePlatformAdmin guards cross-tenant surfaces. It assumes the gate
// already attached a principal.
func RequirePlatformAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !p.IsPlatformAdmin {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "platform admin required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
