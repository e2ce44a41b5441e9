package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/selormtech/storefront-backend/api/responses"
	pkgauth "github.com/selormtech/storefront-backend/pkg/auth"
	"github.com/selormtech/storefront-backend/pkg/config"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/identity"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type pathClass int

const (
	classPublic pathClass = iota
	classPublicAuth
	classProtected
)

// IdentityResolver resolves the delegated provider's opaque cookie. The
// second return value carries a rotated replacement token when the provider
// refreshed the session.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, string, error)
}

// AccessGate runs on every request. It resolves the delegated identity
// cookie and the local claims cookie, attaches a Principal only when both
// agree on the account, and turns away unauthenticated requests to admin
// surfaces. Internal failures on protected paths deny access rather than
// defaulting to allowed.
func AccessGate(cfg *config.Config, resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			class := classifyPath(r.URL.Path)

			ident, err := resolveIdentityCookie(w, r, cfg, resolver)
			if err != nil {
				if class == classProtected {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve identity session"))
					return
				}
				// Public surfaces stay reachable when the provider is down;
				// the request simply proceeds unauthenticated.
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "path", r.URL.Path), "gate.identity.unavailable")
				}
				ident = nil
			}

			claims := resolveSessionCookie(r, cfg)

			principal, ok := combine(ident, claims)
			if ok {
				ctx = WithPrincipal(ctx, principal)
				if logg != nil {
					fields := map[string]any{
						"user_id":    principal.UserID.String(),
						"actor_role": string(principal.Role),
					}
					if principal.StoreID != nil {
						fields["store_id"] = principal.StoreID.String()
					}
					ctx = logg.WithFields(ctx, fields)
				}
			}

			if class == classProtected && !ok {
				if isAPIPath(r.URL.Path) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
					return
				}
				responses.WriteLoginRedirect(w, r, r.URL.Path)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentityCookie asks the provider for the account behind the opaque
// cookie, forwarding any rotated token back to the client. Missing, expired,
// or unknown sessions return (nil, nil); only infrastructure failures
// surface as errors.
func resolveIdentityCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config, resolver IdentityResolver) (*identity.Identity, error) {
	cookie, err := r.Cookie(pkgauth.IdentityCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	ident, rotated, err := resolver.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}
	if rotated != "" {
		pkgauth.SetIdentityCookie(w, cfg.Cookie, rotated, cfg.Identity.SessionTTL)
	}
	return ident, nil
}

// resolveSessionCookie verifies the local claims token. Any verification
// failure (expired, bad signature, malformed) yields nil; the gate treats
// the request as unauthenticated rather than distinguishing the cases.
func resolveSessionCookie(r *http.Request, cfg *config.Config) *pkgauth.SessionClaims {
	cookie, err := r.Cookie(pkgauth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := pkgauth.ParseSessionToken(cfg.JWT, cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

// combine produces a Principal only when both sources name the same account.
func combine(ident *identity.Identity, claims *pkgauth.SessionClaims) (Principal, bool) {
	if ident == nil || claims == nil {
		return Principal{}, false
	}
	if ident.UserID != claims.UserID {
		return Principal{}, false
	}
	return Principal{
		UserID:          claims.UserID,
		Email:           claims.Email,
		Name:            claims.Name,
		Role:            claims.Role,
		IsPlatformAdmin: claims.IsPlatformAdmin,
		StoreID:         claims.StoreID,
		StoreSlug:       claims.StoreSlug,
	}, true
}

func classifyPath(path string) pathClass {
	switch {
	case path == "/login" || path == "/signup":
		return classPublicAuth
	case strings.HasPrefix(path, "/api/auth/") || path == "/api/auth":
		return classPublicAuth
	case strings.HasPrefix(path, "/platform-admin"):
		return classProtected
	}

	// /{storeSlug}/admin/... is the tenant dashboard, except its own login
	// page which has to stay reachable.
	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(segments) >= 2 && segments[0] != "" && segments[1] == "admin" {
		if len(segments) == 3 && segments[2] == "login" {
			return classPublicAuth
		}
		return classProtected
	}

	return classPublic
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.Contains(path, "/api/") || strings.HasSuffix(path, "/api")
}
