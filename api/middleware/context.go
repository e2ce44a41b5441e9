package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxStoreSlug contextKey = "store_slug"
)

// Principal is the fully-resolved caller: the delegated identity provider
// vouched for the account, and the local claims token supplied role and
// tenant facts. Handlers never see a partially-resolved state.
type Principal struct {
	UserID          uuid.UUID
	Email           string
	Name            string
	Role            enums.UserRole
	IsPlatformAdmin bool
	StoreID         *uuid.UUID
	StoreSlug       string
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok
}

// WithPrincipal injects the resolved principal into the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// StoreSlugFromContext returns the tenant slug of the current route, set by
// the tenant middleware.
func StoreSlugFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStoreSlug).(string); ok {
		return v
	}
	return ""
}

func withStoreSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, ctxStoreSlug, slug)
}
