package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// SessionPayload captures the data available when minting a session token.
type SessionPayload struct {
	UserID          uuid.UUID
	Email           string
	Name            string
	Role            enums.UserRole
	IsPlatformAdmin bool
	StoreID         *uuid.UUID
	StoreSlug       string
}

// SessionClaims is the typed payload of the local session cookie. It carries
// the role/tenant facts the delegated identity provider knows nothing about.
type SessionClaims struct {
	UserID          uuid.UUID      `json:"user_id"`
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Role            enums.UserRole `json:"role"`
	IsPlatformAdmin bool           `json:"is_platform_admin"`
	StoreID         *uuid.UUID     `json:"store_id,omitempty"`
	StoreSlug       string         `json:"store_slug,omitempty"`
	jwt.RegisteredClaims
}
