package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Sentinel verification failures. Callers that branch on the failure mode
// (the access gate, tests) match against these with errors.Is.
var (
	ErrTokenExpired          = errors.New("session token expired")
	ErrTokenInvalidSignature = errors.New("session token signature invalid")
	ErrTokenMalformed        = errors.New("session token malformed")
)

// MintSessionToken issues a signed session token for the provided payload.
// The ttl argument lets magic-link flows extend past the standard lifetime.
func MintSessionToken(cfg config.JWTConfig, now time.Time, payload SessionPayload, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("jwt issuer is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("session ttl must be positive")
	}
	if !payload.Role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", payload.Role)
	}
	if payload.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	claims := SessionClaims{
		UserID:          payload.UserID,
		Email:           payload.Email,
		Name:            payload.Name,
		Role:            payload.Role,
		IsPlatformAdmin: payload.IsPlatformAdmin,
		StoreID:         payload.StoreID,
		StoreSlug:       payload.StoreSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the token string and returns typed claims.
// Tokens signed with a different or absent key never downgrade to unsigned
// trust; the method allow-list pins HS256.
func ParseSessionToken(cfg config.JWTConfig, tokenString string) (*SessionClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return err
}
