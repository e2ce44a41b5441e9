// Package identity wraps the delegated identity provider's session store.
// The provider owns its own opaque cookie; callers treat the token as a
// black box and must forward any rotated value back to the client.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/selormtech/storefront-backend/pkg/config"
	redisclient "github.com/selormtech/storefront-backend/pkg/redis"
)

const sessionTokenBytes = 32

// ErrNoSession signals a missing, expired, or unknown identity session.
var ErrNoSession = errors.New("no identity session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	IdentitySessionKey(token string) string
}

// Identity is the provider's view of an authenticated account. It knows
// nothing about roles or tenancy.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

type sessionRecord struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

// Provider issues, resolves, and rotates identity sessions.
type Provider struct {
	store       sessionStore
	keyer       sessionKeyer
	ttl         time.Duration
	rotateAfter time.Duration
	now         func() time.Time
}

// NewProvider constructs an identity provider client backed by Redis.
func NewProvider(client *redisclient.Client, cfg config.IdentityConfig) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("identity session ttl must be positive")
	}
	rotateAfter := cfg.RotateAfter
	if rotateAfter <= 0 || rotateAfter >= cfg.SessionTTL {
		rotateAfter = cfg.SessionTTL / 2
	}
	return &Provider{
		store:       client,
		keyer:       client,
		ttl:         cfg.SessionTTL,
		rotateAfter: rotateAfter,
		now:         time.Now,
	}, nil
}

// SignIn creates a fresh identity session and returns its opaque token.
func (p *Provider) SignIn(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil || strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("user id and email are required")
	}
	return p.writeSession(ctx, sessionRecord{
		UserID:   userID,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		IssuedAt: p.now(),
	})
}

// Resolve returns the identity behind the token. When the session has aged
// past the rotation window a replacement token is issued and returned as the
// second value; the old token stops working immediately.
func (p *Provider) Resolve(ctx context.Context, token string) (*Identity, string, error) {
	if strings.TrimSpace(token) == "" {
		return nil, "", ErrNoSession
	}

	key := p.keyer.IdentitySessionKey(token)
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, "", ErrNoSession
		}
		return nil, "", err
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		// Unreadable session payloads are treated as absent, not fatal.
		_ = p.store.Del(ctx, key)
		return nil, "", ErrNoSession
	}

	ident := &Identity{UserID: record.UserID, Email: record.Email}

	if p.now().Sub(record.IssuedAt) < p.rotateAfter {
		return ident, "", nil
	}

	record.IssuedAt = p.now()
	rotated, err := p.writeSession(ctx, record)
	if err != nil {
		return nil, "", err
	}
	if err := p.store.Del(ctx, key); err != nil {
		return nil, "", err
	}
	return ident, rotated, nil
}

// SignOut invalidates the session behind the token. Unknown tokens are a
// no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return p.store.Del(ctx, p.keyer.IdentitySessionKey(token))
}

func (p *Provider) writeSession(ctx context.Context, record sessionRecord) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding identity session: %w", err)
	}
	if err := p.store.Set(ctx, p.keyer.IdentitySessionKey(token), payload, p.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func newSessionToken() (string, error) {
	bytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating identity token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
