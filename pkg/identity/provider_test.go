package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) IdentitySessionKey(token string) string {
	return "sf:identity:sess:" + token
}

func testProvider(store *fakeStore, now time.Time) *Provider {
	return &Provider{
		store:       store,
		keyer:       fakeKeyer{},
		ttl:         720 * time.Hour,
		rotateAfter: 24 * time.Hour,
		now:         func() time.Time { return now },
	}
}

func TestSignInAndResolve(t *testing.T) {
	store := newFakeStore()
	p := testProvider(store, time.Now())
	userID := uuid.New()

	token, err := p.SignIn(context.Background(), userID, "Ama@Acme.Test")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	ident, rotated, err := p.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rotated != "" {
		t.Fatal("fresh session should not rotate")
	}
	if ident.UserID != userID {
		t.Fatalf("user id mismatch: %s", ident.UserID)
	}
	if ident.Email != "ama@acme.test" {
		t.Fatalf("expected normalized email, got %q", ident.Email)
	}
}

func TestResolveUnknownTokenIsNoSession(t *testing.T) {
	p := testProvider(newFakeStore(), time.Now())

	if _, _, err := p.Resolve(context.Background(), "ghost-token"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, _, err := p.Resolve(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for blank token, got %v", err)
	}
}

func TestResolveRotatesAgedSessions(t *testing.T) {
	store := newFakeStore()
	start := time.Now()
	p := testProvider(store, start)
	userID := uuid.New()

	token, err := p.SignIn(context.Background(), userID, "ama@acme.test")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	p.now = func() time.Time { return start.Add(25 * time.Hour) }

	ident, rotated, err := p.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rotated == "" || rotated == token {
		t.Fatalf("expected a fresh token, got %q", rotated)
	}
	if ident.UserID != userID {
		t.Fatalf("identity lost through rotation: %+v", ident)
	}

	// Old token is dead, new token works.
	if _, _, err := p.Resolve(context.Background(), token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected old token revoked, got %v", err)
	}
	if _, _, err := p.Resolve(context.Background(), rotated); err != nil {
		t.Fatalf("rotated token should resolve: %v", err)
	}
}

func TestResolveSurfacesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	p := testProvider(store, time.Now())

	if _, _, err := p.Resolve(context.Background(), "any"); errors.Is(err, ErrNoSession) || err == nil {
		t.Fatalf("store failures must not be mistaken for missing sessions, got %v", err)
	}
}

func TestSignOut(t *testing.T) {
	store := newFakeStore()
	p := testProvider(store, time.Now())

	token, err := p.SignIn(context.Background(), uuid.New(), "ama@acme.test")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := p.SignOut(context.Background(), token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, _, err := p.Resolve(context.Background(), token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected session revoked, got %v", err)
	}
	if err := p.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("blank sign out should be a no-op, got %v", err)
	}
}
