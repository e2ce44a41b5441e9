package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/internal/stores"
	pkgauth "github.com/selormtech/storefront-backend/pkg/auth"
	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/security"
)

// invalidCredentialsMessage is deliberately identical for unknown emails and
// wrong passwords.
const invalidCredentialsMessage = "invalid email or password"

// identityProvider is the slice of pkg/identity the auth flows need.
type identityProvider interface {
	SignIn(ctx context.Context, userID uuid.UUID, email string) (string, error)
	SignOut(ctx context.Context, token string) error
}

// Session is a freshly minted pair of credentials plus where to send the
// browser next.
type Session struct {
	User          *models.User
	SessionToken  string
	SessionTTL    time.Duration
	IdentityToken string
	RedirectTo    string
}

// SignupInput registers a new store plus its owner account.
type SignupInput struct {
	Email     string
	Password  string
	Name      string
	StoreName string
	StoreSlug string
}

// Service implements the authentication flows: credential login, signup
// with store provisioning, logout, and the platform-admin magic link.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Signup(ctx context.Context, input SignupInput) (*Session, error)
	Logout(ctx context.Context, identityToken string) error
	MagicLogin(ctx context.Context, token string) (*Session, error)
}

type service struct {
	db       *gorm.DB
	cfg      *config.Config
	identity identityProvider
	recorder audit.Recorder
	now      func() time.Time
}

// NewService wires the auth service. The recorder may be nil in tests.
func NewService(db *gorm.DB, cfg *config.Config, provider identityProvider, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	return &service{db: db, cfg: cfg, identity: provider, recorder: recorder, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	session, err := s.openSession(ctx, &user, s.cfg.JWT.SessionTTL())
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error; err == nil {
		user.LastLoginAt = &now
	}

	s.audit(ctx, enums.ActionUserLogin, user.ID, fmt.Sprintf("%s logged in", user.Email))
	return session, nil
}

func (s *service) Signup(ctx context.Context, input SignupInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	slug := strings.ToLower(strings.TrimSpace(input.StoreSlug))
	name := strings.TrimSpace(input.Name)
	storeName := strings.TrimSpace(input.StoreName)

	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	case len(input.Password) < 8:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	case storeName == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	case !stores.ValidSlug(slug):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be 3-60 lowercase letters, digits, and hyphens")
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		if err := tx.Model(&models.Store{}).Where("slug = ?", slug).Count(&taken).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if taken > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "store slug already taken")
		}

		store := &models.Store{Name: storeName, Slug: slug}
		if err := tx.Create(store).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}

		user = &models.User{
			Email:        email,
			Name:         name,
			Role:         enums.UserRoleOwner,
			StoreID:      &store.ID,
			PasswordHash: hash,
		}
		if err := tx.Create(user).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, user, s.cfg.JWT.SessionTTL())
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionStoreCreated, user.ID, fmt.Sprintf("store %q registered by %s", storeName, email))
	return session, nil
}

func (s *service) Logout(ctx context.Context, identityToken string) error {
	if err := s.identity.SignOut(ctx, identityToken); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke identity session")
	}
	s.auditCtx(ctx, enums.ActionUserLogout, "logged out")
	return nil
}

// MagicLogin exchanges the configured secret for a platform-admin session.
// The comparison is constant-time; a mismatch and a disabled link are
// indistinguishable to the caller.
func (s *service) MagicLogin(ctx context.Context, token string) (*Session, error) {
	secret := s.cfg.MagicLink.Secret
	if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid magic link")
	}

	var admin models.User
	if err := s.db.WithContext(ctx).
		Where("is_platform_admin = ?", true).
		Order("created_at ASC").
		First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no platform admin on file")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform admin")
	}

	session, err := s.openSession(ctx, &admin, s.cfg.JWT.MagicTTL())
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionMagicLinkLogin, admin.ID, fmt.Sprintf("%s signed in via magic link", admin.Email))
	return session, nil
}

// openSession mints the claims token, opens the delegated identity session,
// and picks the post-login destination.
func (s *service) openSession(ctx context.Context, user *models.User, ttl time.Duration) (*Session, error) {
	slug := ""
	if user.StoreID != nil {
		var store models.Store
		if err := s.db.WithContext(ctx).Select("slug").First(&store, "id = ?", *user.StoreID).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store slug")
		}
		slug = store.Slug
	}

	sessionToken, err := pkgauth.MintSessionToken(s.cfg.JWT, s.now(), pkgauth.SessionPayload{
		UserID:          user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		IsPlatformAdmin: user.IsPlatformAdmin,
		StoreID:         user.StoreID,
		StoreSlug:       slug,
	}, ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}

	identityToken, err := s.identity.SignIn(ctx, user.ID, user.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open identity session")
	}

	redirect := "/platform-admin"
	if !user.IsPlatformAdmin {
		redirect = fmt.Sprintf("/%s/admin/inventory", slug)
	}

	user.PasswordHash = ""
	return &Session{
		User:          user,
		SessionToken:  sessionToken,
		SessionTTL:    ttl,
		IdentityToken: identityToken,
		RedirectTo:    redirect,
	}, nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, userID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "user",
		EntityID:    userID.String(),
	})
}

func (s *service) auditCtx(ctx context.Context, action enums.AuditAction, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{Action: action, Description: description})
}
