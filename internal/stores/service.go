package stores

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SettingsInput is what a store owner can change about their own store.
type SettingsInput struct {
	Name       *string
	OwnerPhone *string
}

// Service covers both tenant-facing settings and the platform-admin store
// registry (verify, suspend, tier changes).
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	UpdateSettings(ctx context.Context, storeID uuid.UUID, input SettingsInput) (*models.Store, error)

	ListAll(ctx context.Context) ([]models.Store, error)
	SetVerification(ctx context.Context, storeID uuid.UUID, status enums.VerificationStatus) (*models.Store, error)
	SetStatus(ctx context.Context, storeID uuid.UUID, status enums.StoreStatus) (*models.Store, error)
	ChangeTier(ctx context.Context, storeID uuid.UUID, tier enums.StoreTier) (*models.Store, error)
}

type service struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewService wires a store service. The recorder may be nil in tests.
func NewService(db *gorm.DB, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, recorder: recorder}, nil
}

// ValidSlug reports whether a slug is routable as a storefront path
// segment.
func ValidSlug(slug string) bool {
	return len(slug) >= 3 && len(slug) <= 60 && slugPattern.MatchString(slug)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug required")
	}
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return &store, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return &store, nil
}

func (s *service) UpdateSettings(ctx context.Context, storeID uuid.UUID, input SettingsInput) (*models.Store, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
		}
		updates["name"] = name
	}
	if input.OwnerPhone != nil {
		updates["owner_phone"] = strings.TrimSpace(*input.OwnerPhone)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(updates)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update store settings")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	s.audit(ctx, enums.ActionSettingsUpdated, storeID, "updated store settings")
	return s.GetByID(ctx, storeID)
}

func (s *service) ListAll(ctx context.Context) ([]models.Store, error) {
	var items []models.Store
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return items, nil
}

func (s *service) SetVerification(ctx context.Context, storeID uuid.UUID, status enums.VerificationStatus) (*models.Store, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid verification status")
	}
	if err := s.updateColumn(ctx, storeID, "verification_status", status); err != nil {
		return nil, err
	}
	s.audit(ctx, enums.ActionStoreVerified, storeID, fmt.Sprintf("verification set to %s", status))
	return s.GetByID(ctx, storeID)
}

func (s *service) SetStatus(ctx context.Context, storeID uuid.UUID, status enums.StoreStatus) (*models.Store, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store status")
	}
	if err := s.updateColumn(ctx, storeID, "status", status); err != nil {
		return nil, err
	}
	s.audit(ctx, enums.ActionStoreSuspended, storeID, fmt.Sprintf("status set to %s", status))
	return s.GetByID(ctx, storeID)
}

func (s *service) ChangeTier(ctx context.Context, storeID uuid.UUID, tier enums.StoreTier) (*models.Store, error) {
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store tier")
	}
	if err := s.updateColumn(ctx, storeID, "tier", tier); err != nil {
		return nil, err
	}
	s.audit(ctx, enums.ActionStoreTierChanged, storeID, fmt.Sprintf("tier set to %s", tier))
	return s.GetByID(ctx, storeID)
}

func (s *service) updateColumn(ctx context.Context, storeID uuid.UUID, column string, value any) error {
	result := s.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update(column, value)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update store")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, storeID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "store",
		EntityID:    storeID.String(),
	})
}
