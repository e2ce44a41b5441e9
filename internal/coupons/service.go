package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// CreateCouponInput carries the writable fields of a new coupon.
type CreateCouponInput struct {
	Code      string
	Type      enums.CouponType
	Value     decimal.Decimal
	MaxUses   *int
	ExpiresAt *time.Time
}

// Service manages a store's discount codes. The uses counter only ever
// increments; a redeemed coupon is never un-redeemed.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateCouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, id, storeID uuid.UUID) error
	List(ctx context.Context, storeID uuid.UUID) ([]models.Coupon, error)
	// Redeem looks up an active coupon by code and increments its uses.
	// Expired or exhausted codes fail with a state conflict.
	Redeem(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error)
	// Check validates a code without consuming a use, for cart previews.
	Check(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error)
}

type service struct {
	db       *gorm.DB
	recorder audit.Recorder
	now      func() time.Time
}

// NewService wires a coupon service. The recorder may be nil in tests.
func NewService(db *gorm.DB, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, recorder: recorder, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateCouponInput) (*models.Coupon, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon type")
	}
	if !input.Value.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if input.Type == enums.CouponTypePercent && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent discount cannot exceed 100")
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max uses must be positive")
	}

	coupon := &models.Coupon{
		StoreID:   storeID,
		Code:      code,
		Type:      input.Type,
		Value:     input.Value,
		MaxUses:   input.MaxUses,
		ExpiresAt: input.ExpiresAt,
	}
	if err := s.db.WithContext(ctx).Create(coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}

	s.audit(ctx, enums.ActionCouponCreated, coupon.ID, fmt.Sprintf("created coupon %s", code))
	return coupon, nil
}

func (s *service) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Coupon{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete coupon")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	s.audit(ctx, enums.ActionCouponDeleted, id, "deleted coupon")
	return nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]models.Coupon, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	var items []models.Coupon
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return items, nil
}

func (s *service) Redeem(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code and store id required")
	}

	var coupon models.Coupon
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&coupon, "store_id = ? AND code = ?", storeID, code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		}
		if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon expired")
		}

		// Guarded increment so a concurrent redemption cannot push a
		// capped coupon past its limit.
		query := tx.Model(&models.Coupon{}).Where("id = ?", coupon.ID)
		if coupon.MaxUses != nil {
			query = query.Where("uses < ?", *coupon.MaxUses)
		}
		result := query.Update("uses", gorm.Expr("uses + 1"))
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "redeem coupon")
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon fully redeemed")
		}
		coupon.Uses++
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionCouponRedeemed, coupon.ID, fmt.Sprintf("redeemed coupon %s", code))
	return &coupon, nil
}

func (s *service) Check(ctx context.Context, storeID uuid.UUID, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code and store id required")
	}

	var coupon models.Coupon
	if err := s.db.WithContext(ctx).
		First(&coupon, "store_id = ? AND code = ?", storeID, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon expired")
	}
	if coupon.MaxUses != nil && coupon.Uses >= *coupon.MaxUses {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon fully redeemed")
	}
	return &coupon, nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, couponID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "coupon",
		EntityID:    couponID.String(),
	})
}
