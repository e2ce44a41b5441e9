package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/security"
)

const tempPasswordLength = 12

// CreateStaffInput carries the fields an owner sets when inviting staff.
type CreateStaffInput struct {
	Email string
	Name  string
	Role  enums.UserRole
}

// CreatedStaff is the new account plus its one-time password. The plaintext
// exists only in this response; the store keeps the hash.
type CreatedStaff struct {
	User         *models.User
	TempPassword string
}

// Service manages a store's staff accounts. Owners cannot be created or
// removed here; only manager and staff roles are assignable.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateStaffInput) (*CreatedStaff, error)
	Remove(ctx context.Context, id, storeID uuid.UUID) error
	List(ctx context.Context, storeID uuid.UUID) ([]models.User, error)
}

type service struct {
	db       *gorm.DB
	cfg      config.PasswordConfig
	recorder audit.Recorder
}

// NewService wires a staff service. The recorder may be nil in tests.
func NewService(db *gorm.DB, cfg config.PasswordConfig, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, cfg: cfg, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateStaffInput) (*CreatedStaff, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Role != enums.UserRoleManager && input.Role != enums.UserRoleStaff {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be manager or staff")
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if existing > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		Role:         input.Role,
		StoreID:      &storeID,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create staff account")
	}

	s.audit(ctx, enums.ActionStaffCreated, user.ID, fmt.Sprintf("added %s as %s", email, input.Role))
	return &CreatedStaff{User: user, TempPassword: tempPassword}, nil
}

func (s *service) Remove(ctx context.Context, id, storeID uuid.UUID) error {
	// Owners are never removable through the staff surface.
	result := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ? AND role IN ?", id, storeID,
			[]enums.UserRole{enums.UserRoleManager, enums.UserRoleStaff}).
		Delete(&models.User{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "remove staff account")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
	}

	s.audit(ctx, enums.ActionStaffRemoved, id, "removed staff account")
	return nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]models.User, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
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
