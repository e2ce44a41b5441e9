package zones

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// ZoneInput carries the writable fields of a delivery zone.
type ZoneInput struct {
	Name        string
	Fee         decimal.Decimal
	Description string
}

// Service manages a store's delivery zones.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input ZoneInput) (*models.DeliveryZone, error)
	Update(ctx context.Context, id, storeID uuid.UUID, input ZoneInput) (*models.DeliveryZone, error)
	Delete(ctx context.Context, id, storeID uuid.UUID) error
	List(ctx context.Context, storeID uuid.UUID) ([]models.DeliveryZone, error)
	Get(ctx context.Context, id, storeID uuid.UUID) (*models.DeliveryZone, error)
}

type service struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewService wires a delivery-zone service. The recorder may be nil in tests.
func NewService(db *gorm.DB, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, recorder: recorder}, nil
}

func validateZone(input *ZoneInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone name required")
	}
	if input.Fee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "fee cannot be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input ZoneInput) (*models.DeliveryZone, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if err := validateZone(&input); err != nil {
		return nil, err
	}

	zone := &models.DeliveryZone{
		StoreID:     storeID,
		Name:        input.Name,
		Fee:         input.Fee,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.db.WithContext(ctx).Create(zone).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery zone")
	}

	s.audit(ctx, enums.ActionZoneCreated, zone.ID, fmt.Sprintf("created zone %q", zone.Name))
	return zone, nil
}

func (s *service) Update(ctx context.Context, id, storeID uuid.UUID, input ZoneInput) (*models.DeliveryZone, error) {
	if err := validateZone(&input); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.DeliveryZone{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Updates(map[string]any{
			"name":        input.Name,
			"fee":         input.Fee,
			"description": strings.TrimSpace(input.Description),
		})
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update delivery zone")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
	}

	s.audit(ctx, enums.ActionZoneUpdated, id, fmt.Sprintf("updated zone %q", input.Name))
	return s.Get(ctx, id, storeID)
}

func (s *service) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.DeliveryZone{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete delivery zone")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
	}

	s.audit(ctx, enums.ActionZoneDeleted, id, "deleted delivery zone")
	return nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]models.DeliveryZone, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	var items []models.DeliveryZone
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery zones")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id, storeID uuid.UUID) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	if err := s.db.WithContext(ctx).
		First(&zone, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery zone")
	}
	return &zone, nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, zoneID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "delivery_zone",
		EntityID:    zoneID.String(),
	})
}
