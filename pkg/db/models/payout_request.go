package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// PayoutRequest is a store's withdrawal against its wallet balance.
// Once the status leaves pending the row is immutable.
type PayoutRequest struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID          `gorm:"column:store_id;type:uuid;not null;index"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Status      enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Method      enums.PayoutMethod `gorm:"column:method;type:text;not null"`
	Destination string             `gorm:"column:destination;not null"`
	AdminNote   *string            `gorm:"column:admin_note"`
	ProcessedAt *time.Time         `gorm:"column:processed_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
