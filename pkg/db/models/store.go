package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// Store represents the canonical tenant model. WalletBalance only moves
// through ledger operations; see internal/payouts.
type Store struct {
	ID                 uuid.UUID                `gorm:"type:uuid;primaryKey"`
	Name               string                   `gorm:"column:name;not null"`
	Slug               string                   `gorm:"column:slug;not null;uniqueIndex"`
	Tier               enums.StoreTier          `gorm:"column:tier;type:text;not null;default:'hustler'"`
	Status             enums.StoreStatus        `gorm:"column:status;type:text;not null;default:'active'"`
	OwnerPhone         *string                  `gorm:"column:owner_phone"`
	WalletBalance      decimal.Decimal          `gorm:"column:wallet_balance;type:numeric(14,2);not null;default:0"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:text;not null;default:'pending'"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
