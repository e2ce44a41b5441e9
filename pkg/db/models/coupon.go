package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// Coupon is a per-store discount code. Uses only ever increments.
type Coupon struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_coupons_store_code"`
	Code      string           `gorm:"column:code;not null;uniqueIndex:idx_coupons_store_code"`
	Type      enums.CouponType `gorm:"column:type;type:text;not null;default:'percent'"`
	Value     decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null;default:0"`
	Uses      int              `gorm:"column:uses;not null;default:0"`
	MaxUses   *int             `gorm:"column:max_uses"`
	ExpiresAt *time.Time       `gorm:"column:expires_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
