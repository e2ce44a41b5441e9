package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// Order is a storefront purchase against one store.
type Order struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	StoreID       uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	DeliveryFee   decimal.Decimal   `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Discount      decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	CustomerName  string            `gorm:"column:customer_name"`
	CustomerPhone string            `gorm:"column:customer_phone;not null"`
	CouponCode    *string           `gorm:"column:coupon_code"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots product name and price at order time so later product
// edits cannot corrupt historical orders. Name and price never change after
// creation.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
