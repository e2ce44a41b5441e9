package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a tenant-owned listing.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StoreID        uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	SKU            string          `gorm:"column:sku"`
	Name           string          `gorm:"column:name;not null"`
	Category       string          `gorm:"column:category"`
	Description    string          `gorm:"column:description"`
	Image          *string         `gorm:"column:image"`
	PriceRetail    decimal.Decimal `gorm:"column:price_retail;type:numeric(12,2);not null;default:0"`
	PriceWholesale decimal.Decimal `gorm:"column:price_wholesale;type:numeric(12,2);not null;default:0"`
	StockQty       int             `gorm:"column:stock_qty;not null;default:0"`
	IsArchived     bool            `gorm:"column:is_archived;not null;default:false"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
