package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// WalletTransaction is one append-only ledger entry. Positive amounts
// credit the store wallet, negative amounts debit it; the running invariant
// is sum(amount) == Store.WalletBalance from ledger adoption onward.
type WalletTransaction struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID                   `gorm:"column:store_id;type:uuid;not null;index"`
	Amount      decimal.Decimal             `gorm:"column:amount;type:numeric(14,2);not null"`
	Type        enums.WalletTransactionType `gorm:"column:type;type:text;not null"`
	Description string                      `gorm:"column:description"`
	ReferenceID *uuid.UUID                  `gorm:"column:reference_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
