package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// AuditLog is one append-only activity record. Rows are never updated or
// deleted by normal operation.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID     *uuid.UUID        `gorm:"column:store_id;type:uuid;index"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null"`
	Description string            `gorm:"column:description"`
	EntityType  *string           `gorm:"column:entity_type"`
	EntityID    *string           `gorm:"column:entity_id"`
	Metadata    json.RawMessage   `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
