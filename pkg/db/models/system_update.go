package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemUpdate is a platform-wide announcement, independent of tenancy.
type SystemUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Version   string    `gorm:"column:version"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
