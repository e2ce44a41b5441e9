package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/enums"
)

// User represents the canonical identity entity. Password hashes may be
// empty when authentication is fully delegated to the identity provider.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email           string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string         `gorm:"column:password_hash"`
	Name            string         `gorm:"column:name;not null"`
	Role            enums.UserRole `gorm:"column:role;type:text;not null"`
	IsPlatformAdmin bool           `gorm:"column:is_platform_admin;not null;default:false"`
	StoreID         *uuid.UUID     `gorm:"column:store_id;type:uuid"`
	Phone           *string        `gorm:"column:phone;uniqueIndex"`
	IsVerified      bool           `gorm:"column:is_verified;not null;default:false"`
	OTPCode         *string        `gorm:"column:otp_code"`
	OTPExpiresAt    *time.Time     `gorm:"column:otp_expires_at"`
	LastLoginAt     *time.Time     `gorm:"column:last_login_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
