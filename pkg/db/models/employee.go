package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the 1:1 profile of a user. It is created in the same
// transaction as its user and never outlives it.
type Employee struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Username      string     `gorm:"type:text;not null"`
	AvatarKey     *string    `gorm:"column:avatar_key;type:text"`
	EmailVerified bool       `gorm:"column:email_verified;not null;default:false"`
	LocationID    *uuid.UUID `gorm:"column:location_id;type:uuid;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
