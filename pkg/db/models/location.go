package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a branch of a company. The company reference is treated as
// immutable once employees or items point at the location.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Address   *string   `gorm:"type:text"`
	City      *string   `gorm:"type:text"`
	Country   *string   `gorm:"type:text"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
