package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a tenant-scoped vendor record.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:text;not null"`
	Description  *string   `gorm:"type:text"`
	ContactEmail string    `gorm:"column:contact_email;type:text;not null"`
	CompanyID    uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
