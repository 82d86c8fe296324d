package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the top-level tenant. Every downstream entity resolves to
// exactly one company, directly or through a location.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
