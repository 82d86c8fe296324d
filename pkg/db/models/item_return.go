package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemReturn tracks the give-back of a fulfilled request. The unique index on
// request_id guarantees at most one return per request.
type ItemReturn struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID  `gorm:"column:request_id;type:uuid;not null;uniqueIndex"`
	IsReturned bool       `gorm:"column:is_returned;not null;default:false"`
	ReturnedAt *time.Time `gorm:"column:returned_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
