package models

import (
	"time"

	"github.com/google/uuid"
)

// Allocation is a date-ranged claim of an item by a user. Display status is
// derived from (approved, approver-present); only the flags are stored.
type Allocation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ItemID         uuid.UUID  `gorm:"column:item_id;type:uuid;not null;index"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	StartDate      time.Time  `gorm:"column:start_date;not null"`
	EndDate        time.Time  `gorm:"column:end_date;not null"`
	Approved       bool       `gorm:"column:approved;not null;default:false"`
	ApproverUserID *uuid.UUID `gorm:"column:approver_user_id;type:uuid"`
	CheckedIn      bool       `gorm:"column:checked_in;not null;default:false"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
