package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemLog holds the running inventory value for one company and calendar
// month. At most one row exists per (company, month, year); the value is only
// ever adjusted additively.
type ItemLog struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"column:company_id;type:uuid;not null;uniqueIndex:idx_item_logs_period,priority:1"`
	Month          string          `gorm:"column:month;type:text;not null;uniqueIndex:idx_item_logs_period,priority:2"`
	Year           int             `gorm:"column:year;not null;uniqueIndex:idx_item_logs_period,priority:3"`
	InventoryValue decimal.Decimal `gorm:"column:inventory_value;type:numeric(14,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
