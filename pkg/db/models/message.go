package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

// Message is directed, timestamped text between two users. Kind distinguishes
// peer mail from system alerts.
type Message struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	FromUserID uuid.UUID         `gorm:"column:from_user_id;type:uuid;not null;index"`
	ToUserID   uuid.UUID         `gorm:"column:to_user_id;type:uuid;not null;index"`
	Kind       enums.MessageKind `gorm:"column:kind;type:text;not null;default:'peer'"`
	Text       string            `gorm:"type:text;not null"`
	Read       bool              `gorm:"column:read;not null;default:false"`
	SentAt     time.Time         `gorm:"column:sent_at;autoCreateTime"`
}
