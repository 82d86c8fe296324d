package messaging

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for user-to-user and system messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error)
	ListInbox(ctx context.Context, toUserID uuid.UUID) ([]models.Message, error)
	ListSent(ctx context.Context, fromUserID uuid.UUID) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID uuid.UUID) error
	CountUnread(ctx context.Context, toUserID uuid.UUID, kind enums.MessageKind) (int64, error)
	MemberActive(ctx context.Context, companyID, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a message repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) ListInbox(ctx context.Context, toUserID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", toUserID).
		Order("sent_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) ListSent(ctx context.Context, fromUserID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND kind = ?", fromUserID, enums.MessageKindPeer).
		Order("sent_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) MarkRead(ctx context.Context, messageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("read", true).Error
}

func (r *repository) CountUnread(ctx context.Context, toUserID uuid.UUID, kind enums.MessageKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("to_user_id = ? AND kind = ? AND read = ?", toUserID, kind, false).
		Count(&count).Error
	return count, err
}

func (r *repository) MemberActive(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMembership{}).
		Where("company_id = ? AND user_id = ? AND status = ?", companyID, userID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
