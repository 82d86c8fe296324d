package requests

import (
	"context"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for item requests and their returns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ItemRequest) error
	GetInCompany(ctx context.Context, companyID, requestID uuid.UUID) (*models.ItemRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ItemRequest, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemRequest, error)
	ResolveIfPending(ctx context.Context, requestID uuid.UUID, status enums.RequestStatus, approverID *uuid.UUID, fulfilledAt *time.Time) (bool, error)
	CreateReturn(ctx context.Context, ret *models.ItemReturn) error
	GetReturnByRequest(ctx context.Context, requestID uuid.UUID) (*models.ItemReturn, error)
	MarkReturned(ctx context.Context, requestID uuid.UUID, at time.Time) (bool, error)
	CountPending(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.ItemRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetInCompany(ctx context.Context, companyID, requestID uuid.UUID) (*models.ItemRequest, error) {
	var request models.ItemRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = item_requests.item_id").
		Where("item_requests.id = ? AND items.company_id = ?", requestID, companyID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ItemRequest, error) {
	var requests []models.ItemRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemRequest, error) {
	var requests []models.ItemRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = item_requests.item_id").
		Where("items.company_id = ?", companyID).
		Order("item_requests.created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ResolveIfPending moves a pending request into a terminal status. The status
// guard makes concurrent resolutions settle exactly once.
func (r *repository) ResolveIfPending(ctx context.Context, requestID uuid.UUID, status enums.RequestStatus, approverID *uuid.UUID, fulfilledAt *time.Time) (bool, error) {
	updates := map[string]any{"status": status}
	if approverID != nil {
		updates["approver_user_id"] = *approverID
	}
	if fulfilledAt != nil {
		updates["fulfilled_at"] = *fulfilledAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.ItemRequest{}).
		Where("id = ? AND status = ?", requestID, enums.RequestStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateReturn(ctx context.Context, ret *models.ItemReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *repository) GetReturnByRequest(ctx context.Context, requestID uuid.UUID) (*models.ItemReturn, error) {
	var ret models.ItemReturn
	if err := r.db.WithContext(ctx).First(&ret, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *repository) MarkReturned(ctx context.Context, requestID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ItemReturn{}).
		Where("request_id = ? AND is_returned = ?", requestID, false).
		Updates(map[string]any{
			"is_returned": true,
			"returned_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ItemRequest{}).
		Joins("JOIN items ON items.id = item_requests.item_id").
		Where("items.company_id = ? AND item_requests.status = ?", companyID, enums.RequestStatusPending).
		Count(&count).Error
	return count, err
}
