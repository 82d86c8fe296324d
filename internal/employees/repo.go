package employees

import (
	"context"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember is the flattened user-plus-profile row the team views work with.
type TeamMember struct {
	UserID      uuid.UUID  `gorm:"column:user_id" json:"user_id"`
	Email       string     `gorm:"column:email" json:"email"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Username    string     `gorm:"column:username" json:"username"`
	AvatarKey   *string    `gorm:"column:avatar_key" json:"-"`
	LocationID  *uuid.UUID `gorm:"column:location_id" json:"location_id,omitempty"`
	IsActive    bool       `gorm:"column:is_active" json:"is_active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	AvatarURL   string     `gorm:"-" json:"avatar_url,omitempty"`
}

// Repository manages employee profiles and the company team view.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, employee *models.Employee) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error)
	Save(ctx context.Context, employee *models.Employee) error
	SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) error
	ListTeam(ctx context.Context, companyID uuid.UUID) ([]TeamMember, error)
	CountTeam(ctx context.Context, companyID uuid.UUID) (int64, error)
	InCompany(ctx context.Context, companyID, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an employee repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) Save(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *repository) SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("user_id = ?", userID).
		Update("avatar_key", key).Error
}

func (r *repository) ListTeam(ctx context.Context, companyID uuid.UUID) ([]TeamMember, error) {
	var members []TeamMember
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMembership{}).
		Select(`DISTINCT users.id AS user_id, users.email, users.first_name, users.last_name,
			users.is_active, users.last_login_at,
			employees.username, employees.avatar_key, employees.location_id`).
		Joins("JOIN users ON users.id = company_memberships.user_id").
		Joins("JOIN employees ON employees.user_id = users.id").
		Where("company_memberships.company_id = ? AND company_memberships.status = ?",
			companyID, enums.MembershipStatusActive).
		Order("users.last_name ASC, users.first_name ASC").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) CountTeam(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMembership{}).
		Distinct("user_id").
		Where("company_id = ? AND status = ?", companyID, enums.MembershipStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repository) InCompany(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMembership{}).
		Where("company_id = ? AND user_id = ? AND status = ?",
			companyID, userID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
