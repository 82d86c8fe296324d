package companies

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages companies and their locations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	CreateLocation(ctx context.Context, location *models.Location) error
	GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*models.Location, error)
	ListLocations(ctx context.Context, companyID uuid.UUID) ([]models.Location, error)
	SaveLocation(ctx context.Context, location *models.Location) error
	DeleteLocation(ctx context.Context, companyID, locationID uuid.UUID) error
	CountLocationReferences(ctx context.Context, locationID uuid.UUID) (int64, error)
	CreateMembership(ctx context.Context, membership *models.CompanyMembership) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a company repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) CreateLocation(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		First(&location, "id = ? AND company_id = ?", locationID, companyID).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) ListLocations(ctx context.Context, companyID uuid.UUID) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repository) SaveLocation(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *repository) DeleteLocation(ctx context.Context, companyID, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", locationID, companyID).
		Delete(&models.Location{}).Error
}

// CountLocationReferences counts employees and items still pointing at the
// location, used to block deletes that would orphan records.
func (r *repository) CountLocationReferences(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var employees int64
	err := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("location_id = ?", locationID).
		Count(&employees).Error
	if err != nil {
		return 0, err
	}

	var items int64
	err = r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("location_id = ?", locationID).
		Count(&items).Error
	if err != nil {
		return 0, err
	}
	return employees + items, nil
}

func (r *repository) CreateMembership(ctx context.Context, membership *models.CompanyMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}
