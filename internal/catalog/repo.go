package catalog

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryCount is a category together with how many items it holds.
type CategoryCount struct {
	CategoryID uuid.UUID `gorm:"column:category_id" json:"category_id"`
	Name       string    `gorm:"column:name" json:"name"`
	ItemCount  int64     `gorm:"column:item_count" json:"item_count"`
}

// Repository manages categories and suppliers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, companyID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, companyID uuid.UUID) ([]models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error
	CountCategoryItems(ctx context.Context, categoryID uuid.UUID) (int64, error)
	ListCategoriesWithCounts(ctx context.Context, companyID uuid.UUID) ([]CategoryCount, error)

	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	GetSupplier(ctx context.Context, companyID, supplierID uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, companyID uuid.UUID) ([]models.Supplier, error)
	SaveSupplier(ctx context.Context, supplier *models.Supplier) error
	DeleteSupplier(ctx context.Context, companyID, supplierID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) GetCategory(ctx context.Context, companyID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "id = ? AND company_id = ?", categoryID, companyID).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, companyID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", categoryID, companyID).
		Delete(&models.Category{}).Error
}

func (r *repository) CountCategoryItems(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// ListCategoriesWithCounts lists every category alongside its item tally.
// Empty categories still appear with a zero count.
func (r *repository) ListCategoriesWithCounts(ctx context.Context, companyID uuid.UUID) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.id AS category_id, categories.name, COUNT(items.id) AS item_count").
		Joins("LEFT JOIN items ON items.category_id = categories.id").
		Where("categories.company_id = ?", companyID).
		Group("categories.id, categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *repository) GetSupplier(ctx context.Context, companyID, supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		First(&supplier, "id = ? AND company_id = ?", supplierID, companyID).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListSuppliers(ctx context.Context, companyID uuid.UUID) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) SaveSupplier(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *repository) DeleteSupplier(ctx context.Context, companyID, supplierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", supplierID, companyID).
		Delete(&models.Supplier{}).Error
}
