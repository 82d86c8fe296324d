package catalog

import (
	"context"
	"fmt"
	"strings"

	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// Service manages the classification side of the catalog: categories and
// suppliers, both company-scoped.
type Service interface {
	CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (*models.Category, error)
	ListCategories(ctx context.Context, companyID uuid.UUID) ([]models.Category, error)
	RenameCategory(ctx context.Context, companyID, categoryID uuid.UUID, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error
	CategoriesWithCounts(ctx context.Context, companyID uuid.UUID) ([]CategoryCount, error)

	CreateSupplier(ctx context.Context, companyID uuid.UUID, input SupplierInput) (*models.Supplier, error)
	GetSupplier(ctx context.Context, companyID, supplierID uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, companyID uuid.UUID) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, companyID, supplierID uuid.UUID, input SupplierInput) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, companyID, supplierID uuid.UUID) error
}

// SupplierInput carries the writable fields of a supplier.
type SupplierInput struct {
	Name         string  `json:"name" validate:"required,min=1,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (*models.Category, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category := &models.Category{Name: name, CompanyID: companyID}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, companyID uuid.UUID) ([]models.Category, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListCategories(ctx, companyID)
}

func (s *service) RenameCategory(ctx context.Context, companyID, categoryID uuid.UUID, name string) (*models.Category, error) {
	category, err := s.repo.GetCategory(ctx, companyID, categoryID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "category")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category.Name = name
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error {
	if _, err := s.repo.GetCategory(ctx, companyID, categoryID); err != nil {
		return pkgdb.AsLookupError(err, "category")
	}
	count, err := s.repo.CountCategoryItems(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has items")
	}
	return s.repo.DeleteCategory(ctx, companyID, categoryID)
}

func (s *service) CategoriesWithCounts(ctx context.Context, companyID uuid.UUID) ([]CategoryCount, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListCategoriesWithCounts(ctx, companyID)
}

func (s *service) CreateSupplier(ctx context.Context, companyID uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier contact email is required")
	}
	supplier := &models.Supplier{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		CompanyID:    companyID,
	}
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) GetSupplier(ctx context.Context, companyID, supplierID uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, companyID, supplierID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "supplier")
	}
	return supplier, nil
}

func (s *service) ListSuppliers(ctx context.Context, companyID uuid.UUID) ([]models.Supplier, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListSuppliers(ctx, companyID)
}

func (s *service) UpdateSupplier(ctx context.Context, companyID, supplierID uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, companyID, supplierID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "supplier")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier contact email is required")
	}
	supplier.Name = strings.TrimSpace(input.Name)
	supplier.Description = input.Description
	supplier.ContactEmail = strings.TrimSpace(input.ContactEmail)
	if err := s.repo.SaveSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) DeleteSupplier(ctx context.Context, companyID, supplierID uuid.UUID) error {
	if _, err := s.repo.GetSupplier(ctx, companyID, supplierID); err != nil {
		return pkgdb.AsLookupError(err, "supplier")
	}
	return s.repo.DeleteSupplier(ctx, companyID, supplierID)
}
