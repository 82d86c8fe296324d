package companies

import (
	"context"
	"fmt"
	"strings"

	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// Service manages companies and their branch locations.
type Service interface {
	Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
	CreateLocation(ctx context.Context, companyID uuid.UUID, input LocationInput) (*models.Location, error)
	GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*models.Location, error)
	ListLocations(ctx context.Context, companyID uuid.UUID) ([]models.Location, error)
	UpdateLocation(ctx context.Context, companyID, locationID uuid.UUID, input LocationInput) (*models.Location, error)
	DeleteLocation(ctx context.Context, companyID, locationID uuid.UUID) error
}

// LocationInput carries the writable fields of a location. The company
// reference is fixed at creation.
type LocationInput struct {
	Name    string  `json:"name" validate:"required,min=1,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	City    *string `json:"city" validate:"omitempty,max=120"`
	Country *string `json:"country" validate:"omitempty,max=120"`
}

type service struct {
	repo Repository
}

// NewService wires a company service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "company")
	}
	return company, nil
}

func (s *service) CreateLocation(ctx context.Context, companyID uuid.UUID, input LocationInput) (*models.Location, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	location := &models.Location{
		Name:      strings.TrimSpace(input.Name),
		Address:   input.Address,
		City:      input.City,
		Country:   input.Country,
		CompanyID: companyID,
	}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *service) GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*models.Location, error) {
	location, err := s.repo.GetLocation(ctx, companyID, locationID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "location")
	}
	return location, nil
}

func (s *service) ListLocations(ctx context.Context, companyID uuid.UUID) ([]models.Location, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListLocations(ctx, companyID)
}

func (s *service) UpdateLocation(ctx context.Context, companyID, locationID uuid.UUID, input LocationInput) (*models.Location, error) {
	location, err := s.repo.GetLocation(ctx, companyID, locationID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "location")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	location.Name = strings.TrimSpace(input.Name)
	location.Address = input.Address
	location.City = input.City
	location.Country = input.Country
	if err := s.repo.SaveLocation(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *service) DeleteLocation(ctx context.Context, companyID, locationID uuid.UUID) error {
	if _, err := s.repo.GetLocation(ctx, companyID, locationID); err != nil {
		return pkgdb.AsLookupError(err, "location")
	}
	refs, err := s.repo.CountLocationReferences(ctx, locationID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "location still has employees or items assigned")
	}
	return s.repo.DeleteLocation(ctx, companyID, locationID)
}
