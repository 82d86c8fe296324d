package companies

import (
	"context"
	"testing"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	locations map[uuid.UUID]*models.Location
	refs      int64
	deleted   []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{locations: map[uuid.UUID]*models.Location{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, company *models.Company) error { return nil }

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	location.ID = uuid.New()
	f.locations[location.ID] = location
	return nil
}

func (f *fakeRepository) GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*models.Location, error) {
	location, ok := f.locations[locationID]
	if !ok || location.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return location, nil
}

func (f *fakeRepository) ListLocations(ctx context.Context, companyID uuid.UUID) ([]models.Location, error) {
	var out []models.Location
	for _, location := range f.locations {
		if location.CompanyID == companyID {
			out = append(out, *location)
		}
	}
	return out, nil
}

func (f *fakeRepository) SaveLocation(ctx context.Context, location *models.Location) error {
	f.locations[location.ID] = location
	return nil
}

func (f *fakeRepository) DeleteLocation(ctx context.Context, companyID, locationID uuid.UUID) error {
	delete(f.locations, locationID)
	f.deleted = append(f.deleted, locationID)
	return nil
}

func (f *fakeRepository) CountLocationReferences(ctx context.Context, locationID uuid.UUID) (int64, error) {
	return f.refs, nil
}

func (f *fakeRepository) CreateMembership(ctx context.Context, membership *models.CompanyMembership) error {
	return nil
}

func TestCreateLocationScopesToCompany(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	companyID := uuid.New()
	location, err := svc.CreateLocation(context.Background(), companyID, LocationInput{Name: "  Lagos HQ "})
	if err != nil {
		t.Fatalf("CreateLocation error: %v", err)
	}
	if location.CompanyID != companyID {
		t.Fatalf("location bound to wrong company: %s", location.CompanyID)
	}
	if location.Name != "Lagos HQ" {
		t.Fatalf("name not trimmed: %q", location.Name)
	}
}

func TestGetLocationEnforcesTenancy(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	owner := uuid.New()
	location, err := svc.CreateLocation(context.Background(), owner, LocationInput{Name: "Depot"})
	if err != nil {
		t.Fatalf("CreateLocation error: %v", err)
	}

	_, err = svc.GetLocation(context.Background(), uuid.New(), location.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant read must 404, got %v", err)
	}
}

func TestDeleteLocationBlockedWhileReferenced(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	companyID := uuid.New()
	location, err := svc.CreateLocation(context.Background(), companyID, LocationInput{Name: "Depot"})
	if err != nil {
		t.Fatalf("CreateLocation error: %v", err)
	}

	repo.refs = 3
	err = svc.DeleteLocation(context.Background(), companyID, location.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	repo.refs = 0
	if err := svc.DeleteLocation(context.Background(), companyID, location.ID); err != nil {
		t.Fatalf("DeleteLocation error: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected one delete")
	}
}
