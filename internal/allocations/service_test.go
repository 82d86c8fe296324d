package allocations

import (
	"context"
	"testing"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	allocations map[uuid.UUID]*models.Allocation
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{allocations: map[uuid.UUID]*models.Allocation{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, allocation *models.Allocation) error {
	allocation.ID = uuid.New()
	f.allocations[allocation.ID] = allocation
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Allocation, error) {
	allocation, ok := f.allocations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return allocation, nil
}

func (f *fakeRepository) GetInCompany(ctx context.Context, _ uuid.UUID, id uuid.UUID) (*models.Allocation, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Allocation, error) {
	var out []models.Allocation
	for _, allocation := range f.allocations {
		if allocation.UserID == userID {
			out = append(out, *allocation)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByCompany(context.Context, uuid.UUID) ([]models.Allocation, error) {
	var out []models.Allocation
	for _, allocation := range f.allocations {
		out = append(out, *allocation)
	}
	return out, nil
}

func (f *fakeRepository) Save(_ context.Context, allocation *models.Allocation) error {
	f.allocations[allocation.ID] = allocation
	return nil
}

func (f *fakeRepository) Decide(_ context.Context, id, approverID uuid.UUID, approved bool) (bool, error) {
	allocation := f.allocations[id]
	if allocation.ApproverUserID != nil {
		return false, nil
	}
	allocation.Approved = approved
	allocation.ApproverUserID = &approverID
	return true, nil
}

func (f *fakeRepository) MarkCheckedIn(_ context.Context, id uuid.UUID) (bool, error) {
	allocation := f.allocations[id]
	if !allocation.Approved || allocation.CheckedIn {
		return false, nil
	}
	allocation.CheckedIn = true
	return true, nil
}

func (f *fakeRepository) CountPendingItems(context.Context, uuid.UUID) (int64, error) {
	items := map[uuid.UUID]bool{}
	for _, allocation := range f.allocations {
		if allocation.ApproverUserID == nil {
			items[allocation.ItemID] = true
		}
	}
	return int64(len(items)), nil
}

func (f *fakeRepository) CountApproved(context.Context, uuid.UUID) (int64, error) {
	var count int64
	for _, allocation := range f.allocations {
		if allocation.Approved {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) CountActive(_ context.Context, _ uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	for _, allocation := range f.allocations {
		if allocation.Approved && !allocation.CheckedIn && !allocation.StartDate.After(asOf) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) MostRequestedItems(_ context.Context, _ uuid.UUID, limit int) ([]ItemDemand, error) {
	byItem := map[uuid.UUID]int64{}
	for _, allocation := range f.allocations {
		byItem[allocation.ItemID]++
	}
	var rows []ItemDemand
	for itemID, requests := range byItem {
		rows = append(rows, ItemDemand{ItemID: itemID, Requests: requests})
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeItemReader struct {
	known map[uuid.UUID]bool
}

func (f *fakeItemReader) ItemInCompany(_ context.Context, _ uuid.UUID, itemID uuid.UUID) (bool, error) {
	return f.known[itemID], nil
}

func newTestService(t *testing.T, repo *fakeRepository, items *fakeItemReader) Service {
	t.Helper()
	svc, err := NewService(repo, items)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func validRange() (time.Time, time.Time) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 14)
}

func TestStatusOfDerivation(t *testing.T) {
	approver := uuid.New()
	cases := []struct {
		name       string
		allocation models.Allocation
		want       enums.AllocationStatus
	}{
		{"undecided", models.Allocation{}, enums.AllocationStatusPending},
		{"denied", models.Allocation{ApproverUserID: &approver}, enums.AllocationStatusNotApproved},
		{"approved", models.Allocation{ApproverUserID: &approver, Approved: true}, enums.AllocationStatusApproved},
	}
	for _, tc := range cases {
		if got := StatusOf(&tc.allocation); got != tc.want {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestCreateStartsPending(t *testing.T) {
	repo := newFakeRepository()
	itemID := uuid.New()
	svc := newTestService(t, repo, &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	start, end := validRange()
	view, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateAllocationInput{
		ItemID:    itemID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if view.Status != enums.AllocationStatusPending {
		t.Fatalf("new allocation must be pending, got %s", view.Status)
	}
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	itemID := uuid.New()
	svc := newTestService(t, newFakeRepository(), &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	start, end := validRange()
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateAllocationInput{
		ItemID:    itemID,
		StartDate: end,
		EndDate:   start,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideIsFinal(t *testing.T) {
	repo := newFakeRepository()
	itemID := uuid.New()
	svc := newTestService(t, repo, &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	start, end := validRange()
	view, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateAllocationInput{
		ItemID: itemID, StartDate: start, EndDate: end,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	companyID := uuid.New()
	decided, err := svc.Decide(context.Background(), companyID, view.ID, uuid.New(), false)
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if decided.Status != enums.AllocationStatusNotApproved {
		t.Fatalf("expected not_approved, got %s", decided.Status)
	}

	_, err = svc.Decide(context.Background(), companyID, view.ID, uuid.New(), true)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("second decision must conflict, got %v", err)
	}
}

func TestCheckInRequiresApprovalAndOwnership(t *testing.T) {
	repo := newFakeRepository()
	itemID := uuid.New()
	svc := newTestService(t, repo, &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	owner := uuid.New()
	companyID := uuid.New()
	start, end := validRange()
	view, err := svc.Create(context.Background(), companyID, owner, CreateAllocationInput{
		ItemID: itemID, StartDate: start, EndDate: end,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Pending allocations cannot be checked in.
	_, err = svc.CheckIn(context.Background(), companyID, view.ID, owner, false)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("pending check-in must conflict, got %v", err)
	}

	if _, err := svc.Decide(context.Background(), companyID, view.ID, uuid.New(), true); err != nil {
		t.Fatalf("Decide error: %v", err)
	}

	// A stranger without a managing role is refused.
	_, err = svc.CheckIn(context.Background(), companyID, view.ID, uuid.New(), false)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("stranger check-in must be forbidden, got %v", err)
	}

	checked, err := svc.CheckIn(context.Background(), companyID, view.ID, owner, false)
	if err != nil {
		t.Fatalf("CheckIn error: %v", err)
	}
	if !checked.CheckedIn {
		t.Fatal("allocation should be checked in")
	}

	_, err = svc.CheckIn(context.Background(), companyID, view.ID, owner, false)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("double check-in must conflict, got %v", err)
	}
}

func TestMostRequestedRequiresPositiveLimit(t *testing.T) {
	repo := newFakeRepository()
	itemID := uuid.New()
	svc := newTestService(t, repo, &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	companyID := uuid.New()
	start, end := validRange()
	if _, err := svc.Create(context.Background(), companyID, uuid.New(), CreateAllocationInput{
		ItemID: itemID, StartDate: start, EndDate: end,
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err := svc.MostRequested(context.Background(), companyID, 0)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("zero limit must be rejected, got %v", err)
	}

	rows, err := svc.MostRequested(context.Background(), companyID, 10)
	if err != nil {
		t.Fatalf("MostRequested error: %v", err)
	}
	if len(rows) != 1 || rows[0].ItemID != itemID || rows[0].Requests != 1 {
		t.Fatalf("unexpected ranking: %+v", rows)
	}
}

func TestPendingItemCountIsDistinct(t *testing.T) {
	repo := newFakeRepository()
	itemID := uuid.New()
	svc := newTestService(t, repo, &fakeItemReader{known: map[uuid.UUID]bool{itemID: true}})

	companyID := uuid.New()
	start, end := validRange()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), companyID, uuid.New(), CreateAllocationInput{
			ItemID: itemID, StartDate: start, EndDate: end,
		}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	count, err := svc.PendingItemCount(context.Background(), companyID)
	if err != nil {
		t.Fatalf("PendingItemCount error: %v", err)
	}
	if count != 1 {
		t.Fatalf("three pending claims on one item should count once, got %d", count)
	}
}
