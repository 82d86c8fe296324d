package allocations

import (
	"context"
	"fmt"
	"time"

	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// StatusOf derives the display status of an allocation. An undecided
// allocation is pending; a decided one is approved or not approved.
func StatusOf(allocation *models.Allocation) enums.AllocationStatus {
	switch {
	case allocation.ApproverUserID == nil:
		return enums.AllocationStatusPending
	case allocation.Approved:
		return enums.AllocationStatusApproved
	default:
		return enums.AllocationStatusNotApproved
	}
}

// CreateAllocationInput carries the fields to claim an item for a date range.
type CreateAllocationInput struct {
	ItemID    uuid.UUID `json:"item_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// View is an allocation together with its derived status.
type View struct {
	models.Allocation
	Status enums.AllocationStatus `json:"status"`
}

type itemReader interface {
	ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error)
}

// Service manages the allocation lifecycle.
type Service interface {
	Create(ctx context.Context, companyID, userID uuid.UUID, input CreateAllocationInput) (*View, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]View, error)
	ListCompany(ctx context.Context, companyID uuid.UUID) ([]View, error)
	Decide(ctx context.Context, companyID, allocationID, approverID uuid.UUID, approve bool) (*View, error)
	CheckIn(ctx context.Context, companyID, allocationID, actorID uuid.UUID, actorManages bool) (*View, error)
	PendingItemCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	ApprovedCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	ActiveCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	MostRequested(ctx context.Context, companyID uuid.UUID, limit int) ([]ItemDemand, error)
}

type service struct {
	repo  Repository
	items itemReader
	now   func() time.Time
}

// NewService wires an allocation service with its repository and an item
// tenancy reader.
func NewService(repo Repository, items itemReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("allocation repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item reader required")
	}
	return &service{repo: repo, items: items, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, companyID, userID uuid.UUID, input CreateAllocationInput) (*View, error) {
	if companyID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("company and user ids are required")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	ok, err := s.items.ItemInCompany(ctx, companyID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	allocation := &models.Allocation{
		ItemID:    input.ItemID,
		UserID:    userID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.repo.Create(ctx, allocation); err != nil {
		return nil, err
	}
	return s.view(allocation), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]View, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	allocations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(allocations), nil
}

func (s *service) ListCompany(ctx context.Context, companyID uuid.UUID) ([]View, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	allocations, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.views(allocations), nil
}

// Decide records an approve/deny verdict. Only the first verdict lands; a
// second decision is a state conflict.
func (s *service) Decide(ctx context.Context, companyID, allocationID, approverID uuid.UUID, approve bool) (*View, error) {
	allocation, err := s.repo.GetInCompany(ctx, companyID, allocationID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "allocation")
	}
	if allocation.ApproverUserID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "allocation already decided")
	}

	decided, err := s.repo.Decide(ctx, allocationID, approverID, approve)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "allocation already decided")
	}

	allocation.Approved = approve
	allocation.ApproverUserID = &approverID
	return s.view(allocation), nil
}

// CheckIn marks an approved allocation as returned. The owner or any manager
// may check in.
func (s *service) CheckIn(ctx context.Context, companyID, allocationID, actorID uuid.UUID, actorManages bool) (*View, error) {
	allocation, err := s.repo.GetInCompany(ctx, companyID, allocationID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "allocation")
	}
	if allocation.UserID != actorID && !actorManages {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the holder or a manager may check in")
	}
	if StatusOf(allocation) != enums.AllocationStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only approved allocations can be checked in")
	}
	if allocation.CheckedIn {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "allocation already checked in")
	}

	checked, err := s.repo.MarkCheckedIn(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if !checked {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "allocation already checked in")
	}

	allocation.CheckedIn = true
	return s.view(allocation), nil
}

func (s *service) PendingItemCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountPendingItems(ctx, companyID)
}

func (s *service) ApprovedCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountApproved(ctx, companyID)
}

// ActiveCount counts allocations currently out in the field: approved, not
// checked in, with a start date in the past.
func (s *service) ActiveCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountActive(ctx, companyID, s.now())
}

// MostRequested returns the items with the most claims, busiest first.
func (s *service) MostRequested(ctx context.Context, companyID uuid.UUID, limit int) ([]ItemDemand, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if limit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must be positive")
	}
	return s.repo.MostRequestedItems(ctx, companyID, limit)
}

func (s *service) view(allocation *models.Allocation) *View {
	return &View{Allocation: *allocation, Status: StatusOf(allocation)}
}

func (s *service) views(allocations []models.Allocation) []View {
	out := make([]View, 0, len(allocations))
	for i := range allocations {
		out = append(out, *s.view(&allocations[i]))
	}
	return out
}
