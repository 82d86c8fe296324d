package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/elizabethadegbaju/crystalims/internal/inventory"
	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemStore interface {
	WithTx(tx *gorm.DB) inventory.Repository
	GetByID(ctx context.Context, companyID, itemID uuid.UUID) (*models.Item, error)
	AdjustAvailable(ctx context.Context, itemID uuid.UUID, delta int) (bool, error)
}

type notifier interface {
	NotifySystem(ctx context.Context, toUserID uuid.UUID, text string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the item request lifecycle: pending claims, manager
// resolution with stock movement, and returns for returnable items.
type Service interface {
	Create(ctx context.Context, companyID, userID, itemID uuid.UUID) (*models.ItemRequest, error)
	Cancel(ctx context.Context, companyID, requestID, actorID uuid.UUID) (*models.ItemRequest, error)
	Fulfill(ctx context.Context, companyID, requestID, approverID uuid.UUID) (*models.ItemRequest, error)
	MarkReturned(ctx context.Context, companyID, requestID, actorID uuid.UUID, actorManages bool) (*models.ItemReturn, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.ItemRequest, error)
	ListCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemRequest, error)
	PendingCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	items  itemStore
	notify notifier
	tx     txRunner
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires a request service with its repository, the item store, a
// notifier for system mail, and a transaction runner.
func NewService(repo Repository, items itemStore, notify notifier, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item store required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, items: items, notify: notify, tx: tx, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, companyID, userID, itemID uuid.UUID) (*models.ItemRequest, error) {
	if companyID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("company and user ids are required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if _, err := s.items.GetByID(ctx, companyID, itemID); err != nil {
		return nil, pkgdb.AsLookupError(err, "item")
	}

	request := &models.ItemRequest{
		ItemID: itemID,
		UserID: userID,
		Status: enums.RequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Cancel lets the requester withdraw a pending request.
func (s *service) Cancel(ctx context.Context, companyID, requestID, actorID uuid.UUID) (*models.ItemRequest, error) {
	request, err := s.repo.GetInCompany(ctx, companyID, requestID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "request")
	}
	if request.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester may cancel")
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
	}

	ok, err := s.repo.ResolveIfPending(ctx, requestID, enums.RequestStatusCancelled, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
	}
	request.Status = enums.RequestStatusCancelled
	return request, nil
}

// Fulfill resolves a pending request. With stock on hand the request is
// fulfilled, one unit is taken, and returnable items get a return record;
// without stock the request lands in stock_out. Either way the requester is
// notified and the resolution settles exactly once.
func (s *service) Fulfill(ctx context.Context, companyID, requestID, approverID uuid.UUID) (*models.ItemRequest, error) {
	request, err := s.repo.GetInCompany(ctx, companyID, requestID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "request")
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
	}
	item, err := s.items.GetByID(ctx, companyID, request.ItemID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "item")
	}

	var outcome enums.RequestStatus
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items := s.items.WithTx(tx)

		taken, err := items.AdjustAvailable(ctx, request.ItemID, -1)
		if err != nil {
			return err
		}
		if !taken {
			outcome = enums.RequestStatusStockOut
			ok, err := repo.ResolveIfPending(ctx, requestID, enums.RequestStatusStockOut, &approverID, nil)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
			}
			return nil
		}

		outcome = enums.RequestStatusFulfilled
		now := s.now()
		ok, err := repo.ResolveIfPending(ctx, requestID, enums.RequestStatusFulfilled, &approverID, &now)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
		}
		if item.Returnable {
			if err := repo.CreateReturn(ctx, &models.ItemReturn{RequestID: requestID}); err != nil {
				return err
			}
		}
		request.FulfilledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	request.Status = outcome
	request.ApproverUserID = &approverID

	// The resolution is already committed; a lost alert must not unwind it.
	text := fmt.Sprintf("Your request for %s has been fulfilled.", item.SKU)
	if outcome == enums.RequestStatusStockOut {
		text = fmt.Sprintf("Your request for %s could not be fulfilled: out of stock.", item.SKU)
	}
	if err := s.notify.NotifySystem(ctx, request.UserID, text); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "request_id", requestID.String()), "request resolution alert failed")
	}
	return request, nil
}

// MarkReturned records the give-back of a fulfilled, returnable request and
// puts the unit back into stock. The conditional update keeps a double
// return from inflating the counter.
func (s *service) MarkReturned(ctx context.Context, companyID, requestID, actorID uuid.UUID, actorManages bool) (*models.ItemReturn, error) {
	request, err := s.repo.GetInCompany(ctx, companyID, requestID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "request")
	}
	if request.UserID != actorID && !actorManages {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester or a manager may record a return")
	}
	if request.Status != enums.RequestStatusFulfilled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only fulfilled requests can be returned")
	}
	ret, err := s.repo.GetReturnByRequest(ctx, requestID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "return")
	}
	if ret.IsReturned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return already recorded")
	}

	at := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).MarkReturned(ctx, requestID, at)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "return already recorded")
		}
		restored, err := s.items.WithTx(tx).AdjustAvailable(ctx, request.ItemID, 1)
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("restoring stock for item %s", request.ItemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ret.IsReturned = true
	ret.ReturnedAt = &at
	return ret, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.ItemRequest, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemRequest, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) PendingCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountPending(ctx, companyID)
}
