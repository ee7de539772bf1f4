package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carproban-backend/internal/access"
	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/internal/ws"
	"carproban-backend/pkg/validator"
)

// TransferService drives the inter-outlet transfer state machine.
//
// Stock moves exactly twice in a transfer's life: the source outlet is
// debited when the transfer is created (goods physically leave the shelf) and
// the destination is credited when it is completed (goods physically arrive).
// While pending or accepted, the in-transit quantity exists at neither
// outlet. Cancelling a pending transfer restores the source debit.
type TransferService interface {
	Create(req *CreateTransferRequest, actor access.Capabilities) (*model.Transfer, error)
	Transition(id uuid.UUID, target model.TransferStatus, actor access.Capabilities) (*model.Transfer, error)
	GetByID(id uuid.UUID, actor access.Capabilities) (*model.Transfer, error)
	List(actor access.Capabilities) ([]model.Transfer, error)
}

type CreateTransferRequest struct {
	FromOutletID uuid.UUID             `json:"from_outlet_id" validate:"uuid_required"`
	ToOutletID   uuid.UUID             `json:"to_outlet_id" validate:"uuid_required"`
	Date         time.Time             `json:"date"`
	Note         string                `json:"note"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

type TransferItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type transferService struct {
	transferRepo repository.TransferRepository
	outletRepo   repository.OutletRepository
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	seqRepo      repository.SequenceRepository
	stock        StockService
	db           *gorm.DB
	events       *Events
}

func NewTransferService(
	transferRepo repository.TransferRepository,
	outletRepo repository.OutletRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	seqRepo repository.SequenceRepository,
	stock StockService,
	db *gorm.DB,
	events *Events,
) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		outletRepo:   outletRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		seqRepo:      seqRepo,
		stock:        stock,
		db:           db,
		events:       events,
	}
}

func (s *transferService) Create(req *CreateTransferRequest, actor access.Capabilities) (*model.Transfer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}
	if req.FromOutletID == req.ToOutletID {
		return nil, apperr.Validation("source and destination outlet must differ")
	}
	// Transfers are operational, outlet-level actions: only the source
	// outlet's admin may initiate one. Super admins observe, never mutate.
	if !actor.CanCreateTransfer || !actor.BoundTo(req.FromOutletID) {
		return nil, apperr.Authorization("only an admin of the source outlet may create a transfer")
	}

	if _, err := s.outletRepo.FindByID(req.FromOutletID); err != nil {
		return nil, apperr.NotFound("outlet", req.FromOutletID.String())
	}
	if _, err := s.outletRepo.FindByID(req.ToOutletID); err != nil {
		return nil, apperr.NotFound("outlet", req.ToOutletID.String())
	}
	for _, item := range req.Items {
		if _, err := s.productRepo.FindByID(item.ProductID); err != nil {
			return nil, apperr.NotFound("product", item.ProductID.String())
		}
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	var created *model.Transfer
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			number, err := s.seqRepo.NextNumber(tx, model.DocKindTransfer, time.Now().Year())
			if err != nil {
				return err
			}

			// The single point where source stock leaves the ledger. Any
			// short line aborts the whole creation: no header, no partial
			// deduction.
			for _, item := range req.Items {
				if _, err := s.stock.Adjust(tx, req.FromOutletID, item.ProductID, -item.Quantity); err != nil {
					return err
				}
			}

			transfer := &model.Transfer{
				Number:       number,
				FromOutletID: req.FromOutletID,
				ToOutletID:   req.ToOutletID,
				Date:         date,
				Note:         req.Note,
				Status:       model.TransferPending,
				SenderUserID: actor.UserID,
			}
			transfer.CreatedBy = actor.UserID.String()
			transfer.UpdatedBy = actor.UserID.String()
			for _, item := range req.Items {
				transfer.Items = append(transfer.Items, model.TransferItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
			}
			if err := s.transferRepo.Create(tx, transfer); err != nil {
				return err
			}
			created = transfer
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"number": created.Number,
		"from":   created.FromOutletID,
		"to":     created.ToOutletID,
	}).Info("transfer created")
	s.events.Publish(ws.EventTransferUpdate, created, created.FromOutletID, created.ToOutletID)

	return s.transferRepo.FindByID(created.ID)
}

func (s *transferService) Transition(id uuid.UUID, target model.TransferStatus, actor access.Capabilities) (*model.Transfer, error) {
	var mutate func(tx *gorm.DB, transfer *model.Transfer) error

	switch target {
	case model.TransferAccepted:
		mutate = s.accept(actor)
	case model.TransferCompleted:
		mutate = s.complete(actor)
	case model.TransferCancelled:
		mutate = s.cancel(actor)
	default:
		return nil, apperr.Validation("unknown target status %q", target)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		transfer, err := s.transferRepo.FindByIDForUpdate(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("transfer", id.String())
		}
		if err != nil {
			return err
		}

		if !transfer.Status.CanTransitionTo(target) {
			return &apperr.StateTransitionError{From: string(transfer.Status), To: string(target)}
		}
		if err := mutate(tx, transfer); err != nil {
			return err
		}
		transfer.Status = target
		transfer.UpdatedBy = actor.UserID.String()
		return s.transferRepo.Save(tx, transfer)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.transferRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"number": updated.Number, "status": updated.Status}).Info("transfer transitioned")
	s.events.Publish(ws.EventTransferUpdate, updated, updated.FromOutletID, updated.ToOutletID)
	return updated, nil
}

// accept acknowledges the inbound shipment. No stock moves here.
func (s *transferService) accept(actor access.Capabilities) func(tx *gorm.DB, transfer *model.Transfer) error {
	return func(tx *gorm.DB, transfer *model.Transfer) error {
		if !actor.BoundTo(transfer.ToOutletID) {
			return apperr.Authorization("only an admin of the destination outlet may accept a transfer")
		}
		now := time.Now()
		receiverID := actor.UserID
		transfer.ReceiverUserID = &receiverID
		transfer.AcceptedAt = &now
		return nil
	}
}

// complete credits the destination ledger, creating destination rows with the
// source row's prices at this moment when they do not exist yet.
func (s *transferService) complete(actor access.Capabilities) func(tx *gorm.DB, transfer *model.Transfer) error {
	return func(tx *gorm.DB, transfer *model.Transfer) error {
		if !actor.BoundTo(transfer.ToOutletID) {
			return apperr.Authorization("only an admin of the destination outlet may complete a transfer")
		}
		now := time.Now()
		for _, item := range transfer.Items {
			cost, sell := decimal.Zero, decimal.Zero
			source, err := s.stockRepo.FindForUpdate(tx, transfer.FromOutletID, item.ProductID)
			if err != nil {
				return err
			}
			if source != nil {
				cost, sell = source.CostPrice, source.SellPrice
			}
			if _, err := s.stock.Receive(tx, transfer.ToOutletID, item.ProductID, item.Quantity, cost, sell); err != nil {
				return err
			}
		}
		transfer.CompletedAt = &now
		return nil
	}
}

// cancel reverses the creation-time deduction, restoring source stock to its
// exact pre-create value.
func (s *transferService) cancel(actor access.Capabilities) func(tx *gorm.DB, transfer *model.Transfer) error {
	return func(tx *gorm.DB, transfer *model.Transfer) error {
		if !actor.BoundTo(transfer.FromOutletID) {
			return apperr.Authorization("only an admin of the source outlet may cancel a transfer")
		}
		now := time.Now()
		for _, item := range transfer.Items {
			if _, err := s.stock.Adjust(tx, transfer.FromOutletID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		transfer.CancelledAt = &now
		return nil
	}
}

func (s *transferService) GetByID(id uuid.UUID, actor access.Capabilities) (*model.Transfer, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("transfer", id.String())
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperAdmin() && !actor.CanActOnTransfer(transfer.FromOutletID, transfer.ToOutletID) {
		return nil, apperr.Authorization("transfer belongs to other outlets")
	}
	return transfer, nil
}

func (s *transferService) List(actor access.Capabilities) ([]model.Transfer, error) {
	if actor.IsSuperAdmin() {
		return s.transferRepo.FindAll(nil)
	}
	return s.transferRepo.FindAll(actor.OutletID)
}
