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
)

// ReceivableService manages piutang: transactions with an outstanding
// balance. Settlement is all-or-nothing: one payment of exactly the
// remaining amount, recorded as cash.
type ReceivableService interface {
	Settle(transactionID uuid.UUID, actor access.Capabilities) (*model.Receivable, error)
	ListOpen(actor access.Capabilities) ([]model.Receivable, error)
}

type receivableService struct {
	transactionRepo repository.TransactionRepository
	db              *gorm.DB
	events          *Events
}

func NewReceivableService(transactionRepo repository.TransactionRepository, db *gorm.DB, events *Events) ReceivableService {
	return &receivableService{
		transactionRepo: transactionRepo,
		db:              db,
		events:          events,
	}
}

func (s *receivableService) Settle(transactionID uuid.UUID, actor access.Capabilities) (*model.Receivable, error) {
	var settled model.Receivable

	err := s.db.Transaction(func(tx *gorm.DB) error {
		trx, err := s.transactionRepo.FindByIDForUpdate(tx, transactionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("receivable", transactionID.String())
		}
		if err != nil {
			return err
		}

		if !actor.BoundTo(trx.OutletID) {
			return apperr.Authorization("only an admin of the outlet may settle its receivable")
		}
		if trx.Status != model.TransactionCompleted {
			return apperr.Validation("cancelled transactions carry no receivable")
		}
		if !trx.Remaining.IsPositive() {
			return apperr.Conflict("receivable %s is already settled", trx.Invoice)
		}

		now := time.Now()
		payment := model.TransactionPayment{
			TransactionID: trx.ID,
			Method:        model.PayCash,
			Amount:        trx.Remaining,
			PaidAt:        now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		trx.AmountPaid = trx.Total
		trx.Remaining = decimal.Zero
		trx.PaymentStatus = model.PaymentPaid
		trx.SettledAt = &now
		trx.UpdatedBy = actor.UserID.String()
		if err := tx.Save(trx).Error; err != nil {
			return err
		}

		settled = trx.ToReceivable()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("invoice", settled.Invoice).Info("receivable settled in full")
	s.events.Publish(ws.EventReceivableSettled, settled, settled.OutletID)
	return &settled, nil
}

func (s *receivableService) ListOpen(actor access.Capabilities) ([]model.Receivable, error) {
	var outletID *uuid.UUID
	if !actor.IsSuperAdmin() {
		outletID = actor.OutletID
	}
	transactions, err := s.transactionRepo.FindOpenReceivables(outletID)
	if err != nil {
		return nil, err
	}
	receivables := make([]model.Receivable, 0, len(transactions))
	for i := range transactions {
		receivables = append(receivables, transactions[i].ToReceivable())
	}
	return receivables, nil
}
