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

// TransactionService posts sales. A sale touches the customer table, the
// transaction header/detail/payment tables and the stock ledger; all of it
// is applied in one DB transaction so a failed stock decrement leaves no
// orphan header behind.
type TransactionService interface {
	Create(req *CreateTransactionRequest, actor access.Capabilities) (*model.Transaction, error)
	// Cancel voids a sale: the row stays for audit with status cancelled and
	// every product-linked line's stock decrement is reversed.
	Cancel(id uuid.UUID, actor access.Capabilities) (*model.Transaction, error)
	GetByID(id uuid.UUID, actor access.Capabilities) (*model.Transaction, error)
	List(actor access.Capabilities) ([]model.Transaction, error)
}

type CreateTransactionRequest struct {
	OutletID uuid.UUID         `json:"outlet_id" validate:"uuid_required"`
	Date     time.Time         `json:"date"`
	Customer CustomerRequest   `json:"customer" validate:"required"`
	Vehicle  VehicleRequest    `json:"vehicle"`
	Items    []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount decimal.Decimal   `json:"discount"`
	Payments []PaymentRequest  `json:"payments" validate:"dive"`
}

type CustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

type VehicleRequest struct {
	Plate       string `json:"plate"`
	Description string `json:"description"`
}

// SaleItemRequest: ProductID nil means a service line (labor, balancing...)
// that never touches stock.
type SaleItemRequest struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
}

type PaymentRequest struct {
	Method model.PaymentMethod `json:"method" validate:"required,oneof=cash qris debit_credit receivable"`
	Amount decimal.Decimal     `json:"amount"`
}

// SaleTotals is the computed money summary of a sale payload.
type SaleTotals struct {
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Remaining  decimal.Decimal
}

// ComputeSaleTotals derives subtotal, total, amount paid and remaining from
// the raw payload. Only non-receivable payment entries count toward amount
// paid at creation; the receivable method marks an amount deliberately left
// outstanding. remaining must never be negative.
func ComputeSaleTotals(items []SaleItemRequest, discount decimal.Decimal, payments []PaymentRequest) (SaleTotals, error) {
	var t SaleTotals
	t.Subtotal = decimal.Zero

	for _, item := range items {
		if item.UnitPrice.IsNegative() {
			return t, apperr.Validation("unit price must not be negative (item %q)", item.Name)
		}
		t.Subtotal = t.Subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if discount.IsNegative() {
		return t, apperr.Validation("discount must not be negative")
	}
	if discount.GreaterThan(t.Subtotal) {
		return t, apperr.Validation("discount exceeds subtotal")
	}
	t.Total = t.Subtotal.Sub(discount)

	t.AmountPaid = decimal.Zero
	for _, p := range payments {
		if p.Amount.IsNegative() {
			return t, apperr.Validation("payment amount must not be negative")
		}
		if p.Method == model.PayReceivable {
			continue
		}
		t.AmountPaid = t.AmountPaid.Add(p.Amount)
	}

	t.Remaining = t.Total.Sub(t.AmountPaid)
	if t.Remaining.IsNegative() {
		return t, apperr.Validation("payments exceed the sale total")
	}
	return t, nil
}

type transactionService struct {
	transactionRepo repository.TransactionRepository
	customerRepo    repository.CustomerRepository
	productRepo     repository.ProductRepository
	outletRepo      repository.OutletRepository
	seqRepo         repository.SequenceRepository
	stock           StockService
	db              *gorm.DB
	events          *Events
}

func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	outletRepo repository.OutletRepository,
	seqRepo repository.SequenceRepository,
	stock StockService,
	db *gorm.DB,
	events *Events,
) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		customerRepo:    customerRepo,
		productRepo:     productRepo,
		outletRepo:      outletRepo,
		seqRepo:         seqRepo,
		stock:           stock,
		db:              db,
		events:          events,
	}
}

func (s *transactionService) Create(req *CreateTransactionRequest, actor access.Capabilities) (*model.Transaction, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}
	// Sales are outlet-level operational actions: super admins are excluded,
	// and an outlet admin only sells for their own outlet regardless of what
	// the payload claims.
	if !actor.CanCreateSale || !actor.BoundTo(req.OutletID) {
		return nil, apperr.Authorization("only an admin of the outlet may create a sale")
	}

	if _, err := s.outletRepo.FindByID(req.OutletID); err != nil {
		return nil, apperr.NotFound("outlet", req.OutletID.String())
	}
	for _, item := range req.Items {
		if item.ProductID == nil {
			continue
		}
		if _, err := s.productRepo.FindByID(*item.ProductID); err != nil {
			return nil, apperr.NotFound("product", item.ProductID.String())
		}
	}

	totals, err := ComputeSaleTotals(req.Items, req.Discount, req.Payments)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	var created *model.Transaction
	err = retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			invoice, err := s.seqRepo.NextNumber(tx, model.DocKindInvoice, time.Now().Year())
			if err != nil {
				return err
			}

			customer, err := s.upsertCustomer(tx, req, actor)
			if err != nil {
				return err
			}

			paymentStatus := model.PaymentPaid
			if totals.Remaining.IsPositive() {
				paymentStatus = model.PaymentUnpaid
			}

			trx := &model.Transaction{
				Invoice:       invoice,
				OutletID:      req.OutletID,
				Date:          date,
				CustomerID:    &customer.ID,
				CustomerName:  customer.Name,
				CustomerPhone: customer.Phone,
				PlateNumber:   req.Vehicle.Plate,
				VehicleDesc:   req.Vehicle.Description,
				Subtotal:      totals.Subtotal,
				Discount:      req.Discount,
				Total:         totals.Total,
				AmountPaid:    totals.AmountPaid,
				Remaining:     totals.Remaining,
				Status:        model.TransactionCompleted,
				PaymentStatus: paymentStatus,
			}
			trx.CreatedBy = actor.UserID.String()
			trx.UpdatedBy = actor.UserID.String()

			for _, item := range req.Items {
				trx.Items = append(trx.Items, model.TransactionItem{
					ProductID: item.ProductID,
					Name:      item.Name,
					UnitPrice: item.UnitPrice,
					Quantity:  item.Quantity,
				})
			}
			for _, p := range req.Payments {
				if p.Amount.IsZero() || p.Method == model.PayReceivable {
					continue
				}
				trx.Payments = append(trx.Payments, model.TransactionPayment{
					Method: p.Method,
					Amount: p.Amount,
					PaidAt: date,
				})
			}

			if err := tx.Create(trx).Error; err != nil {
				return err
			}

			// Decrement stock for every product-linked line through the same
			// insufficient-stock path as transfers; a short line aborts the
			// whole sale.
			for _, item := range req.Items {
				if item.ProductID == nil {
					continue
				}
				if _, err := s.stock.Adjust(tx, req.OutletID, *item.ProductID, -item.Quantity); err != nil {
					return err
				}
			}

			created = trx
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"invoice": created.Invoice,
		"outlet":  created.OutletID,
		"total":   created.Total,
	}).Info("transaction posted")
	s.events.Publish(ws.EventTransactionCreated, created, created.OutletID)

	return s.transactionRepo.FindByID(created.ID)
}

// upsertCustomer matches by (name, outlet). A match refreshes the phone when
// supplied; a miss creates the customer scoped to the outlet.
func (s *transactionService) upsertCustomer(tx *gorm.DB, req *CreateTransactionRequest, actor access.Capabilities) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByNameAndOutlet(tx, req.Customer.Name, req.OutletID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		if req.Customer.Phone != "" && req.Customer.Phone != customer.Phone {
			customer.Phone = req.Customer.Phone
			customer.UpdatedBy = actor.UserID.String()
			if err := s.customerRepo.Save(tx, customer); err != nil {
				return nil, err
			}
		}
		return customer, nil
	}

	customer = &model.Customer{
		Name:     req.Customer.Name,
		Phone:    req.Customer.Phone,
		OutletID: req.OutletID,
	}
	customer.CreatedBy = actor.UserID.String()
	customer.UpdatedBy = actor.UserID.String()
	if err := s.customerRepo.Create(tx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *transactionService) Cancel(id uuid.UUID, actor access.Capabilities) (*model.Transaction, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		trx, err := s.transactionRepo.FindByIDForUpdate(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("transaction", id.String())
		}
		if err != nil {
			return err
		}
		if !actor.BoundTo(trx.OutletID) {
			return apperr.Authorization("only an admin of the outlet may cancel its sale")
		}
		if trx.Status == model.TransactionCancelled {
			return &apperr.StateTransitionError{From: string(model.TransactionCancelled), To: string(model.TransactionCancelled)}
		}

		// Voided goods go back on the shelf.
		for _, item := range trx.Items {
			if item.ProductID == nil {
				continue
			}
			if _, err := s.stock.Adjust(tx, trx.OutletID, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		trx.Status = model.TransactionCancelled
		trx.UpdatedBy = actor.UserID.String()
		return tx.Save(trx).Error
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	logrus.WithField("invoice", cancelled.Invoice).Info("transaction cancelled, stock restored")
	s.events.Publish(ws.EventStockUpdate, cancelled, cancelled.OutletID)
	return cancelled, nil
}

func (s *transactionService) GetByID(id uuid.UUID, actor access.Capabilities) (*model.Transaction, error) {
	trx, err := s.transactionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("transaction", id.String())
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeOutlet(trx.OutletID) {
		return nil, apperr.Authorization("transaction belongs to another outlet")
	}
	return trx, nil
}

func (s *transactionService) List(actor access.Capabilities) ([]model.Transaction, error) {
	if actor.IsSuperAdmin() {
		return s.transactionRepo.FindAll(nil)
	}
	return s.transactionRepo.FindAll(actor.OutletID)
}
