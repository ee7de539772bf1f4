package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carproban-backend/internal/access"
	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/internal/ws"
	"carproban-backend/pkg/validator"
)

// StockService is the single write path to the stock ledger. Both workflows
// that move stock (transfers and sales) go through Adjust/Receive inside
// their own DB transaction, so the non-negative invariant holds under
// concurrent requests: the row is locked before the read-modify-write.
type StockService interface {
	GetQuantity(outletID, productID uuid.UUID) (int, error)

	// Adjust applies delta to the (outlet, product) quantity within the
	// caller's DB transaction. A delta that would drive the quantity negative
	// fails with InsufficientStockError; quantities are never clamped.
	Adjust(tx *gorm.DB, outletID, productID uuid.UUID, delta int) (*model.StockEntry, error)

	// Receive credits qty into the destination ledger row, creating it with
	// the given prices when absent. Existing prices are left untouched.
	Receive(tx *gorm.DB, outletID, productID uuid.UUID, qty int, costPrice, sellPrice decimal.Decimal) (*model.StockEntry, error)

	// Upsert sets price fields (and optionally quantity) for an outlet's
	// product row. Master-data path, super admin only.
	Upsert(req *UpsertStockRequest, actor access.Capabilities) (*model.StockEntry, error)

	ListAll() ([]model.StockEntry, error)
	ListByOutlet(outletID uuid.UUID) ([]model.StockEntry, error)
}

type UpsertStockRequest struct {
	OutletID  uuid.UUID       `json:"outlet_id" validate:"uuid_required"`
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Quantity  *int            `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}

type stockService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	outletRepo  repository.OutletRepository
	db          *gorm.DB
	events      *Events
}

func NewStockService(stockRepo repository.StockRepository, productRepo repository.ProductRepository, outletRepo repository.OutletRepository, db *gorm.DB, events *Events) StockService {
	return &stockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		outletRepo:  outletRepo,
		db:          db,
		events:      events,
	}
}

func (s *stockService) GetQuantity(outletID, productID uuid.UUID) (int, error) {
	entry, err := s.stockRepo.Find(outletID, productID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return entry.Quantity, nil
}

func (s *stockService) Adjust(tx *gorm.DB, outletID, productID uuid.UUID, delta int) (*model.StockEntry, error) {
	entry, err := s.stockRepo.FindForUpdate(tx, outletID, productID)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		if delta < 0 {
			return nil, &apperr.InsufficientStockError{
				ProductID: productID.String(),
				OutletID:  outletID.String(),
				Requested: -delta,
				Available: 0,
			}
		}
		entry = &model.StockEntry{
			OutletID:  outletID,
			ProductID: productID,
			Quantity:  delta,
			CostPrice: decimal.Zero,
			SellPrice: decimal.Zero,
		}
		if err := s.stockRepo.Create(tx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	}

	newQty := entry.Quantity + delta
	if newQty < 0 {
		return nil, &apperr.InsufficientStockError{
			ProductID: productID.String(),
			OutletID:  outletID.String(),
			Requested: -delta,
			Available: entry.Quantity,
		}
	}
	entry.Quantity = newQty
	if err := s.stockRepo.UpdateQuantity(tx, entry.ID, newQty); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) Receive(tx *gorm.DB, outletID, productID uuid.UUID, qty int, costPrice, sellPrice decimal.Decimal) (*model.StockEntry, error) {
	if qty < 0 {
		return nil, apperr.Validation("receive quantity must not be negative")
	}
	entry, err := s.stockRepo.FindForUpdate(tx, outletID, productID)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		entry = &model.StockEntry{
			OutletID:  outletID,
			ProductID: productID,
			Quantity:  qty,
			CostPrice: costPrice,
			SellPrice: sellPrice,
		}
		if err := s.stockRepo.Create(tx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	}

	entry.Quantity += qty
	if err := s.stockRepo.UpdateQuantity(tx, entry.ID, entry.Quantity); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) Upsert(req *UpsertStockRequest, actor access.Capabilities) (*model.StockEntry, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}
	if !actor.CanManageMasterData {
		return nil, apperr.Authorization("only a super admin may set stock prices")
	}
	if req.CostPrice.IsNegative() || req.SellPrice.IsNegative() {
		return nil, apperr.Validation("prices must not be negative")
	}
	if _, err := s.outletRepo.FindByID(req.OutletID); err != nil {
		return nil, apperr.NotFound("outlet", req.OutletID.String())
	}
	if _, err := s.productRepo.FindByID(req.ProductID); err != nil {
		return nil, apperr.NotFound("product", req.ProductID.String())
	}

	var result *model.StockEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.stockRepo.FindForUpdate(tx, req.OutletID, req.ProductID)
		if err != nil {
			return err
		}
		if entry == nil {
			entry = &model.StockEntry{
				OutletID:  req.OutletID,
				ProductID: req.ProductID,
			}
		}
		entry.CostPrice = req.CostPrice
		entry.SellPrice = req.SellPrice
		if req.Quantity != nil {
			entry.Quantity = *req.Quantity
		}
		entry.UpdatedBy = actor.UserID.String()
		if entry.CreatedBy == "" {
			entry.CreatedBy = actor.UserID.String()
		}
		if err := s.stockRepo.Save(tx, entry); err != nil {
			return fmt.Errorf("upsert stock entry: %w", err)
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ws.EventStockUpdate, result, req.OutletID)
	return result, nil
}

func (s *stockService) ListAll() ([]model.StockEntry, error) {
	return s.stockRepo.FindAll()
}

func (s *stockService) ListByOutlet(outletID uuid.UUID) ([]model.StockEntry, error) {
	return s.stockRepo.FindByOutlet(outletID)
}
