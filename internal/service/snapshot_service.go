package service

import (
	"context"

	"github.com/google/uuid"

	"carproban-backend/internal/access"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/pkg/cache"
)

// SnapshotService builds the client hydration payload: the bulk read the UI
// loads once at startup. It is scoped server-side to what the caller may see
// and cached per scope; mutations invalidate through Events, and clients are
// expected to follow websocket events instead of re-pulling wholesale.
type SnapshotService interface {
	InitialData(ctx context.Context, actor access.Capabilities) (*InitialData, error)
}

type InitialData struct {
	Outlets      []model.Outlet      `json:"outlets"`
	Brands       []model.Brand       `json:"brands"`
	Categories   []model.Category    `json:"categories"`
	Products     []model.Product     `json:"products"`
	Stocks       []model.StockEntry  `json:"stocks"`
	Transfers    []model.Transfer    `json:"transfers"`
	Transactions []model.Transaction `json:"transactions"`
	Receivables  []model.Receivable  `json:"receivables"`
	Customers    []model.Customer    `json:"customers"`
}

type snapshotService struct {
	outletRepo   repository.OutletRepository
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	transferRepo repository.TransferRepository
	trxRepo      repository.TransactionRepository
	customerRepo repository.CustomerRepository
	cache        *cache.Cache
}

func NewSnapshotService(
	outletRepo repository.OutletRepository,
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	trxRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
	c *cache.Cache,
) SnapshotService {
	return &snapshotService{
		outletRepo:   outletRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		transferRepo: transferRepo,
		trxRepo:      trxRepo,
		customerRepo: customerRepo,
		cache:        c,
	}
}

func (s *snapshotService) InitialData(ctx context.Context, actor access.Capabilities) (*InitialData, error) {
	scope := "all"
	var outletID *uuid.UUID
	if !actor.IsSuperAdmin() {
		outletID = actor.OutletID
		if outletID != nil {
			scope = outletID.String()
		}
	}
	key := initialDataCacheKeyPrefix + scope

	var data InitialData
	if s.cache.GetJSON(ctx, key, &data) {
		return &data, nil
	}

	var err error
	if data.Outlets, err = s.outletRepo.FindAll(); err != nil {
		return nil, err
	}
	if data.Brands, err = s.brandRepo.FindAll(); err != nil {
		return nil, err
	}
	if data.Categories, err = s.categoryRepo.FindAll(); err != nil {
		return nil, err
	}
	if data.Products, err = s.productRepo.FindAll(); err != nil {
		return nil, err
	}

	if outletID == nil {
		data.Stocks, err = s.stockRepo.FindAll()
	} else {
		data.Stocks, err = s.stockRepo.FindByOutlet(*outletID)
	}
	if err != nil {
		return nil, err
	}

	if data.Transfers, err = s.transferRepo.FindAll(outletID); err != nil {
		return nil, err
	}
	if data.Transactions, err = s.trxRepo.FindAll(outletID); err != nil {
		return nil, err
	}
	if data.Customers, err = s.customerRepo.FindAll(outletID); err != nil {
		return nil, err
	}

	open, err := s.trxRepo.FindOpenReceivables(outletID)
	if err != nil {
		return nil, err
	}
	data.Receivables = make([]model.Receivable, 0, len(open))
	for i := range open {
		data.Receivables = append(data.Receivables, open[i].ToReceivable())
	}

	s.cache.SetJSON(ctx, key, &data)
	return &data, nil
}
