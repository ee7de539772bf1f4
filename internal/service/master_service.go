package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carproban-backend/internal/access"
	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/internal/ws"
	"carproban-backend/pkg/validator"
)

// MasterService is the super-admin surface: outlets, brands, categories and
// products. Thin CRUD with referential guards; no stock or money moves here
// except the product-edit price upsert, which goes through StockService.
type MasterService interface {
	CreateOutlet(req *model.Outlet, actor access.Capabilities) error
	UpdateOutlet(id uuid.UUID, req *model.Outlet, actor access.Capabilities) (*model.Outlet, error)
	DeleteOutlet(id uuid.UUID, actor access.Capabilities) error
	ListOutlets() ([]model.Outlet, error)

	CreateBrand(req *model.Brand, actor access.Capabilities) error
	DeleteBrand(id uuid.UUID, actor access.Capabilities) error
	ListBrands() ([]model.Brand, error)

	CreateCategory(req *model.Category, actor access.Capabilities) error
	DeleteCategory(id uuid.UUID, actor access.Capabilities) error
	ListCategories() ([]model.Category, error)

	CreateProduct(req *model.Product, actor access.Capabilities) error
	UpdateProduct(id uuid.UUID, req *model.Product, actor access.Capabilities) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor access.Capabilities) error
	ListProducts() ([]model.Product, error)
}

type masterService struct {
	outletRepo   repository.OutletRepository
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	events       *Events
}

func NewMasterService(
	outletRepo repository.OutletRepository,
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	events *Events,
) MasterService {
	return &masterService{
		outletRepo:   outletRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		events:       events,
	}
}

func requireMasterData(actor access.Capabilities) error {
	if !actor.CanManageMasterData {
		return apperr.Authorization("master data is managed by super admins only")
	}
	return nil
}

func (s *masterService) CreateOutlet(req *model.Outlet, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", validator.FirstError(errs))
	}
	if req.Status == "" {
		req.Status = model.OutletActive
	}
	req.CreatedBy = actor.UserID.String()
	req.UpdatedBy = actor.UserID.String()
	if err := s.outletRepo.Create(req); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, req)
	return nil
}

func (s *masterService) UpdateOutlet(id uuid.UUID, req *model.Outlet, actor access.Capabilities) (*model.Outlet, error) {
	if err := requireMasterData(actor); err != nil {
		return nil, err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}
	existing, err := s.outletRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("outlet", id.String())
	}
	if err != nil {
		return nil, err
	}
	existing.Name = req.Name
	existing.Address = req.Address
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.UpdatedBy = actor.UserID.String()
	if err := s.outletRepo.Update(existing); err != nil {
		return nil, err
	}
	s.events.Publish(ws.EventMasterDataChanged, existing)
	return existing, nil
}

// DeleteOutlet refuses while users, stock, sales or transfers still point at
// the outlet.
func (s *masterService) DeleteOutlet(id uuid.UUID, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if _, err := s.outletRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("outlet", id.String())
	} else if err != nil {
		return err
	}
	refs, err := s.outletRepo.CountReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict("outlet is still referenced by %d records", refs)
	}
	if err := s.outletRepo.Delete(id, actor.UserID.String()); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, nil)
	return nil
}

func (s *masterService) ListOutlets() ([]model.Outlet, error) {
	return s.outletRepo.FindAll()
}

func (s *masterService) CreateBrand(req *model.Brand, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", validator.FirstError(errs))
	}
	req.CreatedBy = actor.UserID.String()
	req.UpdatedBy = actor.UserID.String()
	if err := s.brandRepo.Create(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("brand %q already exists", req.Name)
		}
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, req)
	return nil
}

func (s *masterService) DeleteBrand(id uuid.UUID, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if _, err := s.brandRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("brand", id.String())
	} else if err != nil {
		return err
	}
	count, err := s.productRepo.CountByBrand(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("brand is still referenced by %d products", count)
	}
	if err := s.brandRepo.Delete(id, actor.UserID.String()); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, nil)
	return nil
}

func (s *masterService) ListBrands() ([]model.Brand, error) {
	return s.brandRepo.FindAll()
}

func (s *masterService) CreateCategory(req *model.Category, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", validator.FirstError(errs))
	}
	req.CreatedBy = actor.UserID.String()
	req.UpdatedBy = actor.UserID.String()
	if err := s.categoryRepo.Create(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("category %q already exists", req.Name)
		}
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, req)
	return nil
}

func (s *masterService) DeleteCategory(id uuid.UUID, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if _, err := s.categoryRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("category", id.String())
	} else if err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("category is still referenced by %d products", count)
	}
	if err := s.categoryRepo.Delete(id, actor.UserID.String()); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, nil)
	return nil
}

func (s *masterService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

// CreateProduct requires brand and category to pre-exist; they are never
// created implicitly.
func (s *masterService) CreateProduct(req *model.Product, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", validator.FirstError(errs))
	}
	if _, err := s.brandRepo.FindByID(req.BrandID); err != nil {
		return apperr.NotFound("brand", req.BrandID.String())
	}
	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		return apperr.NotFound("category", req.CategoryID.String())
	}
	req.CreatedBy = actor.UserID.String()
	req.UpdatedBy = actor.UserID.String()
	if err := s.productRepo.Create(req); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, req)
	return nil
}

func (s *masterService) UpdateProduct(id uuid.UUID, req *model.Product, actor access.Capabilities) (*model.Product, error) {
	if err := requireMasterData(actor); err != nil {
		return nil, err
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}
	existing, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product", id.String())
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.brandRepo.FindByID(req.BrandID); err != nil {
		return nil, apperr.NotFound("brand", req.BrandID.String())
	}
	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		return nil, apperr.NotFound("category", req.CategoryID.String())
	}
	existing.Name = req.Name
	existing.Size = req.Size
	existing.BrandID = req.BrandID
	existing.CategoryID = req.CategoryID
	existing.UpdatedBy = actor.UserID.String()
	existing.Brand, existing.Category, existing.Stocks = nil, nil, nil
	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	s.events.Publish(ws.EventMasterDataChanged, existing)
	return s.productRepo.FindByID(id)
}

func (s *masterService) DeleteProduct(id uuid.UUID, actor access.Capabilities) error {
	if err := requireMasterData(actor); err != nil {
		return err
	}
	if _, err := s.productRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("product", id.String())
	} else if err != nil {
		return err
	}
	if err := s.productRepo.Delete(id, actor.UserID.String()); err != nil {
		return err
	}
	s.events.Publish(ws.EventMasterDataChanged, nil)
	return nil
}

func (s *masterService) ListProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
