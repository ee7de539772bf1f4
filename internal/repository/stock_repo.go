package repository

import (
	"errors"

	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	// FindForUpdate locks the (outlet, product) row inside the caller's DB
	// transaction. Returns (nil, nil) when no row exists yet.
	FindForUpdate(tx *gorm.DB, outletID, productID uuid.UUID) (*model.StockEntry, error)
	Create(tx *gorm.DB, entry *model.StockEntry) error
	UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error
	Save(tx *gorm.DB, entry *model.StockEntry) error
	Find(outletID, productID uuid.UUID) (*model.StockEntry, error)
	FindAll() ([]model.StockEntry, error)
	FindByOutlet(outletID uuid.UUID) ([]model.StockEntry, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) FindForUpdate(tx *gorm.DB, outletID, productID uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("outlet_id = ? AND product_id = ?", outletID, productID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepo) Create(tx *gorm.DB, entry *model.StockEntry) error {
	return tx.Create(entry).Error
}

func (r *stockRepo) UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error {
	return tx.Model(&model.StockEntry{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *stockRepo) Save(tx *gorm.DB, entry *model.StockEntry) error {
	return tx.Save(entry).Error
}

func (r *stockRepo) Find(outletID, productID uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := r.db.Where("outlet_id = ? AND product_id = ?", outletID, productID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepo) FindAll() ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.Preload("Product.Brand").Preload("Product.Category").Preload("Outlet").Find(&entries).Error
	return entries, err
}

func (r *stockRepo) FindByOutlet(outletID uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.Preload("Product.Brand").Preload("Product.Category").
		Where("outlet_id = ?", outletID).Find(&entries).Error
	return entries, err
}
