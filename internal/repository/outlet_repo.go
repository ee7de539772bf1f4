package repository

import (
	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutletRepository interface {
	Create(outlet *model.Outlet) error
	FindAll() ([]model.Outlet, error)
	FindByID(id uuid.UUID) (*model.Outlet, error)
	Update(outlet *model.Outlet) error
	Delete(id uuid.UUID, deletedBy string) error
	CountReferences(id uuid.UUID) (int64, error)
}

type outletRepo struct {
	db *gorm.DB
}

func NewOutletRepo(db *gorm.DB) OutletRepository {
	return &outletRepo{db}
}

func (r *outletRepo) Create(outlet *model.Outlet) error {
	return r.db.Create(outlet).Error
}

func (r *outletRepo) FindAll() ([]model.Outlet, error) {
	var outlets []model.Outlet
	err := r.db.Order("name ASC").Find(&outlets).Error
	return outlets, err
}

func (r *outletRepo) FindByID(id uuid.UUID) (*model.Outlet, error) {
	var outlet model.Outlet
	if err := r.db.First(&outlet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (r *outletRepo) Update(outlet *model.Outlet) error {
	return r.db.Save(outlet).Error
}

func (r *outletRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Outlet{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Outlet{}, "id = ?", id).Error
	})
}

// CountReferences totals the rows that still point at the outlet. An outlet
// with live users, stock, sales or transfers must not be deleted.
func (r *outletRepo) CountReferences(id uuid.UUID) (int64, error) {
	var total, count int64

	if err := r.db.Model(&model.User{}).Where("outlet_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := r.db.Model(&model.StockEntry{}).Where("outlet_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := r.db.Model(&model.Transaction{}).Where("outlet_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := r.db.Model(&model.Transfer{}).
		Where("from_outlet_id = ? OR to_outlet_id = ?", id, id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	return total, nil
}
