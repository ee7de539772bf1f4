package repository

import (
	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BrandRepository and CategoryRepository back the simple master-data CRUD.

type BrandRepository interface {
	Create(brand *model.Brand) error
	FindAll() ([]model.Brand, error)
	FindByID(id uuid.UUID) (*model.Brand, error)
	Delete(id uuid.UUID, deletedBy string) error
}

type brandRepo struct {
	db *gorm.DB
}

func NewBrandRepo(db *gorm.DB) BrandRepository {
	return &brandRepo{db}
}

func (r *brandRepo) Create(brand *model.Brand) error {
	return r.db.Create(brand).Error
}

func (r *brandRepo) FindAll() ([]model.Brand, error) {
	var brands []model.Brand
	err := r.db.Order("name ASC").Find(&brands).Error
	return brands, err
}

func (r *brandRepo) FindByID(id uuid.UUID) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Brand{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Brand{}, "id = ?", id).Error
	})
}

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindByID(id uuid.UUID) (*model.Category, error)
	Delete(id uuid.UUID, deletedBy string) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepo) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Category{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, "id = ?", id).Error
	})
}
