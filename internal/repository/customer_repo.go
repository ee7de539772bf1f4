package repository

import (
	"errors"

	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	// FindByNameAndOutlet matches the upsert key used during sale posting.
	FindByNameAndOutlet(tx *gorm.DB, name string, outletID uuid.UUID) (*model.Customer, error)
	Create(tx *gorm.DB, customer *model.Customer) error
	Save(tx *gorm.DB, customer *model.Customer) error
	FindAll(outletID *uuid.UUID) ([]model.Customer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) FindByNameAndOutlet(tx *gorm.DB, name string, outletID uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := tx.Where("name = ? AND outlet_id = ?", name, outletID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) Create(tx *gorm.DB, customer *model.Customer) error {
	return tx.Create(customer).Error
}

func (r *customerRepo) Save(tx *gorm.DB, customer *model.Customer) error {
	return tx.Save(customer).Error
}

func (r *customerRepo) FindAll(outletID *uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	q := r.db.Order("name ASC")
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	err := q.Find(&customers).Error
	return customers, err
}
