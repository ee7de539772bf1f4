package repository

import (
	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	FindAll(outletID *uuid.UUID) ([]model.Transaction, error)
	FindOpenReceivables(outletID *uuid.UUID) ([]model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var trx model.Transaction
	err := r.db.
		Preload("Items.Product").
		Preload("Payments").
		Preload("Outlet").
		Preload("Customer").
		First(&trx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// FindByIDForUpdate locks the header row inside the caller's DB transaction.
// Items and payments are loaded separately so the lock stays on one table.
func (r *transactionRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var trx model.Transaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", id).Find(&trx.Items).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", id).Find(&trx.Payments).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *transactionRepo) FindAll(outletID *uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.
		Preload("Items.Product").
		Preload("Payments").
		Preload("Outlet").
		Order("created_at DESC")
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

// FindOpenReceivables returns completed transactions with an outstanding
// balance, the rows the piutang view is projected from.
func (r *transactionRepo) FindOpenReceivables(outletID *uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.
		Where("status = ? AND remaining > 0", model.TransactionCompleted).
		Order("date ASC")
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}
