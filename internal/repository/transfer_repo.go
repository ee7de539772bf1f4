package repository

import (
	"carproban-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferRepository interface {
	Create(tx *gorm.DB, transfer *model.Transfer) error
	FindByID(id uuid.UUID) (*model.Transfer, error)
	// FindByIDForUpdate locks the header row so two concurrent transitions on
	// the same transfer serialize.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transfer, error)
	Save(tx *gorm.DB, transfer *model.Transfer) error
	FindAll(outletID *uuid.UUID) ([]model.Transfer, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(tx *gorm.DB, transfer *model.Transfer) error {
	return tx.Create(transfer).Error
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.Transfer, error) {
	var transfer model.Transfer
	err := r.db.
		Preload("Items.Product").
		Preload("FromOutlet").
		Preload("ToOutlet").
		Preload("SenderUser").
		Preload("ReceiverUser").
		First(&transfer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transfer, error) {
	var transfer model.Transfer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&transfer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("transfer_id = ?", id).Find(&transfer.Items).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) Save(tx *gorm.DB, transfer *model.Transfer) error {
	return tx.Save(transfer).Error
}

// FindAll lists transfers; outlet admins see only transfers where their
// outlet is a counterparty.
func (r *transferRepo) FindAll(outletID *uuid.UUID) ([]model.Transfer, error) {
	var transfers []model.Transfer
	q := r.db.
		Preload("Items.Product").
		Preload("FromOutlet").
		Preload("ToOutlet").
		Order("created_at DESC")
	if outletID != nil {
		q = q.Where("from_outlet_id = ? OR to_outlet_id = ?", *outletID, *outletID)
	}
	err := q.Find(&transfers).Error
	return transfers, err
}
