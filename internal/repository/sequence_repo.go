package repository

import (
	"errors"

	"carproban-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// NextNumber bumps the per-(kind, year) counter under FOR UPDATE inside
	// the caller's DB transaction and returns the formatted document number.
	// Counting existing rows instead would race under concurrent creation.
	NextNumber(tx *gorm.DB, kind string, year int) (string, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

func (r *sequenceRepo) NextNumber(tx *gorm.DB, kind string, year int) (string, error) {
	var counter model.DocumentCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND year = ?", kind, year).
		First(&counter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = model.DocumentCounter{Kind: kind, Year: year, LastSeq: 1}
		// Two transactions may race to insert the first row of a year; the
		// loser hits the primary key and the caller's retry loop reruns.
		if err := tx.Create(&counter).Error; err != nil {
			return "", err
		}
		return model.FormatDocumentNumber(kind, year, counter.LastSeq), nil
	}
	if err != nil {
		return "", err
	}

	counter.LastSeq++
	if err := tx.Model(&model.DocumentCounter{}).
		Where("kind = ? AND year = ?", kind, year).
		Update("last_seq", counter.LastSeq).Error; err != nil {
		return "", err
	}
	return model.FormatDocumentNumber(kind, year, counter.LastSeq), nil
}
