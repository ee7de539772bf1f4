package model

import "github.com/google/uuid"

// Brand is a tire/part manufacturer label.
type Brand struct {
	BaseModel
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
}

// Category groups products (tires, oil, spare parts, services...).
type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
}

// Product identity is immutable; brand and category must pre-exist, they are
// never created implicitly from a product payload.
type Product struct {
	BaseModel
	Name       string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Size       string    `gorm:"type:varchar(100)" json:"size"` // size/code, e.g. 185/65 R15
	BrandID    uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_id" validate:"uuid_required"`
	Brand      *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty" validate:"-"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`

	// Per-outlet quantities and prices live in StockEntry rows
	Stocks []StockEntry `json:"stocks,omitempty" validate:"-"`
}
