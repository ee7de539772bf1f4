package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEntry is the per-(outlet, product) quantity-on-hand record: the single
// source of truth for availability. Absence of a row means quantity 0 with no
// defined price. Quantity must never go negative; every decrement path checks
// availability under a row lock before writing.
type StockEntry struct {
	BaseModel
	OutletID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_outlet_product" json:"outlet_id" validate:"uuid_required"`
	Outlet    *Outlet   `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_outlet_product" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`

	Quantity  int             `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	CostPrice decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost_price"`
	SellPrice decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sell_price"`
}

func (StockEntry) TableName() string {
	return "stock_entries"
}
