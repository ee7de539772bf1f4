package model

import "github.com/google/uuid"

// Customer is scoped per outlet: transaction posting upserts by
// (name, outlet_id), so the same name at two outlets is two records.
type Customer struct {
	BaseModel
	Name     string    `gorm:"type:varchar(255);not null;index:idx_customer_name_outlet" json:"name" validate:"required"`
	Phone    string    `gorm:"type:varchar(30)" json:"phone"`
	OutletID uuid.UUID `gorm:"type:uuid;not null;index:idx_customer_name_outlet" json:"outlet_id"`
	Outlet   *Outlet   `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`
}
