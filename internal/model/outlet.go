package model

// OutletStatus marks whether an outlet is still operating.
type OutletStatus string

const (
	OutletActive   OutletStatus = "active"
	OutletInactive OutletStatus = "inactive"
)

// Outlet is a physical workshop location. It is the tenancy boundary for
// stock, customers and most admin actions.
type Outlet struct {
	BaseModel
	Name    string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address string       `gorm:"type:text" json:"address"`
	Status  OutletStatus `gorm:"type:varchar(10);not null;default:active" json:"status" validate:"omitempty,oneof=active inactive"`
}
