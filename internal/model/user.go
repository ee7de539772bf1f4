package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role codes. There are exactly two: the super admin oversees all outlets and
// master data but never performs operational stock/sale actions; an outlet
// admin is bound to one outlet and runs its day-to-day sales and transfers.
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleOutletAdmin = "OUTLET_ADMIN"
)

// User represents an admin account.
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string     `gorm:"type:varchar(30);not null" json:"role" validate:"required,oneof=SUPER_ADMIN OUTLET_ADMIN"`
	OutletID    *uuid.UUID `gorm:"type:uuid;index" json:"outlet_id,omitempty"` // nil for super admins
	Outlet      *Outlet    `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // Single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data).
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role"`
	OutletID    *uuid.UUID `json:"outlet_id,omitempty"`
	Outlet      *Outlet    `json:"outlet,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		OutletID:    u.OutletID,
		Outlet:      u.Outlet,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
	}
}
