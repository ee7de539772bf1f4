// Package access resolves a user's role and outlet binding into a capability
// set once per request, instead of re-deriving the role at every call site.
// Client-supplied outlet context is untrusted; every mutating service call
// re-checks against these capabilities server-side.
package access

import (
	"github.com/google/uuid"

	"carproban-backend/internal/model"
)

// Capabilities is the resolved permission set of the acting user.
type Capabilities struct {
	UserID   uuid.UUID
	Role     string
	OutletID *uuid.UUID // nil for super admins

	// Operational actions are outlet-level: a super admin observes
	// transfers and sales but never performs them.
	CanCreateSale       bool
	CanCreateTransfer   bool
	CanManageMasterData bool
}

// Resolve builds the capability set for a role + outlet binding.
func Resolve(userID uuid.UUID, role string, outletID *uuid.UUID) Capabilities {
	caps := Capabilities{
		UserID:   userID,
		Role:     role,
		OutletID: outletID,
	}
	switch role {
	case model.RoleSuperAdmin:
		caps.CanManageMasterData = true
	case model.RoleOutletAdmin:
		caps.CanCreateSale = outletID != nil
		caps.CanCreateTransfer = outletID != nil
	}
	return caps
}

// IsSuperAdmin reports whether the user holds the cross-outlet oversight role.
func (c Capabilities) IsSuperAdmin() bool {
	return c.Role == model.RoleSuperAdmin
}

// BoundTo reports whether the user is the outlet admin of the given outlet.
func (c Capabilities) BoundTo(outletID uuid.UUID) bool {
	return c.Role == model.RoleOutletAdmin && c.OutletID != nil && *c.OutletID == outletID
}

// CanSeeOutlet reports read access: super admins see every outlet, outlet
// admins only their own.
func (c Capabilities) CanSeeOutlet(outletID uuid.UUID) bool {
	return c.IsSuperAdmin() || c.BoundTo(outletID)
}

// CanActOnTransfer reports whether the user may drive any transition of a
// transfer between the two outlets. Which side may drive which edge is
// enforced per-transition by the transfer service.
func (c Capabilities) CanActOnTransfer(fromOutletID, toOutletID uuid.UUID) bool {
	return c.BoundTo(fromOutletID) || c.BoundTo(toOutletID)
}
