package access

import (
	"testing"

	"github.com/google/uuid"

	"carproban-backend/internal/model"
)

func TestResolveSuperAdmin(t *testing.T) {
	userID := uuid.New()
	caps := Resolve(userID, model.RoleSuperAdmin, nil)

	if !caps.IsSuperAdmin() {
		t.Fatal("expected super admin")
	}
	if !caps.CanManageMasterData {
		t.Error("super admin must manage master data")
	}
	if caps.CanCreateSale || caps.CanCreateTransfer {
		t.Error("super admin must not hold operational capabilities")
	}
	if !caps.CanSeeOutlet(uuid.New()) {
		t.Error("super admin must see every outlet")
	}
}

func TestResolveOutletAdmin(t *testing.T) {
	outletID := uuid.New()
	otherID := uuid.New()
	caps := Resolve(uuid.New(), model.RoleOutletAdmin, &outletID)

	if caps.IsSuperAdmin() {
		t.Fatal("outlet admin resolved as super admin")
	}
	if !caps.CanCreateSale || !caps.CanCreateTransfer {
		t.Error("bound outlet admin must hold operational capabilities")
	}
	if caps.CanManageMasterData {
		t.Error("outlet admin must not manage master data")
	}
	if !caps.BoundTo(outletID) {
		t.Error("expected binding to own outlet")
	}
	if caps.BoundTo(otherID) {
		t.Error("must not be bound to a foreign outlet")
	}
	if !caps.CanSeeOutlet(outletID) || caps.CanSeeOutlet(otherID) {
		t.Error("visibility must be limited to the bound outlet")
	}
}

func TestResolveOutletAdminWithoutOutlet(t *testing.T) {
	caps := Resolve(uuid.New(), model.RoleOutletAdmin, nil)

	if caps.CanCreateSale || caps.CanCreateTransfer {
		t.Error("unbound outlet admin must not hold operational capabilities")
	}
	if caps.BoundTo(uuid.New()) {
		t.Error("unbound admin cannot be bound to any outlet")
	}
}

func TestCanActOnTransfer(t *testing.T) {
	from := uuid.New()
	to := uuid.New()

	sender := Resolve(uuid.New(), model.RoleOutletAdmin, &from)
	receiver := Resolve(uuid.New(), model.RoleOutletAdmin, &to)
	outsiderOutlet := uuid.New()
	outsider := Resolve(uuid.New(), model.RoleOutletAdmin, &outsiderOutlet)
	super := Resolve(uuid.New(), model.RoleSuperAdmin, nil)

	if !sender.CanActOnTransfer(from, to) {
		t.Error("sender side must be able to act")
	}
	if !receiver.CanActOnTransfer(from, to) {
		t.Error("receiver side must be able to act")
	}
	if outsider.CanActOnTransfer(from, to) {
		t.Error("third outlet must not act on a foreign transfer")
	}
	if super.CanActOnTransfer(from, to) {
		t.Error("super admin observes transfers but never acts on them")
	}
}
