package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus is the canonical 4-state transfer enum.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferAccepted  TransferStatus = "accepted"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// transferTransitions holds the legal edges of the state machine:
// pending -> accepted -> completed, with pending -> cancelled as the only
// alternate edge. completed and cancelled are terminal.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferPending:  {TransferAccepted, TransferCancelled},
	TransferAccepted: {TransferCompleted},
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

// Transfer is a directed stock movement between two outlets. Source stock is
// deducted at creation (goods leave the shelf immediately); destination stock
// is credited only at completion, so in-transit quantity is counted at
// neither outlet.
type Transfer struct {
	BaseModel
	Number       string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"`
	FromOutletID uuid.UUID      `gorm:"type:uuid;not null;index" json:"from_outlet_id"`
	FromOutlet   *Outlet        `gorm:"foreignKey:FromOutletID" json:"from_outlet,omitempty"`
	ToOutletID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"to_outlet_id"`
	ToOutlet     *Outlet        `gorm:"foreignKey:ToOutletID" json:"to_outlet,omitempty"`
	Date         time.Time      `gorm:"not null" json:"date"`
	Note         string         `gorm:"type:text" json:"note"`
	Status       TransferStatus `gorm:"type:varchar(10);not null;default:pending" json:"status"`

	SenderUserID   uuid.UUID  `gorm:"type:uuid;not null" json:"sender_user_id"`
	SenderUser     *User      `gorm:"foreignKey:SenderUserID" json:"sender_user,omitempty"`
	ReceiverUserID *uuid.UUID `gorm:"type:uuid" json:"receiver_user_id,omitempty"` // set on accept
	ReceiverUser   *User      `gorm:"foreignKey:ReceiverUserID" json:"receiver_user,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Items []TransferItem `gorm:"foreignKey:TransferID" json:"items"`
}

// TransferItem is one product line of a transfer.
type TransferItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TransferID uuid.UUID `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
}
