package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a sale (or receivable settlement) is paid.
type PaymentMethod string

const (
	PayCash        PaymentMethod = "cash"
	PayQris        PaymentMethod = "qris"
	PayDebitCredit PaymentMethod = "debit_credit"
	PayReceivable  PaymentMethod = "receivable"
)

// TransactionStatus: a cancelled transaction stays on record for audit but is
// excluded from receivables and reports.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// PaymentStatus is derived: unpaid while remaining > 0, paid otherwise.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Transaction is a sale header. Totals are computed server-side:
// total = subtotal - discount, remaining = total - amount_paid.
// remaining > 0 makes the transaction a receivable (piutang).
type Transaction struct {
	BaseModel
	Invoice  string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice"`
	OutletID uuid.UUID `gorm:"type:uuid;not null;index" json:"outlet_id"`
	Outlet   *Outlet   `gorm:"foreignKey:OutletID" json:"outlet,omitempty"`
	Date     time.Time `gorm:"not null" json:"date"`

	CustomerID    *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer      *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName  string     `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string     `gorm:"type:varchar(30)" json:"customer_phone"`

	// Vehicle snapshot
	PlateNumber string `gorm:"type:varchar(20)" json:"plate_number"`
	VehicleDesc string `gorm:"type:varchar(255)" json:"vehicle_desc"`

	Subtotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	Discount   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount"`
	Total      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"amount_paid"`
	Remaining  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"remaining"`

	Status        TransactionStatus `gorm:"type:varchar(10);not null;default:completed" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"type:varchar(10);not null;default:paid" json:"payment_status"`
	SettledAt     *time.Time        `json:"settled_at,omitempty"`

	Items    []TransactionItem    `gorm:"foreignKey:TransactionID" json:"items"`
	Payments []TransactionPayment `gorm:"foreignKey:TransactionID" json:"payments"`
}

// TransactionItem is one sale line. ProductID is optional: service lines
// (labor, balancing...) carry only a free-text name and never touch stock.
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     *uuid.UUID      `gorm:"type:uuid" json:"product_id,omitempty"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
}

// TransactionPayment is one settlement entry against a sale.
type TransactionPayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Method        PaymentMethod   `gorm:"type:varchar(15);not null" json:"method"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAt        time.Time       `gorm:"not null" json:"paid_at"`
}

// Receivable is the piutang projection of a transaction with an outstanding
// balance. It is derived 1:1, never stored separately.
type Receivable struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Invoice       string          `json:"invoice"`
	CustomerName  string          `json:"customer_name"`
	PlateNumber   string          `json:"plate_number"`
	OutletID      uuid.UUID       `json:"outlet_id"`
	Total         decimal.Decimal `json:"total"`
	PaidSoFar     decimal.Decimal `json:"paid_so_far"`
	Remaining     decimal.Decimal `json:"remaining"`
	Status        PaymentStatus   `json:"status"`
	Date          time.Time       `json:"date"`
	SettledAt     *time.Time      `json:"settled_at,omitempty"`
}

// ToReceivable projects the transaction into its piutang view.
func (t *Transaction) ToReceivable() Receivable {
	return Receivable{
		TransactionID: t.ID,
		Invoice:       t.Invoice,
		CustomerName:  t.CustomerName,
		PlateNumber:   t.PlateNumber,
		OutletID:      t.OutletID,
		Total:         t.Total,
		PaidSoFar:     t.AmountPaid,
		Remaining:     t.Remaining,
		Status:        t.PaymentStatus,
		Date:          t.Date,
		SettledAt:     t.SettledAt,
	}
}
