package model

import "fmt"

// Document number kinds.
const (
	DocKindInvoice  = "INV"
	DocKindTransfer = "TRF"
)

// DocumentCounter is a per-(kind, year) monotonic sequence row. It is read
// and bumped under FOR UPDATE inside the same DB transaction that inserts the
// numbered document, so two concurrent creations serialize instead of racing
// a count query. The unique index on the formatted number is the backstop.
type DocumentCounter struct {
	Kind    string `gorm:"type:varchar(10);primaryKey"`
	Year    int    `gorm:"primaryKey"`
	LastSeq int    `gorm:"not null;default:0"`
}

func (DocumentCounter) TableName() string {
	return "document_counters"
}

// FormatDocumentNumber renders e.g. INV-2026-0001 or TRF-2026-0015.
func FormatDocumentNumber(kind string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", kind, year, seq)
}
