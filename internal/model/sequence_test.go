package model

import "testing"

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		kind     string
		year     int
		seq      int
		expected string
	}{
		{DocKindInvoice, 2026, 1, "INV-2026-0001"},
		{DocKindInvoice, 2026, 42, "INV-2026-0042"},
		{DocKindTransfer, 2025, 15, "TRF-2025-0015"},
		{DocKindTransfer, 2026, 12345, "TRF-2026-12345"},
	}
	for _, tc := range cases {
		if got := FormatDocumentNumber(tc.kind, tc.year, tc.seq); got != tc.expected {
			t.Errorf("FormatDocumentNumber(%s, %d, %d) = %s, want %s", tc.kind, tc.year, tc.seq, got, tc.expected)
		}
	}
}
