package model

import "testing"

func TestTransferStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TransferStatus
		to      TransferStatus
		allowed bool
	}{
		{TransferPending, TransferAccepted, true},
		{TransferPending, TransferCancelled, true},
		{TransferPending, TransferCompleted, false},
		{TransferAccepted, TransferCompleted, true},
		{TransferAccepted, TransferCancelled, false},
		{TransferAccepted, TransferPending, false},
		{TransferCompleted, TransferCancelled, false},
		{TransferCompleted, TransferPending, false},
		{TransferCancelled, TransferAccepted, false},
		{TransferCancelled, TransferCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTransferStatusIsTerminal(t *testing.T) {
	if TransferPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if TransferAccepted.IsTerminal() {
		t.Error("accepted must not be terminal")
	}
	if !TransferCompleted.IsTerminal() {
		t.Error("completed must be terminal")
	}
	if !TransferCancelled.IsTerminal() {
		t.Error("cancelled must be terminal")
	}
}
