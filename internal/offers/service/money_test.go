package service

import (
	"testing"

	"washdesk_backend/internal/offers/transport"
	"washdesk_backend/platform/apperr"
)

func TestReconcileApprovedTotals_NetDerivesGross(t *testing.T) {
	net, gross, err := ReconcileApprovedTotals("100", "", "net", 23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net != 10000 {
		t.Fatalf("expected net 10000, got %d", net)
	}
	if gross != 12300 {
		t.Fatalf("expected gross 12300, got %d", gross)
	}
}

func TestReconcileApprovedTotals_GrossDerivesNet(t *testing.T) {
	net, gross, err := ReconcileApprovedTotals("", "123.00", "gross", 23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gross != 12300 {
		t.Fatalf("expected gross 12300, got %d", gross)
	}
	if net != 10000 {
		t.Fatalf("expected net 10000, got %d", net)
	}
}

func TestReconcileApprovedTotals_LastEditedWins(t *testing.T) {
	// Both sides positive but inconsistent; the gross edit wins and net is recomputed.
	net, gross, err := ReconcileApprovedTotals("999.99", "246.00", "gross", 23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gross != 24600 {
		t.Fatalf("expected gross 24600, got %d", gross)
	}
	if net != 20000 {
		t.Fatalf("expected net 20000, got %d", net)
	}
}

func TestReconcileApprovedTotals_RejectsBothZero(t *testing.T) {
	_, _, err := ReconcileApprovedTotals("0", "0", "net", 23)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
	}
}

func TestReconcileApprovedTotals_RejectsUnparsable(t *testing.T) {
	_, _, err := ReconcileApprovedTotals("abc", "", "net", 23)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestReconcileApprovedTotals_CommaDecimalSeparator(t *testing.T) {
	net, gross, err := ReconcileApprovedTotals("100,50", "", "net", 23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net != 10050 {
		t.Fatalf("expected net 10050, got %d", net)
	}
	if gross != 12362 {
		t.Fatalf("expected gross 12362, got %d", gross)
	}
}

func TestReconcileApprovedTotals_RoundTripWithinOneCent(t *testing.T) {
	for _, cents := range []int64{1, 99, 10000, 12345, 999999} {
		netStr := formatTestCents(cents)
		_, gross, err := ReconcileApprovedTotals(netStr, "", "net", 23)
		if err != nil {
			t.Fatalf("net->gross for %s: %v", netStr, err)
		}
		roundTripped, _, err := ReconcileApprovedTotals("", formatTestCents(gross), "gross", 23)
		if err != nil {
			t.Fatalf("gross->net for %d: %v", gross, err)
		}
		diff := roundTripped - cents
		if diff < -1 || diff > 1 {
			t.Fatalf("round trip drifted: started %d, got back %d", cents, roundTripped)
		}
	}
}

func formatTestCents(cents int64) string {
	return transport.FormatCents(cents)
}
