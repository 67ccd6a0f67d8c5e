package reports

import (
	"testing"

	"bitbucket.org/mmdatafocus/recon_backend/models"
)

func TestClassifyStatusColour(t *testing.T) {
	cases := []struct {
		label  string
		colour string
	}{
		{StatusLabelUnmatched, "red"},
		{StatusLabelReconciled, "green"},
		{StatusLabelUnreconciled, "orange"},
		{StatusLabelPending, "gray"},
		{"Something else", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ClassifyStatusColour(c.label); got != c.colour {
			t.Fatalf("label %q: expected %q, got %q", c.label, c.colour, got)
		}
	}
}

func TestClassifyStatusColourPrecedence(t *testing.T) {
	// The reconciled marker must be checked before the generic substring:
	// both labels below contain "Unreconciled".
	if got := ClassifyStatusColour("✅ Reconciled (was Unreconciled)"); got != "green" {
		t.Fatalf("reconciled marker must win over the substring, got %q", got)
	}
	if got := ClassifyStatusColour("Unreconciled"); got != "orange" {
		t.Fatalf("plain unreconciled must stay orange, got %q", got)
	}
}

func TestStatusLabelFor(t *testing.T) {
	if got := StatusLabelFor(models.ReconciliationStatusReconciled, true); got != StatusLabelReconciled {
		t.Fatalf("expected reconciled label, got %q", got)
	}
	if got := StatusLabelFor(models.ReconciliationStatusUnreconciled, false); got != StatusLabelUnmatched {
		t.Fatalf("expected unmatched label for unlinked row, got %q", got)
	}
	if got := StatusLabelFor(models.ReconciliationStatusUnreconciled, true); got != StatusLabelUnreconciled {
		t.Fatalf("expected unreconciled label for partial row, got %q", got)
	}
	if got := StatusLabelFor(models.ReconciliationStatusPending, false); got != StatusLabelPending {
		t.Fatalf("expected pending label, got %q", got)
	}
}

func TestNavigationRoutes(t *testing.T) {
	route := BulkCreationFormRoute(4)
	if route != "/app/bulk-bank-transaction/new?bank_account_id=4" {
		t.Fatalf("unexpected bulk creation route %q", route)
	}
	route = ReconciliationToolRoute(4)
	if route != "/app/bank-reconciliation-tool?bank_account_id=4" {
		t.Fatalf("unexpected reconciliation tool route %q", route)
	}
}
