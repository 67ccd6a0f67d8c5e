package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/recon_backend/models"
)

func TestPendingRowsFiltersMaterializedRows(t *testing.T) {
	rows := []models.BulkBankTransactionRow{
		{ID: 1, RowOrder: 1, BankTransactionId: 55},
		{ID: 2, RowOrder: 2, BankTransactionId: 0},
		{ID: 3, RowOrder: 3, BankTransactionId: 0},
	}

	pending := pendingRows(rows)
	if len(pending) != 2 {
		t.Fatalf("expected two pending rows, got %d", len(pending))
	}
	if pending[0].RowOrder != 2 || pending[1].RowOrder != 3 {
		t.Fatalf("expected stored order preserved, got %v %v", pending[0].RowOrder, pending[1].RowOrder)
	}
}

func TestPendingRowsEmpty(t *testing.T) {
	rows := []models.BulkBankTransactionRow{
		{ID: 1, RowOrder: 1, BankTransactionId: 55},
	}
	if pending := pendingRows(rows); len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %d", len(pending))
	}
}

func TestBulkCreateResultCarriesBothOutcomes(t *testing.T) {
	// A partially failed batch reports both the success count and every
	// per-row error; neither side masks the other.
	result := BulkCreateResult{Created: 3, Errors: []string{"row 2: invalid amount"}}
	if result.Created != 3 {
		t.Fatalf("expected created count kept alongside errors, got %d", result.Created)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected error list kept alongside created count, got %v", result.Errors)
	}
}
