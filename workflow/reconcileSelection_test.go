package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/recon_backend/models"
	"github.com/shopspring/decimal"
)

func TestPartitionSelectionDeduplicatesTransactionIds(t *testing.T) {
	rows := []SelectionRow{
		{BankTransactionId: 7, VoucherType: models.VoucherTypePaymentEntry, VoucherId: 11, Amount: decimal.NewFromInt(100)},
		{BankTransactionId: 7, VoucherType: models.VoucherTypeJournalEntry, VoucherId: 12, Amount: decimal.NewFromInt(50)},
	}

	ids, matches := partitionSelection(rows)
	if len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("expected one distinct transaction id, got %v", ids)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two vouchers, got %d", len(matches))
	}
}

func TestPartitionSelectionDropsBlankTransactionIds(t *testing.T) {
	rows := []SelectionRow{
		{BankTransactionId: 0, VoucherType: models.VoucherTypePaymentEntry, VoucherId: 11, Amount: decimal.NewFromInt(100)},
		{BankTransactionId: 0},
		{BankTransactionId: 9, VoucherType: models.VoucherTypeJournalEntry, VoucherId: 12, Amount: decimal.NewFromInt(50)},
	}

	ids, matches := partitionSelection(rows)
	if len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("expected blank ids filtered after de-duplication, got %v", ids)
	}
	if len(matches) != 2 {
		t.Fatalf("expected vouchers kept from blank-id rows, got %d", len(matches))
	}
}

func TestPartitionSelectionNoVouchers(t *testing.T) {
	rows := []SelectionRow{
		{BankTransactionId: 1},
		{BankTransactionId: 2},
	}

	ids, matches := partitionSelection(rows)
	if len(ids) != 2 {
		t.Fatalf("expected both transaction ids, got %v", ids)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no vouchers from unlinked rows, got %d", len(matches))
	}
}

func TestPlanAllocationsRejectsUnplaceableVouchers(t *testing.T) {
	rooms := []decimal.Decimal{decimal.NewFromInt(500), decimal.NewFromInt(500)}
	matches := []VoucherMatch{
		{Type: models.VoucherTypePaymentEntry, Id: 1, Amount: decimal.NewFromInt(600)},
		{Type: models.VoucherTypeJournalEntry, Id: 2, Amount: decimal.NewFromInt(50)},
	}

	if _, err := planAllocations(rooms, matches); err == nil {
		t.Fatal("expected an error when a voucher fits no transaction")
	}
}

func TestPlanAllocationsSkipsToRoomierTransaction(t *testing.T) {
	rooms := []decimal.Decimal{decimal.NewFromInt(500), decimal.NewFromInt(700)}
	matches := []VoucherMatch{
		{Type: models.VoucherTypePaymentEntry, Id: 1, Amount: decimal.NewFromInt(600)},
		{Type: models.VoucherTypeJournalEntry, Id: 2, Amount: decimal.NewFromInt(50)},
	}

	batches, err := planAllocations(rooms, matches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches[0]) != 0 {
		t.Fatalf("expected the first transaction skipped, got %d vouchers", len(batches[0]))
	}
	if len(batches[1]) != 2 {
		t.Fatalf("expected both vouchers on the second transaction, got %d", len(batches[1]))
	}
}

func TestPlanAllocationsFillsInOrder(t *testing.T) {
	rooms := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(100)}
	matches := []VoucherMatch{
		{Type: models.VoucherTypePaymentEntry, Id: 1, Amount: decimal.NewFromInt(60)},
		{Type: models.VoucherTypePaymentEntry, Id: 2, Amount: decimal.NewFromInt(40)},
		{Type: models.VoucherTypeJournalEntry, Id: 3, Amount: decimal.NewFromInt(100)},
	}

	batches, err := planAllocations(rooms, matches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("expected 2+1 split, got %d and %d", len(batches[0]), len(batches[1]))
	}
	if batches[1][0].Id != 3 {
		t.Fatalf("expected the third voucher on the second transaction, got id %d", batches[1][0].Id)
	}
}

func TestSumMatches(t *testing.T) {
	matches := []VoucherMatch{
		{Type: models.VoucherTypePaymentEntry, Id: 1, Amount: decimal.NewFromInt(100)},
		{Type: models.VoucherTypeJournalEntry, Id: 2, Amount: decimal.NewFromInt(250)},
	}
	if got := sumMatches(matches); !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected 350, got %s", got)
	}
	if got := sumMatches(nil); !got.IsZero() {
		t.Fatalf("expected zero for empty batch, got %s", got)
	}
}
