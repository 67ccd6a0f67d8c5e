package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	statement := decimal.NewFromInt(160)
	summary := summarize(decimal.NewFromInt(100), decimal.NewFromInt(50), &statement)

	if !summary.OpeningBalancePerSystem.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected opening 100, got %s", summary.OpeningBalancePerSystem)
	}
	if !summary.ClosingBalancePerSystem.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected system closing 150, got %s", summary.ClosingBalancePerSystem)
	}
	if !summary.ClosingBalancePerStatement.Equal(statement) {
		t.Fatalf("expected statement closing 160, got %s", summary.ClosingBalancePerStatement)
	}
	if !summary.Difference.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected difference 10, got %s", summary.Difference)
	}
}

func TestSummarizeWithoutStatementBalance(t *testing.T) {
	summary := summarize(decimal.NewFromInt(20), decimal.NewFromInt(-5), nil)

	if !summary.ClosingBalancePerSystem.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected system closing 15, got %s", summary.ClosingBalancePerSystem)
	}
	if !summary.ClosingBalancePerStatement.IsZero() || !summary.Difference.IsZero() {
		t.Fatal("expected zero statement balance and difference when none was supplied")
	}
}

func TestTransactionDateRangeAppliesWithReferenceToggle(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	filter := &BankReconcileFilter{
		BankAccountId:         1,
		FromDate:              from,
		ToDate:                to,
		FilterByReferenceDate: true,
	}

	// The reference-date toggle moves the voucher sections onto their
	// reference dates; the statement lines keep their transaction-date window.
	gotFrom, gotTo, ok := transactionDateRange(filter)
	if !ok {
		t.Fatal("expected the statement window to apply regardless of the toggle")
	}
	if !gotFrom.Equal(from) || !gotTo.Equal(to) {
		t.Fatalf("unexpected window %s..%s", gotFrom, gotTo)
	}
}

func TestTransactionDateRangeNeedsBothDates(t *testing.T) {
	filter := &BankReconcileFilter{
		BankAccountId: 1,
		ToDate:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	if _, _, ok := transactionDateRange(filter); ok {
		t.Fatal("expected no window with only one bound set")
	}
}
