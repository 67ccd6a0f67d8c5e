package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPaymentEntryMatchableAmountPrefersAfterTax(t *testing.T) {
	pe := PaymentEntry{
		PaidAmount:             decimal.NewFromInt(90),
		BasePaidAmountAfterTax: decimal.NewFromInt(100),
	}
	if got := pe.MatchableAmount(); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected after-tax amount 100, got %s", got)
	}
}

func TestPaymentEntryMatchableAmountFallsBackToPaidAmount(t *testing.T) {
	pe := PaymentEntry{
		PaidAmount: decimal.NewFromInt(90),
	}
	if got := pe.MatchableAmount(); !got.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected paid amount 90, got %s", got)
	}
}

func TestJournalEntryMatchableAmountUsesBankLine(t *testing.T) {
	je := JournalEntry{
		Accounts: []JournalEntryAccount{
			{AccountId: 1, AccountType: AccountTypeExpense, Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
			{AccountId: 2, AccountType: AccountTypeBank, Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
		},
	}
	if got := je.MatchableAmount(); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected bank line amount 500, got %s", got)
	}
}

func TestJournalEntryMatchableAmountIsAbsolute(t *testing.T) {
	je := JournalEntry{
		Accounts: []JournalEntryAccount{
			{AccountId: 2, AccountType: AccountTypeBank, Debit: decimal.Zero, Credit: decimal.NewFromInt(250)},
			{AccountId: 3, AccountType: AccountTypeExpense, Debit: decimal.NewFromInt(250), Credit: decimal.Zero},
		},
	}
	if got := je.MatchableAmount(); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected absolute bank line amount 250, got %s", got)
	}
}

func TestJournalEntryMatchableAmountZeroWithoutBankLine(t *testing.T) {
	je := JournalEntry{
		Accounts: []JournalEntryAccount{
			{AccountId: 1, AccountType: AccountTypeExpense, Debit: decimal.NewFromInt(500)},
			{AccountId: 2, AccountType: AccountTypePayable, Credit: decimal.NewFromInt(500)},
		},
	}
	if got := je.MatchableAmount(); !got.IsZero() {
		t.Fatalf("expected zero for entry without bank line, got %s", got)
	}
}

func TestDeriveAllocation(t *testing.T) {
	total := decimal.NewFromInt(1000)

	unallocated, status := DeriveAllocation(total, decimal.Zero)
	if !unallocated.Equal(total) || status != ReconciliationStatusUnreconciled {
		t.Fatalf("zero allocation: got %s %s", unallocated, status)
	}

	unallocated, status = DeriveAllocation(total, decimal.NewFromInt(400))
	if !unallocated.Equal(decimal.NewFromInt(600)) || status != ReconciliationStatusUnreconciled {
		t.Fatalf("partial allocation: got %s %s", unallocated, status)
	}

	unallocated, status = DeriveAllocation(total, total)
	if !unallocated.IsZero() || status != ReconciliationStatusReconciled {
		t.Fatalf("full allocation: got %s %s", unallocated, status)
	}
}
