package reports

import (
	"fmt"
	"net/url"
	"time"
)

// Route builders for the views the report links out to. Every filter is an
// explicit parameter; nothing is stashed in shared state between calls.

// GeneralLedgerRoute points at the ledger view for a GL account and range.
func GeneralLedgerRoute(glAccountId int, fromDate, toDate time.Time) string {
	q := url.Values{}
	q.Set("account_id", fmt.Sprint(glAccountId))
	if !fromDate.IsZero() {
		q.Set("from_date", fromDate.Format("2006-01-02"))
	}
	if !toDate.IsZero() {
		q.Set("to_date", toDate.Format("2006-01-02"))
	}
	return "/app/general-ledger?" + q.Encode()
}

// BulkCreationFormRoute points at a new bulk-creation form prefilled with
// the bank account.
func BulkCreationFormRoute(bankAccountId int) string {
	q := url.Values{}
	q.Set("bank_account_id", fmt.Sprint(bankAccountId))
	return "/app/bulk-bank-transaction/new?" + q.Encode()
}

// ReconciliationToolRoute points at the reconciliation tool filtered to the
// bank account.
func ReconciliationToolRoute(bankAccountId int) string {
	q := url.Values{}
	q.Set("bank_account_id", fmt.Sprint(bankAccountId))
	return "/app/bank-reconciliation-tool?" + q.Encode()
}
