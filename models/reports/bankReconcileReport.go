package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/models"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
)

// Status labels carry semantic marker substrings; clients style rows off the
// colour, which is classified here with ordered precedence.
const (
	StatusLabelUnmatched    = "❌ Unmatched"
	StatusLabelReconciled   = "✅ Reconciled"
	StatusLabelUnreconciled = "Unreconciled"
	StatusLabelPending      = "⏳ Pending"
)

// ClassifyStatusColour maps a status label to its colour. The checks are
// ordered and first match wins: a partially reconciled label contains
// "Unreconciled" but not the reconciled marker, so the marker checks must
// run before the generic substring check. Unrecognized labels get no colour.
func ClassifyStatusColour(label string) string {
	switch {
	case strings.Contains(label, StatusLabelUnmatched):
		return "red"
	case strings.Contains(label, StatusLabelReconciled):
		return "green"
	case strings.Contains(label, StatusLabelUnreconciled):
		return "orange"
	case strings.Contains(label, "⏳"):
		return "gray"
	default:
		return ""
	}
}

// StatusLabelFor renders the label for a bank transaction row.
func StatusLabelFor(status models.ReconciliationStatus, hasMatch bool) string {
	switch status {
	case models.ReconciliationStatusReconciled:
		return StatusLabelReconciled
	case models.ReconciliationStatusUnreconciled:
		if !hasMatch {
			return StatusLabelUnmatched
		}
		return StatusLabelUnreconciled
	case models.ReconciliationStatusPending:
		return StatusLabelPending
	default:
		return string(status)
	}
}

type BankReconcileFilter struct {
	BankAccountId         int       `form:"bank_account_id" binding:"required"`
	FromDate              time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate                time.Time `form:"to_date" time_format:"2006-01-02"`
	FilterByReferenceDate bool      `form:"filter_by_reference_date"`
	ShowUnmatchedVouchers bool      `form:"show_unmatched_vouchers"`
	ClosingBalance        string    `form:"closing_balance"`
	CreatedBy             string    `form:"created_by"`
}

// transactionDateRange is the statement window applied to the
// bank-transaction query. Statement lines are always windowed by their
// transaction date; the reference-date toggle only moves the voucher
// sections onto their reference dates.
func transactionDateRange(filter *BankReconcileFilter) (time.Time, time.Time, bool) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return filter.FromDate, filter.ToDate, true
}

type BankReconcileRow struct {
	RowType           string          `json:"row_type"`
	BankTransactionId int             `json:"bank_transaction_id,omitempty"`
	Date              time.Time       `json:"date"`
	ReferenceNumber   string          `json:"reference_number"`
	Deposit           decimal.Decimal `json:"deposit"`
	Withdrawal        decimal.Decimal `json:"withdrawal"`
	VoucherType       string          `json:"voucher_type,omitempty"`
	VoucherId         int             `json:"voucher_id,omitempty"`
	VoucherAmount     decimal.Decimal `json:"voucher_amount"`
	StatusLabel       string          `json:"status_label"`
	Colour            string          `json:"colour"`
}

type BankReconcileSummary struct {
	OpeningBalancePerSystem    decimal.Decimal `json:"opening_balance_per_system"`
	ClosingBalancePerSystem    decimal.Decimal `json:"closing_balance_per_system"`
	ClosingBalancePerStatement decimal.Decimal `json:"closing_balance_per_statement"`
	Difference                 decimal.Decimal `json:"difference"`
}

type BankReconcileReport struct {
	Rows    []BankReconcileRow   `json:"rows"`
	Summary BankReconcileSummary `json:"summary"`
}

// matchedVoucher is the SQL-matched fallback for a transaction without link
// rows: a payment entry sharing the reference number against the bank GL
// account, or a journal entry whose cheque number matches with a bank line
// on that account.
type matchedVoucher struct {
	VoucherType string
	VoucherId   int
	Amount      decimal.Decimal
}

func matchVoucherBySQL(ctx context.Context, businessId string, bt *models.BankTransaction, glAccountId int) (*matchedVoucher, error) {
	if bt.ReferenceNumber == "" {
		return nil, nil
	}
	db := config.GetDB()

	paymentType := models.PaymentTypePay
	if bt.Deposit.IsPositive() {
		paymentType = models.PaymentTypeReceive
	}

	var pe models.PaymentEntry
	err := db.WithContext(ctx).
		Where("business_id = ? AND reference_number = ? AND payment_type = ? AND clearance_date IS NULL", businessId, bt.ReferenceNumber, paymentType).
		Where("paid_from_account_id = ? OR paid_to_account_id = ?", glAccountId, glAccountId).
		First(&pe).Error
	if err == nil {
		return &matchedVoucher{
			VoucherType: string(models.VoucherTypePaymentEntry),
			VoucherId:   pe.ID,
			Amount:      pe.MatchableAmount(),
		}, nil
	}

	var je models.JournalEntry
	err = db.WithContext(ctx).Preload("Accounts").
		Where("business_id = ? AND cheque_number = ? AND clearance_date IS NULL", businessId, bt.ReferenceNumber).
		Where("id IN (SELECT journal_entry_id FROM journal_entry_accounts WHERE account_id = ?)", glAccountId).
		First(&je).Error
	if err == nil {
		return &matchedVoucher{
			VoucherType: string(models.VoucherTypeJournalEntry),
			VoucherId:   je.ID,
			Amount:      je.MatchableAmount(),
		}, nil
	}
	return nil, nil
}

// GetBankReconcileReport assembles the reconciliation report: bank
// transaction rows first (each with its linked or SQL-matched voucher), then
// unmatched payment entries and journal entries, then the balance summary.
func GetBankReconcileReport(ctx context.Context, filter *BankReconcileFilter) (*BankReconcileReport, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	bankAccount, err := models.GetBankAccount(ctx, filter.BankAccountId)
	if err != nil {
		return nil, errors.New("bank account not found")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Payments").
		Where("business_id = ? AND bank_account_id = ?", businessId, bankAccount.ID)
	if from, to, ok := transactionDateRange(filter); ok {
		dbCtx = dbCtx.Where("transaction_date BETWEEN ? AND ?", from, to)
	}
	if filter.CreatedBy != "" {
		dbCtx = dbCtx.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.ShowUnmatchedVouchers {
		dbCtx = dbCtx.Where("status <> ?", models.ReconciliationStatusReconciled)
	}

	var transactions []*models.BankTransaction
	if err := dbCtx.Order("transaction_date ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}

	report := &BankReconcileReport{}
	for _, bt := range transactions {
		row := BankReconcileRow{
			RowType:           "Bank Transaction",
			BankTransactionId: bt.ID,
			Date:              bt.TransactionDate,
			ReferenceNumber:   bt.ReferenceNumber,
			Deposit:           bt.Deposit,
			Withdrawal:        bt.Withdrawal,
		}

		hasMatch := false
		if len(bt.Payments) > 0 {
			// The linked voucher wins over any SQL match.
			link := bt.Payments[0]
			row.VoucherType = string(link.VoucherType)
			row.VoucherId = link.VoucherId
			row.VoucherAmount = link.AllocatedAmount
			hasMatch = true
		} else {
			match, err := matchVoucherBySQL(ctx, businessId, bt, bankAccount.GLAccountId)
			if err != nil {
				return nil, err
			}
			if match != nil {
				row.VoucherType = match.VoucherType
				row.VoucherId = match.VoucherId
				row.VoucherAmount = match.Amount
				hasMatch = true
			}
		}

		row.StatusLabel = StatusLabelFor(bt.Status, hasMatch)
		row.Colour = ClassifyStatusColour(row.StatusLabel)
		report.Rows = append(report.Rows, row)
	}

	// Reference-date filtering applies to the voucher sections below; the
	// transaction set above is filtered by statement date unless toggled.
	if err := appendUnmatchedVouchers(ctx, businessId, bankAccount.GLAccountId, filter, report); err != nil {
		return nil, err
	}

	summary, err := buildSummary(ctx, businessId, bankAccount.ID, filter)
	if err != nil {
		return nil, err
	}
	report.Summary = *summary
	return report, nil
}

func appendUnmatchedVouchers(ctx context.Context, businessId string, glAccountId int, filter *BankReconcileFilter, report *BankReconcileReport) error {
	db := config.GetDB()

	peCtx := db.WithContext(ctx).
		Where("business_id = ? AND clearance_date IS NULL", businessId).
		Where("paid_from_account_id = ? OR paid_to_account_id = ?", glAccountId, glAccountId)
	if !filter.FromDate.IsZero() && !filter.ToDate.IsZero() {
		if filter.FilterByReferenceDate {
			peCtx = peCtx.Where("reference_date BETWEEN ? AND ?", filter.FromDate, filter.ToDate)
		} else {
			peCtx = peCtx.Where("posting_date BETWEEN ? AND ?", filter.FromDate, filter.ToDate)
		}
	}
	if filter.CreatedBy != "" {
		peCtx = peCtx.Where("created_by = ?", filter.CreatedBy)
	}
	var paymentEntries []*models.PaymentEntry
	if err := peCtx.Order("posting_date ASC, id ASC").Find(&paymentEntries).Error; err != nil {
		return err
	}
	for _, pe := range paymentEntries {
		row := BankReconcileRow{
			RowType:         "Payment Entry",
			Date:            pe.PostingDate,
			ReferenceNumber: pe.ReferenceNumber,
			VoucherType:     string(models.VoucherTypePaymentEntry),
			VoucherId:       pe.ID,
			VoucherAmount:   pe.MatchableAmount(),
			StatusLabel:     StatusLabelUnmatched,
		}
		row.Colour = ClassifyStatusColour(row.StatusLabel)
		report.Rows = append(report.Rows, row)
	}

	jeCtx := db.WithContext(ctx).Preload("Accounts").
		Where("business_id = ? AND clearance_date IS NULL", businessId).
		Where("id IN (SELECT journal_entry_id FROM journal_entry_accounts WHERE account_id = ?)", glAccountId)
	if !filter.FromDate.IsZero() && !filter.ToDate.IsZero() {
		if filter.FilterByReferenceDate {
			jeCtx = jeCtx.Where("cheque_date BETWEEN ? AND ?", filter.FromDate, filter.ToDate)
		} else {
			jeCtx = jeCtx.Where("posting_date BETWEEN ? AND ?", filter.FromDate, filter.ToDate)
		}
	}
	if filter.CreatedBy != "" {
		jeCtx = jeCtx.Where("created_by = ?", filter.CreatedBy)
	}
	var journalEntries []*models.JournalEntry
	if err := jeCtx.Order("posting_date ASC, id ASC").Find(&journalEntries).Error; err != nil {
		return err
	}
	for _, je := range journalEntries {
		row := BankReconcileRow{
			RowType:         "Journal Entry",
			Date:            je.PostingDate,
			ReferenceNumber: je.ChequeNumber,
			VoucherType:     string(models.VoucherTypeJournalEntry),
			VoucherId:       je.ID,
			VoucherAmount:   je.MatchableAmount(),
			StatusLabel:     StatusLabelUnmatched,
		}
		row.Colour = ClassifyStatusColour(row.StatusLabel)
		report.Rows = append(report.Rows, row)
	}
	return nil
}

// transactionNet sums deposits minus withdrawals for the account, optionally
// narrowed by an extra condition.
func transactionNet(ctx context.Context, businessId string, bankAccountId int, condition string, args ...interface{}) (decimal.Decimal, error) {
	db := config.GetDB()

	type balanceRow struct {
		Deposits    decimal.Decimal
		Withdrawals decimal.Decimal
	}
	var bal balanceRow
	dbCtx := db.WithContext(ctx).Model(&models.BankTransaction{}).
		Where("business_id = ? AND bank_account_id = ?", businessId, bankAccountId)
	if condition != "" {
		dbCtx = dbCtx.Where(condition, args...)
	}
	if err := dbCtx.
		Select("COALESCE(SUM(deposit),0) AS deposits, COALESCE(SUM(withdrawal),0) AS withdrawals").
		Scan(&bal).Error; err != nil {
		return decimal.Zero, err
	}
	return bal.Deposits.Sub(bal.Withdrawals), nil
}

// buildSummary compares the balance the transactions imply with the balance
// the statement claims: the opening balance is the net before the window,
// the system closing balance is opening plus the movement inside it.
func buildSummary(ctx context.Context, businessId string, bankAccountId int, filter *BankReconcileFilter) (*BankReconcileSummary, error) {
	opening := decimal.Zero
	if !filter.FromDate.IsZero() {
		net, err := transactionNet(ctx, businessId, bankAccountId, "transaction_date < ?", filter.FromDate)
		if err != nil {
			return nil, err
		}
		opening = net
	}

	condition := ""
	var args []interface{}
	switch {
	case !filter.FromDate.IsZero() && !filter.ToDate.IsZero():
		condition = "transaction_date BETWEEN ? AND ?"
		args = []interface{}{filter.FromDate, filter.ToDate}
	case !filter.FromDate.IsZero():
		condition = "transaction_date >= ?"
		args = []interface{}{filter.FromDate}
	case !filter.ToDate.IsZero():
		condition = "transaction_date <= ?"
		args = []interface{}{filter.ToDate}
	}
	windowNet, err := transactionNet(ctx, businessId, bankAccountId, condition, args...)
	if err != nil {
		return nil, err
	}

	var statementClosing *decimal.Decimal
	if strings.TrimSpace(filter.ClosingBalance) != "" {
		parsed, err := utils.ParseDecimal(filter.ClosingBalance)
		if err != nil {
			return nil, errors.New("invalid closing balance")
		}
		statementClosing = &parsed
	}

	summary := summarize(opening, windowNet, statementClosing)
	return &summary, nil
}

// summarize derives the balance summary from the opening balance, the net
// movement inside the window and the statement's claimed closing balance.
func summarize(opening, windowNet decimal.Decimal, statementClosing *decimal.Decimal) BankReconcileSummary {
	summary := BankReconcileSummary{
		OpeningBalancePerSystem: opening,
		ClosingBalancePerSystem: opening.Add(windowNet),
	}
	if statementClosing != nil {
		summary.ClosingBalancePerStatement = *statementClosing
		summary.Difference = statementClosing.Sub(summary.ClosingBalancePerSystem)
	}
	return summary
}
