package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/models"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("recon-backend")

// VoucherMatch is one element of a match batch submitted against a bank
// transaction. Amount comes from the caller: single-match callers resolve it
// through LookupVoucher first, bulk callers pass the amount the report row
// already displayed.
type VoucherMatch struct {
	Type   models.VoucherType `json:"type" binding:"required"`
	Id     int                `json:"id" binding:"required"`
	Amount decimal.Decimal    `json:"amount"`
}

func sumMatches(matches []VoucherMatch) decimal.Decimal {
	total := decimal.Zero
	for _, m := range matches {
		total = total.Add(m.Amount)
	}
	return total
}

func validateMatches(ctx context.Context, businessId string, matches []VoucherMatch) error {
	if len(matches) == 0 {
		return errors.New("at least one voucher is required")
	}
	for _, m := range matches {
		if _, err := models.ParseVoucherType(string(m.Type)); err != nil {
			return err
		}
		if m.Amount.IsNegative() {
			return errors.New("voucher amount cannot be negative")
		}
		switch m.Type {
		case models.VoucherTypePaymentEntry:
			if err := utils.ValidateResourceId[models.PaymentEntry](ctx, businessId, m.Id); err != nil {
				return fmt.Errorf("payment entry %d not found", m.Id)
			}
		case models.VoucherTypeJournalEntry:
			if err := utils.ValidateResourceId[models.JournalEntry](ctx, businessId, m.Id); err != nil {
				return fmt.Errorf("journal entry %d not found", m.Id)
			}
		}
	}
	return nil
}

// reconcileTx writes the links, clearance dates, allocation and outbox row on
// the caller's transaction. Over-allocation is checked here, inside the
// transaction, against the transaction's current links.
func reconcileTx(tx *gorm.DB, ctx context.Context, businessId string, bankTransaction *models.BankTransaction, matches []VoucherMatch, action models.ReconciliationEventAction) error {

	allocated := decimal.Zero
	for _, p := range bankTransaction.Payments {
		allocated = allocated.Add(p.AllocatedAmount)
	}
	newTotal := allocated.Add(sumMatches(matches))
	if newTotal.GreaterThan(bankTransaction.TotalAmount()) {
		return errors.New("allocated amount cannot exceed the transaction amount")
	}

	clearanceDate := utils.ConvertToDate(bankTransaction.TransactionDate)
	for _, m := range matches {
		link := models.BankTransactionPayment{
			BankTransactionId: bankTransaction.ID,
			VoucherType:       m.Type,
			VoucherId:         m.Id,
			AllocatedAmount:   m.Amount,
			ClearanceDate:     &clearanceDate,
		}
		if err := tx.WithContext(ctx).Create(&link).Error; err != nil {
			return err
		}

		switch m.Type {
		case models.VoucherTypePaymentEntry:
			if err := tx.WithContext(ctx).Model(&models.PaymentEntry{}).
				Where("business_id = ? AND id = ?", businessId, m.Id).
				Update("clearance_date", clearanceDate).Error; err != nil {
				return err
			}
		case models.VoucherTypeJournalEntry:
			if err := tx.WithContext(ctx).Model(&models.JournalEntry{}).
				Where("business_id = ? AND id = ?", businessId, m.Id).
				Update("clearance_date", clearanceDate).Error; err != nil {
				return err
			}
		}
	}

	unallocated, status := models.DeriveAllocation(bankTransaction.TotalAmount(), newTotal)
	if err := tx.WithContext(ctx).Model(&models.BankTransaction{}).
		Where("business_id = ? AND id = ?", businessId, bankTransaction.ID).
		Updates(map[string]interface{}{
			"allocated_amount":   newTotal,
			"unallocated_amount": unallocated,
			"status":             status,
		}).Error; err != nil {
		return err
	}
	bankTransaction.AllocatedAmount = newTotal
	bankTransaction.UnallocatedAmount = unallocated
	bankTransaction.Status = status

	return models.RecordReconciliationEvent(ctx, tx, businessId, time.Now().UTC(),
		bankTransaction.ID, models.ReconciliationReferenceTypeBankTransaction,
		action, bankTransaction)
}

// ReconcileVouchers matches a batch of vouchers against one bank transaction.
func ReconcileVouchers(ctx context.Context, bankTransactionId int, matches []VoucherMatch) (*models.BankTransaction, error) {
	return reconcileVouchersAs(ctx, bankTransactionId, matches, models.ReconciliationEventActionReconcile)
}

// reconcileVouchersAs is the shared entry point: manual reconciles emit a
// Reconcile event, voucher-materialization flows emit VoucherLink.
func reconcileVouchersAs(ctx context.Context, bankTransactionId int, matches []VoucherMatch, action models.ReconciliationEventAction) (*models.BankTransaction, error) {
	ctx, span := tracer.Start(ctx, "ReconcileVouchers")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := validateMatches(ctx, businessId, matches); err != nil {
		return nil, err
	}

	lock, err := utils.BusinessLock(ctx, businessId)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	bankTransaction, err := utils.FetchModel[models.BankTransaction](ctx, businessId, bankTransactionId, "Payments")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := reconcileTx(tx, ctx, businessId, bankTransaction, matches, action); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return bankTransaction, nil
}

// SelectionRow is one selected report row in a bulk reconcile. Rows without
// voucher linkage carry a zero voucher id and contribute nothing to the
// voucher set.
type SelectionRow struct {
	BankTransactionId int                `json:"bank_transaction_id"`
	VoucherType       models.VoucherType `json:"voucher_type"`
	VoucherId         int                `json:"voucher_id"`
	Amount            decimal.Decimal    `json:"amount"`
}

// partitionSelection splits selected rows into distinct bank transaction ids
// and voucher matches drawn from the row data as displayed, without re-fetch.
// Transaction ids are de-duplicated first and zero entries dropped after,
// mirroring how selections with blank rows have always been handled.
func partitionSelection(rows []SelectionRow) ([]int, []VoucherMatch) {
	var ids []int
	var matches []VoucherMatch
	for _, row := range rows {
		ids = append(ids, row.BankTransactionId)
		if row.VoucherId > 0 && row.VoucherType != "" {
			matches = append(matches, VoucherMatch{
				Type:   row.VoucherType,
				Id:     row.VoucherId,
				Amount: row.Amount,
			})
		}
	}
	unique := utils.UniqueSlice(ids)
	var filtered []int
	for _, id := range unique {
		if id > 0 {
			filtered = append(filtered, id)
		}
	}
	return filtered, matches
}

// planAllocations assigns vouchers to transactions in order: each voucher
// goes to the first transaction that still has room for it, a voucher larger
// than the remaining room moves on to the next transaction. A plan that
// leaves any voucher unplaced is rejected so a selection never partially
// reconciles without the caller knowing.
func planAllocations(rooms []decimal.Decimal, matches []VoucherMatch) ([][]VoucherMatch, error) {
	batches := make([][]VoucherMatch, len(rooms))
	next := 0
	for i, room := range rooms {
		for next < len(matches) && room.IsPositive() {
			m := matches[next]
			if m.Amount.GreaterThan(room) {
				break
			}
			batches[i] = append(batches[i], m)
			room = room.Sub(m.Amount)
			next++
		}
		if next >= len(matches) {
			break
		}
	}
	if next < len(matches) {
		return nil, fmt.Errorf("%d of %d vouchers exceed the unallocated amount of the selected transactions", len(matches)-next, len(matches))
	}
	return batches, nil
}

// ReconcileSelected reconciles a report selection in one pass: vouchers are
// consumed greedily in row order, each allocated to the first listed
// transaction that still has unallocated room. A selection whose vouchers
// cannot all be placed is rejected before anything is written. Returns how
// many transactions received at least one new link.
func ReconcileSelected(ctx context.Context, rows []SelectionRow) (int, error) {
	ctx, span := tracer.Start(ctx, "ReconcileSelected")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return 0, errors.New("business id is required")
	}

	transactionIds, matches := partitionSelection(rows)
	if len(transactionIds) == 0 {
		return 0, errors.New("no bank transactions selected")
	}
	if len(matches) == 0 {
		return 0, errors.New("selected rows have no vouchers to reconcile")
	}
	if err := utils.ValidateResourcesId[models.BankTransaction](ctx, businessId, transactionIds); err != nil {
		return 0, errors.New("one or more selected bank transactions were not found")
	}
	if err := validateMatches(ctx, businessId, matches); err != nil {
		return 0, err
	}

	lock, err := utils.BusinessLock(ctx, businessId)
	if err != nil {
		return 0, err
	}
	defer lock.Release(ctx)

	transactions := make([]*models.BankTransaction, 0, len(transactionIds))
	rooms := make([]decimal.Decimal, 0, len(transactionIds))
	for _, id := range transactionIds {
		bankTransaction, err := utils.FetchModel[models.BankTransaction](ctx, businessId, id, "Payments")
		if err != nil {
			return 0, err
		}
		transactions = append(transactions, bankTransaction)
		rooms = append(rooms, bankTransaction.UnallocatedAmount)
	}

	batches, err := planAllocations(rooms, matches)
	if err != nil {
		return 0, err
	}

	db := config.GetDB()
	tx := db.Begin()

	reconciled := 0
	for i, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		if err := reconcileTx(tx, ctx, businessId, transactions[i], batch, models.ReconciliationEventActionReconcile); err != nil {
			tx.Rollback()
			return 0, err
		}
		reconciled++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return reconciled, nil
}

// NewPaymentEntryFromTransaction carries the interactively collected fields.
type NewPaymentEntryFromTransaction struct {
	PartyType       models.PartyType `json:"party_type" binding:"required"`
	PartyId         int              `json:"party_id" binding:"required"`
	ReferenceNumber string           `json:"reference_number"`
	ReferenceDate   *time.Time       `json:"reference_date"`
}

// CreatePaymentEntryFromTransaction creates a payment entry prefilled from
// the bank transaction and links it for the full unallocated amount.
func CreatePaymentEntryFromTransaction(ctx context.Context, bankTransactionId int, input *NewPaymentEntryFromTransaction) (*models.PaymentEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if _, err := models.ParsePartyType(string(input.PartyType)); err != nil {
		return nil, err
	}

	bankTransaction, err := utils.FetchModel[models.BankTransaction](ctx, businessId, bankTransactionId, "Payments")
	if err != nil {
		return nil, err
	}
	if bankTransaction.UnallocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("bank transaction has no unallocated amount")
	}
	bankAccount, err := models.GetBankAccount(ctx, bankTransaction.BankAccountId)
	if err != nil {
		return nil, err
	}

	paymentType := models.PaymentTypePay
	paidFrom, paidTo := bankAccount.GLAccountId, 0
	if bankTransaction.Deposit.IsPositive() {
		paymentType = models.PaymentTypeReceive
		paidFrom, paidTo = 0, bankAccount.GLAccountId
	}

	referenceNumber := input.ReferenceNumber
	if referenceNumber == "" {
		referenceNumber = bankTransaction.ReferenceNumber
	}
	referenceDate := input.ReferenceDate
	if referenceDate == nil {
		d := utils.ConvertToDate(bankTransaction.TransactionDate)
		referenceDate = &d
	}

	paymentEntry, err := models.CreatePaymentEntry(ctx, &models.NewPaymentEntry{
		PostingDate:       bankTransaction.TransactionDate,
		PaymentType:       paymentType,
		PartyType:         input.PartyType,
		PartyId:           input.PartyId,
		ReferenceNumber:   referenceNumber,
		ReferenceDate:     referenceDate,
		PaidAmount:        bankTransaction.UnallocatedAmount,
		PaidFromAccountId: paidFrom,
		PaidToAccountId:   paidTo,
		CurrencyId:        bankTransaction.CurrencyId,
	})
	if err != nil {
		return nil, err
	}

	_, err = reconcileVouchersAs(ctx, bankTransactionId, []VoucherMatch{{
		Type:   models.VoucherTypePaymentEntry,
		Id:     paymentEntry.ID,
		Amount: paymentEntry.MatchableAmount(),
	}}, models.ReconciliationEventActionVoucherLink)
	if err != nil {
		return nil, err
	}
	return paymentEntry, nil
}

// NewJournalEntryFromTransaction carries the interactively collected fields.
type NewJournalEntryFromTransaction struct {
	ExpenseAccountId int                     `json:"expense_account_id" binding:"required"`
	EntryType        models.JournalEntryType `json:"entry_type" binding:"required"`
	ReferenceNumber  string                  `json:"reference_number"`
	ReferenceDate    *time.Time              `json:"reference_date"`
}

// CreateJournalEntryFromTransaction creates a two-line journal entry (bank
// line plus expense line) prefilled from the bank transaction and links it.
func CreateJournalEntryFromTransaction(ctx context.Context, bankTransactionId int, input *NewJournalEntryFromTransaction) (*models.JournalEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	bankTransaction, err := utils.FetchModel[models.BankTransaction](ctx, businessId, bankTransactionId, "Payments")
	if err != nil {
		return nil, err
	}
	if bankTransaction.UnallocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("bank transaction has no unallocated amount")
	}
	bankAccount, err := models.GetBankAccount(ctx, bankTransaction.BankAccountId)
	if err != nil {
		return nil, err
	}

	amount := bankTransaction.UnallocatedAmount
	bankLine := models.NewJournalEntryAccount{AccountId: bankAccount.GLAccountId}
	expenseLine := models.NewJournalEntryAccount{AccountId: input.ExpenseAccountId}
	if bankTransaction.Deposit.IsPositive() {
		bankLine.Debit = amount
		expenseLine.Credit = amount
	} else {
		bankLine.Credit = amount
		expenseLine.Debit = amount
	}

	chequeNumber := input.ReferenceNumber
	if chequeNumber == "" {
		chequeNumber = bankTransaction.ReferenceNumber
	}
	chequeDate := input.ReferenceDate
	if chequeDate == nil {
		d := utils.ConvertToDate(bankTransaction.TransactionDate)
		chequeDate = &d
	}

	journalEntry, err := models.CreateJournalEntry(ctx, &models.NewJournalEntry{
		PostingDate:  bankTransaction.TransactionDate,
		EntryType:    input.EntryType,
		ChequeNumber: chequeNumber,
		ChequeDate:   chequeDate,
		Accounts:     []models.NewJournalEntryAccount{bankLine, expenseLine},
	})
	if err != nil {
		return nil, err
	}

	_, err = reconcileVouchersAs(ctx, bankTransactionId, []VoucherMatch{{
		Type:   models.VoucherTypeJournalEntry,
		Id:     journalEntry.ID,
		Amount: amount,
	}}, models.ReconciliationEventActionVoucherLink)
	if err != nil {
		return nil, err
	}
	return journalEntry, nil
}

// CreateBankTransactionFromVoucher materializes a statement line from an
// already posted voucher and auto-reconciles the pair.
func CreateBankTransactionFromVoucher(ctx context.Context, voucherType models.VoucherType, voucherId int) (*models.BankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	voucher, err := LookupVoucher(ctx, voucherType, voucherId)
	if err != nil {
		return nil, err
	}
	if voucher.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("voucher has no matchable amount")
	}

	glAccountId, moneyIn, err := voucherBankSide(ctx, businessId, voucherType, voucherId)
	if err != nil {
		return nil, err
	}

	var bankAccount models.BankAccount
	db := config.GetDB()
	if err := db.WithContext(ctx).
		Where("business_id = ? AND gl_account_id = ?", businessId, glAccountId).
		First(&bankAccount).Error; err != nil {
		return nil, errors.New("no bank account found for the voucher's bank GL account")
	}

	newTransaction := models.NewBankTransaction{
		BankAccountId:   bankAccount.ID,
		TransactionDate: voucher.PostingDate,
		ReferenceNumber: voucher.ReferenceNumber,
	}
	if moneyIn {
		newTransaction.Deposit = voucher.Amount
	} else {
		newTransaction.Withdrawal = voucher.Amount
	}

	bankTransaction, err := models.CreateBankTransaction(ctx, &newTransaction)
	if err != nil {
		return nil, err
	}

	return reconcileVouchersAs(ctx, bankTransaction.ID, []VoucherMatch{{
		Type:   voucherType,
		Id:     voucherId,
		Amount: voucher.Amount,
	}}, models.ReconciliationEventActionVoucherLink)
}

// voucherBankSide resolves which GL account is the bank side of the voucher
// and whether money moved into it.
func voucherBankSide(ctx context.Context, businessId string, voucherType models.VoucherType, voucherId int) (int, bool, error) {
	switch voucherType {
	case models.VoucherTypePaymentEntry:
		pe, err := models.GetPaymentEntry(ctx, voucherId)
		if err != nil {
			return 0, false, err
		}
		if pe.PaymentType == models.PaymentTypeReceive {
			return pe.PaidToAccountId, true, nil
		}
		return pe.PaidFromAccountId, false, nil
	case models.VoucherTypeJournalEntry:
		je, err := models.GetJournalEntry(ctx, voucherId)
		if err != nil {
			return 0, false, err
		}
		for _, line := range je.Accounts {
			if line.AccountType == models.AccountTypeBank {
				return line.AccountId, line.Debit.GreaterThan(line.Credit), nil
			}
		}
		return 0, false, errors.New("journal entry has no bank-typed line")
	default:
		return 0, false, errors.New("invalid voucher type")
	}
}
