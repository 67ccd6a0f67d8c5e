package models

import (
	"errors"
)

// VoucherType is the tagged union over matchable voucher variants.
type VoucherType string

const (
	VoucherTypePaymentEntry VoucherType = "Payment Entry"
	VoucherTypeJournalEntry VoucherType = "Journal Entry"
)

// ParseVoucherType rejects anything outside the two known variants so that
// dispatch sites can switch exhaustively on the result.
func ParseVoucherType(s string) (VoucherType, error) {
	switch s {
	case "Payment Entry":
		return VoucherTypePaymentEntry, nil
	case "Journal Entry":
		return VoucherTypeJournalEntry, nil
	default:
		return "", errors.New("invalid voucher type")
	}
}

type PaymentType string

const (
	PaymentTypeReceive PaymentType = "Receive"
	PaymentTypePay     PaymentType = "Pay"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch s {
	case "Receive":
		return PaymentTypeReceive, nil
	case "Pay":
		return PaymentTypePay, nil
	default:
		return "", errors.New("invalid payment type")
	}
}

type JournalEntryType string

const (
	JournalEntryTypeBankEntry    JournalEntryType = "Bank Entry"
	JournalEntryTypeJournalEntry JournalEntryType = "Journal Entry"
)

func ParseJournalEntryType(s string) (JournalEntryType, error) {
	switch s {
	case "Bank Entry":
		return JournalEntryTypeBankEntry, nil
	case "Journal Entry":
		return JournalEntryTypeJournalEntry, nil
	default:
		return "", errors.New("invalid journal entry type")
	}
}

// ReconciliationStatus is stored on the bank transaction and derived from its
// allocation state, never set directly by callers.
type ReconciliationStatus string

const (
	ReconciliationStatusPending      ReconciliationStatus = "Pending"
	ReconciliationStatusUnreconciled ReconciliationStatus = "Unreconciled"
	ReconciliationStatusReconciled   ReconciliationStatus = "Reconciled"
)

type PartyType string

const (
	PartyTypeCustomer PartyType = "Customer"
	PartyTypeSupplier PartyType = "Supplier"
	PartyTypeEmployee PartyType = "Employee"
)

func ParsePartyType(s string) (PartyType, error) {
	switch s {
	case "Customer":
		return PartyTypeCustomer, nil
	case "Supplier":
		return PartyTypeSupplier, nil
	case "Employee":
		return PartyTypeEmployee, nil
	default:
		return "", errors.New("invalid party type")
	}
}

// AccountType classifies a GL account. Bank matters for reconciliation:
// a journal entry line posted against a Bank account is the statement side.
type AccountType string

const (
	AccountTypeBank       AccountType = "Bank"
	AccountTypeCash       AccountType = "Cash"
	AccountTypeReceivable AccountType = "Receivable"
	AccountTypePayable    AccountType = "Payable"
	AccountTypeExpense    AccountType = "Expense"
	AccountTypeIncome     AccountType = "Income"
	AccountTypeOther      AccountType = "Other"
)

// --- Outbox enums ---

type ReconciliationEventAction string

const (
	ReconciliationEventActionReconcile   ReconciliationEventAction = "Reconcile"
	ReconciliationEventActionBulkCreate  ReconciliationEventAction = "BulkCreate"
	ReconciliationEventActionVoucherLink ReconciliationEventAction = "VoucherLink"
)

type ReconciliationReferenceType string

const (
	ReconciliationReferenceTypeBankTransaction     ReconciliationReferenceType = "BankTransaction"
	ReconciliationReferenceTypeBulkBankTransaction ReconciliationReferenceType = "BulkBankTransaction"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending   OutboxPublishStatus = "Pending"
	OutboxPublishStatusPublished OutboxPublishStatus = "Published"
	OutboxPublishStatusFailed    OutboxPublishStatus = "Failed"
)
