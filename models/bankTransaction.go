package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BankTransaction struct {
	ID                int                      `gorm:"primary_key" json:"id"`
	BusinessId        string                   `gorm:"index" json:"business_id" binding:"required"`
	BankAccountId     int                      `gorm:"index;not null" json:"bank_account_id"`
	TransactionDate   time.Time                `gorm:"not null" json:"transaction_date" binding:"required"`
	ReferenceNumber   string                   `gorm:"size:255;default:null" json:"reference_number"`
	Description       string                   `gorm:"type:text;default:null" json:"description"`
	Deposit           decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"deposit"`
	Withdrawal        decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"withdrawal"`
	CurrencyId        int                      `gorm:"index" json:"currency_id"`
	AllocatedAmount   decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"unallocated_amount"`
	Status            ReconciliationStatus     `gorm:"not null;type:enum('Pending','Unreconciled','Reconciled');default:'Pending'" json:"status"`
	PartyType         PartyType                `gorm:"type:enum('Customer','Supplier','Employee');default:null" json:"party_type"`
	PartyId           int                      `gorm:"index" json:"party_id"`
	Payments          []BankTransactionPayment `gorm:"foreignKey:BankTransactionId" json:"payments"`
	CreatedBy         string                   `gorm:"size:255;default:null" json:"created_by"`
	CreatedAt         time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

func (bt BankTransaction) GetId() int {
	return bt.ID
}

// TotalAmount is the statement-side amount a transaction can absorb. Exactly
// one of deposit/withdrawal is expected to be non-zero, but the sum is used
// so a malformed import still reconciles consistently.
func (bt BankTransaction) TotalAmount() decimal.Decimal {
	return bt.Deposit.Add(bt.Withdrawal)
}

// BankTransactionPayment links one voucher to a bank transaction with the
// amount that match consumed.
type BankTransactionPayment struct {
	ID                int             `gorm:"primary_key" json:"id"`
	BankTransactionId int             `gorm:"index" json:"bank_transaction_id"`
	VoucherType       VoucherType     `gorm:"not null;type:enum('Payment Entry','Journal Entry');" json:"voucher_type"`
	VoucherId         int             `gorm:"index;not null" json:"voucher_id"`
	AllocatedAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"allocated_amount"`
	ClearanceDate     *time.Time      `json:"clearance_date"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p BankTransactionPayment) GetId() int {
	return p.ID
}

// DeriveAllocation recomputes the unallocated remainder and status from the
// total and the sum of matched amounts. Status never goes back to Pending
// once an allocation exists.
func DeriveAllocation(total decimal.Decimal, allocated decimal.Decimal) (decimal.Decimal, ReconciliationStatus) {
	unallocated := total.Sub(allocated)
	switch {
	case allocated.IsZero():
		return unallocated, ReconciliationStatusUnreconciled
	case unallocated.IsZero():
		return unallocated, ReconciliationStatusReconciled
	default:
		return unallocated, ReconciliationStatusUnreconciled
	}
}

type NewBankTransaction struct {
	BankAccountId   int             `json:"bank_account_id" binding:"required"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Description     string          `json:"description"`
	Deposit         decimal.Decimal `json:"deposit"`
	Withdrawal      decimal.Decimal `json:"withdrawal"`
	CurrencyId      int             `json:"currency_id"`
	PartyType       PartyType       `json:"party_type"`
	PartyId         int             `json:"party_id"`
}

func (input NewBankTransaction) validate(ctx context.Context, businessId string) error {
	if err := utils.ValidateResourceId[BankAccount](ctx, businessId, input.BankAccountId); err != nil {
		return errors.New("bank account id not found")
	}
	if input.Deposit.IsNegative() || input.Withdrawal.IsNegative() {
		return errors.New("deposit and withdrawal cannot be negative")
	}
	if input.Deposit.IsZero() && input.Withdrawal.IsZero() {
		return errors.New("either deposit or withdrawal is required")
	}
	if input.PartyType != "" {
		if _, err := ParsePartyType(string(input.PartyType)); err != nil {
			return err
		}
	}
	return nil
}

func CreateBankTransaction(ctx context.Context, input *NewBankTransaction) (*BankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	bankTransaction := BankTransaction{
		BusinessId:        businessId,
		BankAccountId:     input.BankAccountId,
		TransactionDate:   input.TransactionDate,
		ReferenceNumber:   input.ReferenceNumber,
		Description:       input.Description,
		Deposit:           input.Deposit,
		Withdrawal:        input.Withdrawal,
		CurrencyId:        input.CurrencyId,
		PartyType:         input.PartyType,
		PartyId:           input.PartyId,
		Status:            ReconciliationStatusPending,
		UnallocatedAmount: input.Deposit.Add(input.Withdrawal),
		CreatedBy:         username,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&bankTransaction).Error; err != nil {
		return nil, err
	}
	return &bankTransaction, nil
}

// CreateBankTransactionTx is the variant bulk creation uses: it writes within
// the caller's transaction so a whole batch row failure can be isolated.
func CreateBankTransactionTx(tx *gorm.DB, ctx context.Context, businessId string, input *NewBankTransaction) (*BankTransaction, error) {
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	bankTransaction := BankTransaction{
		BusinessId:        businessId,
		BankAccountId:     input.BankAccountId,
		TransactionDate:   input.TransactionDate,
		ReferenceNumber:   input.ReferenceNumber,
		Description:       input.Description,
		Deposit:           input.Deposit,
		Withdrawal:        input.Withdrawal,
		CurrencyId:        input.CurrencyId,
		PartyType:         input.PartyType,
		PartyId:           input.PartyId,
		Status:            ReconciliationStatusPending,
		UnallocatedAmount: input.Deposit.Add(input.Withdrawal),
		CreatedBy:         username,
	}
	if err := tx.WithContext(ctx).Create(&bankTransaction).Error; err != nil {
		return nil, err
	}
	return &bankTransaction, nil
}

func GetBankTransaction(ctx context.Context, id int) (*BankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[BankTransaction](ctx, businessId, id, "Payments")
}

func DeleteBankTransaction(ctx context.Context, id int) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}

	bankTransaction, err := utils.FetchModel[BankTransaction](ctx, businessId, id)
	if err != nil {
		return err
	}
	if bankTransaction.Status == ReconciliationStatusReconciled {
		return errors.New("a reconciled bank transaction cannot be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&bankTransaction).Association("Payments").Unscoped().Clear(); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.WithContext(ctx).Delete(&bankTransaction).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
