package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
)

// BulkBankTransaction is the parent request for batch materialization of
// statement lines. Rows stay pending until a bank transaction id is written
// back into them.
type BulkBankTransaction struct {
	ID            int                      `gorm:"primary_key" json:"id"`
	BusinessId    string                   `gorm:"index" json:"business_id" binding:"required"`
	BankAccountId int                      `gorm:"index;not null" json:"bank_account_id"`
	Rows          []BulkBankTransactionRow `gorm:"foreignKey:BulkBankTransactionId" json:"rows"`
	CreatedBy     string                   `gorm:"size:255;default:null" json:"created_by"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b BulkBankTransaction) GetId() int {
	return b.ID
}

type BulkBankTransactionRow struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	BulkBankTransactionId int             `gorm:"index" json:"bulk_bank_transaction_id"`
	RowOrder              int             `gorm:"not null" json:"row_order"`
	TransactionDate       time.Time       `gorm:"not null" json:"transaction_date"`
	Deposit               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deposit"`
	Withdrawal            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"withdrawal"`
	ReferenceNumber       string          `gorm:"size:255;default:null" json:"reference_number"`
	Description           string          `gorm:"type:text;default:null" json:"description"`
	BankTransactionId     int             `gorm:"index;default:0" json:"bank_transaction_id"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r BulkBankTransactionRow) GetId() int {
	return r.ID
}

type NewBulkBankTransactionRow struct {
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Deposit         decimal.Decimal `json:"deposit"`
	Withdrawal      decimal.Decimal `json:"withdrawal"`
	ReferenceNumber string          `json:"reference_number"`
	Description     string          `json:"description"`
}

type NewBulkBankTransaction struct {
	BankAccountId int                         `json:"bank_account_id" binding:"required"`
	Rows          []NewBulkBankTransactionRow `json:"rows"`
}

func (input NewBulkBankTransaction) validate(ctx context.Context, businessId string) error {
	if err := utils.ValidateResourceId[BankAccount](ctx, businessId, input.BankAccountId); err != nil {
		return errors.New("bank account id not found")
	}
	for _, row := range input.Rows {
		if row.Deposit.IsNegative() || row.Withdrawal.IsNegative() {
			return errors.New("row deposit and withdrawal cannot be negative")
		}
	}
	return nil
}

func CreateBulkBankTransaction(ctx context.Context, input *NewBulkBankTransaction) (*BulkBankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	var rows []BulkBankTransactionRow
	for i, row := range input.Rows {
		rows = append(rows, BulkBankTransactionRow{
			RowOrder:        i + 1,
			TransactionDate: row.TransactionDate,
			Deposit:         row.Deposit,
			Withdrawal:      row.Withdrawal,
			ReferenceNumber: row.ReferenceNumber,
			Description:     row.Description,
		})
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	bulk := BulkBankTransaction{
		BusinessId:    businessId,
		BankAccountId: input.BankAccountId,
		Rows:          rows,
		CreatedBy:     username,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&bulk).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &bulk, nil
}

// UpdateBulkBankTransaction replaces the pending rows of the parent. Rows
// already materialized into bank transactions are kept untouched.
func UpdateBulkBankTransaction(ctx context.Context, id int, input *NewBulkBankTransaction) (*BulkBankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	bulk, err := utils.FetchModel[BulkBankTransaction](ctx, businessId, id, "Rows")
	if err != nil {
		return nil, err
	}

	var kept []BulkBankTransactionRow
	for _, row := range bulk.Rows {
		if row.BankTransactionId > 0 {
			kept = append(kept, row)
		}
	}
	order := len(kept)
	newRows := kept
	for _, row := range input.Rows {
		order++
		newRows = append(newRows, BulkBankTransactionRow{
			BulkBankTransactionId: bulk.ID,
			RowOrder:              order,
			TransactionDate:       row.TransactionDate,
			Deposit:               row.Deposit,
			Withdrawal:            row.Withdrawal,
			ReferenceNumber:       row.ReferenceNumber,
			Description:           row.Description,
		})
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).
		Where("bulk_bank_transaction_id = ? AND bank_transaction_id = 0", bulk.ID).
		Delete(&BulkBankTransactionRow{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	bulk.BankAccountId = input.BankAccountId
	bulk.Rows = nil
	if err := tx.WithContext(ctx).Save(&bulk).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range newRows {
		if newRows[i].ID > 0 {
			continue
		}
		if err := tx.WithContext(ctx).Create(&newRows[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	bulk.Rows = newRows
	return bulk, nil
}

func GetBulkBankTransaction(ctx context.Context, id int) (*BulkBankTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[BulkBankTransaction](ctx, businessId, id, "Rows")
}
