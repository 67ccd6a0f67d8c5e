package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/models"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
)

// BulkCreateResult reports both outcomes of a batch materialization. Created
// and Errors are not mutually exclusive: a partially failed batch carries
// both a positive count and the per-row messages.
type BulkCreateResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// pendingRows filters the parent's rows down to those not yet materialized,
// keeping their stored order.
func pendingRows(rows []models.BulkBankTransactionRow) []models.BulkBankTransactionRow {
	var pending []models.BulkBankTransactionRow
	for _, row := range rows {
		if row.BankTransactionId == 0 {
			pending = append(pending, row)
		}
	}
	return pending
}

// CreateBankTransactions materializes the parent's pending rows into bank
// transactions. Each row commits independently so one bad row cannot take
// the batch down; its error is collected instead.
func CreateBankTransactions(ctx context.Context, parentId int) (*BulkCreateResult, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	parent, err := utils.FetchModel[models.BulkBankTransaction](ctx, businessId, parentId, "Rows")
	if err != nil {
		return nil, err
	}

	pending := pendingRows(parent.Rows)
	if len(pending) == 0 {
		return nil, errors.New("there are no pending transactions to create")
	}

	lock, err := utils.BusinessLock(ctx, businessId)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	db := config.GetDB()
	result := &BulkCreateResult{}
	for _, row := range pending {
		input := models.NewBankTransaction{
			BankAccountId:   parent.BankAccountId,
			TransactionDate: row.TransactionDate,
			ReferenceNumber: row.ReferenceNumber,
			Description:     row.Description,
			Deposit:         row.Deposit,
			Withdrawal:      row.Withdrawal,
		}

		tx := db.Begin()
		bankTransaction, err := models.CreateBankTransactionTx(tx, ctx, businessId, &input)
		if err != nil {
			tx.Rollback()
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.RowOrder, err))
			continue
		}
		if err := tx.WithContext(ctx).Model(&models.BulkBankTransactionRow{}).
			Where("id = ?", row.ID).
			Update("bank_transaction_id", bankTransaction.ID).Error; err != nil {
			tx.Rollback()
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.RowOrder, err))
			continue
		}
		if err := tx.Commit().Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.RowOrder, err))
			continue
		}
		result.Created++
	}

	if result.Created > 0 {
		tx := db.Begin()
		if err := models.RecordReconciliationEvent(ctx, tx, businessId, time.Now().UTC(),
			parent.ID, models.ReconciliationReferenceTypeBulkBankTransaction,
			models.ReconciliationEventActionBulkCreate, result); err != nil {
			tx.Rollback()
			logger := config.GetLogger()
			config.LogError(logger, "workflow", "CreateBankTransactions", "RecordReconciliationEvent", parent.ID, err)
		} else if err := tx.Commit().Error; err != nil {
			logger := config.GetLogger()
			config.LogError(logger, "workflow", "CreateBankTransactions", "Commit", parent.ID, err)
		}
	}

	return result, nil
}
