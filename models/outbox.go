package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationEventRecord is a transactional outbox row: written inside the
// same DB transaction as the reconciliation mutation, published to Pub/Sub
// afterwards by the dispatcher. A commit therefore never depends on the
// broker being reachable.
type ReconciliationEventRecord struct {
	ID                  int                         `gorm:"primary_key" json:"id"`
	BusinessId          string                      `gorm:"index" json:"business_id"`
	TransactionDateTime time.Time                   `gorm:"not null" json:"transaction_date_time"`
	ReferenceId         int                         `gorm:"index;not null" json:"reference_id"`
	ReferenceType       ReconciliationReferenceType `gorm:"not null;type:enum('BankTransaction','BulkBankTransaction');" json:"reference_type"`
	Action              ReconciliationEventAction   `gorm:"not null;type:enum('Reconcile','BulkCreate','VoucherLink');" json:"action"`
	NewObj              []byte                      `gorm:"type:json" json:"new_obj"`
	PublishStatus       OutboxPublishStatus         `gorm:"not null;type:enum('Pending','Published','Failed');default:'Pending'" json:"publish_status"`
	PublishAttempts     int                         `gorm:"default:0" json:"publish_attempts"`
	PublishedAt         *time.Time                  `json:"published_at"`
	CorrelationId       string                      `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r ReconciliationEventRecord) GetId() int {
	return r.ID
}

// RecordReconciliationEvent writes the outbox row on the caller's transaction.
func RecordReconciliationEvent(ctx context.Context, tx *gorm.DB, businessId string, transactionDateTime time.Time, refId int, refType ReconciliationReferenceType, action ReconciliationEventAction, obj interface{}) error {
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	record := ReconciliationEventRecord{
		BusinessId:          businessId,
		TransactionDateTime: transactionDateTime,
		ReferenceId:         refId,
		ReferenceType:       refType,
		Action:              action,
		NewObj:              objInByte,
		PublishStatus:       OutboxPublishStatusPending,
		CorrelationId:       correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
