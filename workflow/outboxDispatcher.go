package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxDispatcher drains pending reconciliation event records into Pub/Sub.
// Multiple instances can run concurrently: claiming uses FOR UPDATE SKIP
// LOCKED so two dispatchers never publish the same record.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	DispatcherID string

	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:           db,
		Logger:       logger,
		DispatcherID: uuid.NewString(),
		BatchSize:    50,
		PollInterval: time.Second,
		MaxAttempts:  20,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	db := d.DB
	if db == nil {
		return
	}

	var claimed []models.ReconciliationEventRecord
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("publish_status IN ?", []models.OutboxPublishStatus{
				models.OutboxPublishStatusPending,
				models.OutboxPublishStatusFailed,
			}).
			Where("publish_attempts < ?", d.MaxAttempts).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		for i := range claimed {
			claimed[i].PublishAttempts++
			if err := tx.Model(&models.ReconciliationEventRecord{}).
				Where("id = ?", claimed[i].ID).
				Update("publish_attempts", gorm.Expr("publish_attempts + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, rec := range claimed {
		msg := config.PubSubMessage{
			ID:                  rec.ID,
			BusinessId:          rec.BusinessId,
			TransactionDateTime: rec.TransactionDateTime,
			ReferenceId:         rec.ReferenceId,
			ReferenceType:       string(rec.ReferenceType),
			Action:              string(rec.Action),
			NewObj:              rec.NewObj,
			CorrelationId:       rec.CorrelationId,
		}
		if _, pubErr := config.PublishReconciliationEvent(ctx, msg); pubErr != nil {
			d.markFailed(ctx, rec, pubErr)
			continue
		}
		d.markPublished(ctx, rec.ID)
	}
}

func (d *OutboxDispatcher) markPublished(ctx context.Context, recordID int) {
	now := time.Now().UTC()
	_ = d.DB.WithContext(ctx).Model(&models.ReconciliationEventRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"publish_status": models.OutboxPublishStatusPublished,
			"published_at":   &now,
		}).Error
}

func (d *OutboxDispatcher) markFailed(ctx context.Context, rec models.ReconciliationEventRecord, pubErr error) {
	_ = d.DB.WithContext(ctx).Model(&models.ReconciliationEventRecord{}).
		Where("id = ?", rec.ID).
		Update("publish_status", models.OutboxPublishStatusFailed).Error

	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{
			"field":       "OutboxDispatcher",
			"business_id": rec.BusinessId,
			"record_id":   rec.ID,
			"attempt":     rec.PublishAttempts,
		}).Error("outbox publish failed: " + pubErr.Error())
	}
}
