package models

import "bitbucket.org/mmdatafocus/recon_backend/config"

// Migrate runs gorm auto-migration for every persisted model.
func Migrate() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Account{},
		&BankAccount{},
		&BankTransaction{},
		&BankTransactionPayment{},
		&PaymentEntry{},
		&JournalEntry{},
		&JournalEntryAccount{},
		&BulkBankTransaction{},
		&BulkBankTransactionRow{},
		&ReconciliationEventRecord{},
		&Party{},
		&User{},
	)
}
