package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
)

type JournalEntry struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	BusinessId    string                `gorm:"index" json:"business_id" binding:"required"`
	PostingDate   time.Time             `gorm:"not null" json:"posting_date" binding:"required"`
	EntryType     JournalEntryType      `gorm:"not null;type:enum('Bank Entry','Journal Entry');" json:"entry_type"`
	ChequeNumber  string                `gorm:"size:255;default:null" json:"cheque_number"`
	ChequeDate    *time.Time            `json:"cheque_date"`
	ClearanceDate *time.Time            `json:"clearance_date"`
	Accounts      []JournalEntryAccount `gorm:"foreignKey:JournalEntryId" json:"accounts"`
	CreatedBy     string                `gorm:"size:255;default:null" json:"created_by"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j JournalEntry) GetId() int {
	return j.ID
}

type JournalEntryAccount struct {
	ID             int             `gorm:"primary_key" json:"id"`
	JournalEntryId int             `gorm:"index" json:"journal_entry_id"`
	AccountId      int             `gorm:"index;not null" json:"account_id"`
	AccountType    AccountType     `gorm:"type:enum('Bank','Cash','Receivable','Payable','Expense','Income','Other');default:null" json:"account_type"`
	Debit          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	PartyType      PartyType       `gorm:"type:enum('Customer','Supplier','Employee');default:null" json:"party_type"`
	PartyId        int             `gorm:"index" json:"party_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a JournalEntryAccount) GetId() int {
	return a.ID
}

// MatchableAmount scans the entry's lines for the bank-typed one and returns
// the absolute debit-credit balance of that line in account currency. Entries
// with no bank-typed line resolve to zero.
func (j JournalEntry) MatchableAmount() decimal.Decimal {
	for _, line := range j.Accounts {
		if line.AccountType == AccountTypeBank {
			return line.Debit.Sub(line.Credit).Abs()
		}
	}
	return decimal.Zero
}

type NewJournalEntryAccount struct {
	AccountId int             `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	PartyType PartyType       `json:"party_type"`
	PartyId   int             `json:"party_id"`
}

type NewJournalEntry struct {
	PostingDate  time.Time                `json:"posting_date" binding:"required"`
	EntryType    JournalEntryType         `json:"entry_type" binding:"required"`
	ChequeNumber string                   `json:"cheque_number"`
	ChequeDate   *time.Time               `json:"cheque_date"`
	Accounts     []NewJournalEntryAccount `json:"accounts" binding:"required"`
}

func (input NewJournalEntry) validate(ctx context.Context, businessId string) error {
	if _, err := ParseJournalEntryType(string(input.EntryType)); err != nil {
		return err
	}
	if len(input.Accounts) < 2 {
		return errors.New("a journal entry needs at least two account lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range input.Accounts {
		if err := utils.ValidateResourceId[Account](ctx, businessId, line.AccountId); err != nil {
			return errors.New("account id not found")
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return errors.New("total debit and total credit must balance")
	}
	return nil
}

func CreateJournalEntry(ctx context.Context, input *NewJournalEntry) (*JournalEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	var lines []JournalEntryAccount
	for _, line := range input.Accounts {
		account, err := utils.FetchModel[Account](ctx, businessId, line.AccountId)
		if err != nil {
			return nil, errors.New("account id not found")
		}
		lines = append(lines, JournalEntryAccount{
			AccountId:   line.AccountId,
			AccountType: account.AccountType,
			Debit:       line.Debit,
			Credit:      line.Credit,
			PartyType:   line.PartyType,
			PartyId:     line.PartyId,
		})
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	journalEntry := JournalEntry{
		BusinessId:   businessId,
		PostingDate:  input.PostingDate,
		EntryType:    input.EntryType,
		ChequeNumber: input.ChequeNumber,
		ChequeDate:   input.ChequeDate,
		Accounts:     lines,
		CreatedBy:    username,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&journalEntry).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &journalEntry, nil
}

func GetJournalEntry(ctx context.Context, id int) (*JournalEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[JournalEntry](ctx, businessId, id, "Accounts")
}
