package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
)

type BankAccount struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index" json:"business_id" binding:"required"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	BankName      string    `gorm:"size:255;default:null" json:"bank_name"`
	AccountNumber string    `gorm:"size:255;default:null" json:"account_number"`
	GLAccountId   int       `gorm:"index;not null" json:"gl_account_id"`
	CurrencyId    int       `gorm:"index" json:"currency_id"`
	IsCompany     bool      `gorm:"default:true" json:"is_company"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b BankAccount) GetId() int {
	return b.ID
}

type NewBankAccount struct {
	Name          string `json:"name" binding:"required"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	GLAccountId   int    `json:"gl_account_id" binding:"required"`
	CurrencyId    int    `json:"currency_id"`
	IsCompany     *bool  `json:"is_company"`
}

func (input NewBankAccount) validate(ctx context.Context, businessId string, exceptId int) error {
	if err := utils.ValidateResourceId[Account](ctx, businessId, input.GLAccountId); err != nil {
		return errors.New("gl account id not found")
	}
	isBank, err := IsBankAccountType(ctx, businessId, input.GLAccountId)
	if err != nil {
		return err
	}
	if !isBank {
		return errors.New("gl account must be a bank-typed account")
	}
	if err := utils.ValidateUnique[BankAccount](ctx, businessId, "name", input.Name, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateBankAccount(ctx context.Context, input *NewBankAccount) (*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	isCompany := true
	if input.IsCompany != nil {
		isCompany = *input.IsCompany
	}
	bankAccount := BankAccount{
		BusinessId:    businessId,
		Name:          input.Name,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		GLAccountId:   input.GLAccountId,
		CurrencyId:    input.CurrencyId,
		IsCompany:     isCompany,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&bankAccount).Error; err != nil {
		return nil, err
	}
	return &bankAccount, nil
}

// UpdateBankAccount saves the changed fields and drops the cached copy so
// the next read sees them.
func UpdateBankAccount(ctx context.Context, id int, input *NewBankAccount) (*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	bankAccount, err := utils.FetchModel[BankAccount](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	bankAccount.Name = input.Name
	bankAccount.BankName = input.BankName
	bankAccount.AccountNumber = input.AccountNumber
	bankAccount.GLAccountId = input.GLAccountId
	bankAccount.CurrencyId = input.CurrencyId
	if input.IsCompany != nil {
		bankAccount.IsCompany = *input.IsCompany
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(bankAccount).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey(fmt.Sprintf("bankAccount:%s:%d", businessId, id)); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "UpdateBankAccount", "RemoveRedisKey", id, err)
	}
	return bankAccount, nil
}

func GetBankAccounts(ctx context.Context) ([]*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[BankAccount](ctx, businessId)
}

// GetBankAccount reads through a short-lived redis cache; the report surface
// resolves the same bank account repeatedly per render.
func GetBankAccount(ctx context.Context, id int) (*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	redisKey := fmt.Sprintf("bankAccount:%s:%d", businessId, id)
	var cached BankAccount
	exists, err := config.GetRedisObject(redisKey, &cached)
	if err == nil && exists {
		return &cached, nil
	}

	bankAccount, err := utils.FetchModel[BankAccount](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(redisKey, bankAccount, 5*time.Minute); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "GetBankAccount", "SetRedisObject", redisKey, err)
	}
	return bankAccount, nil
}

// GetBankAccountGLAccount resolves the GL account behind a bank account.
// Navigation to the general ledger needs the GL account, not the bank account.
func GetBankAccountGLAccount(ctx context.Context, bankAccountId int) (*Account, error) {
	bankAccount, err := GetBankAccount(ctx, bankAccountId)
	if err != nil {
		return nil, err
	}
	return GetAccount(ctx, bankAccount.GLAccountId)
}
