package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
)

// Account is the slice of the GL chart this service needs: enough to know
// which accounts are bank-typed and to point navigation at the ledger.
type Account struct {
	ID          int         `gorm:"primary_key" json:"id"`
	BusinessId  string      `gorm:"index" json:"business_id" binding:"required"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	AccountType AccountType `gorm:"not null;type:enum('Bank','Cash','Receivable','Payable','Expense','Income','Other');" json:"account_type"`
	CurrencyId  int         `gorm:"index" json:"currency_id"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a Account) GetId() int {
	return a.ID
}

type NewAccount struct {
	Name        string      `json:"name" binding:"required"`
	AccountType AccountType `json:"account_type" binding:"required"`
	CurrencyId  int         `json:"currency_id"`
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	switch input.AccountType {
	case AccountTypeBank, AccountTypeCash, AccountTypeReceivable,
		AccountTypePayable, AccountTypeExpense, AccountTypeIncome, AccountTypeOther:
	default:
		return nil, errors.New("invalid account type")
	}
	if err := utils.ValidateUnique[Account](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	account := Account{
		BusinessId:  businessId,
		Name:        input.Name,
		AccountType: input.AccountType,
		CurrencyId:  input.CurrencyId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Account](ctx, businessId, id)
}

// IsBankAccountType reports whether the GL account is bank-typed.
func IsBankAccountType(ctx context.Context, businessId string, accountId int) (bool, error) {
	if accountId == 0 {
		return false, nil
	}
	db := config.GetDB()
	var accountType AccountType
	if err := db.WithContext(ctx).Model(&Account{}).
		Where("business_id = ? AND id = ?", businessId, accountId).
		Select("account_type").Scan(&accountType).Error; err != nil {
		return false, err
	}
	return accountType == AccountTypeBank, nil
}
