package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"github.com/shopspring/decimal"
)

type PaymentEntry struct {
	ID                     int             `gorm:"primary_key" json:"id"`
	BusinessId             string          `gorm:"index" json:"business_id" binding:"required"`
	PostingDate            time.Time       `gorm:"not null" json:"posting_date" binding:"required"`
	PaymentType            PaymentType     `gorm:"not null;type:enum('Receive','Pay');" json:"payment_type"`
	PartyType              PartyType       `gorm:"type:enum('Customer','Supplier','Employee');default:null" json:"party_type"`
	PartyId                int             `gorm:"index" json:"party_id"`
	ReferenceNumber        string          `gorm:"size:255;default:null" json:"reference_number"`
	ReferenceDate          *time.Time      `json:"reference_date"`
	PaidAmount             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	BasePaidAmountAfterTax decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_paid_amount_after_tax"`
	PaidFromAccountId      int             `gorm:"index" json:"paid_from_account_id"`
	PaidToAccountId        int             `gorm:"index" json:"paid_to_account_id"`
	CurrencyId             int             `gorm:"index" json:"currency_id"`
	ClearanceDate          *time.Time      `json:"clearance_date"`
	CreatedBy              string          `gorm:"size:255;default:null" json:"created_by"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p PaymentEntry) GetId() int {
	return p.ID
}

// MatchableAmount is the amount a reconciliation match consumes: the after-tax
// base amount when the entry carries one, else the raw paid amount.
func (p PaymentEntry) MatchableAmount() decimal.Decimal {
	if !p.BasePaidAmountAfterTax.IsZero() {
		return p.BasePaidAmountAfterTax
	}
	return p.PaidAmount
}

type NewPaymentEntry struct {
	PostingDate            time.Time       `json:"posting_date" binding:"required"`
	PaymentType            PaymentType     `json:"payment_type" binding:"required"`
	PartyType              PartyType       `json:"party_type"`
	PartyId                int             `json:"party_id"`
	ReferenceNumber        string          `json:"reference_number"`
	ReferenceDate          *time.Time      `json:"reference_date"`
	PaidAmount             decimal.Decimal `json:"paid_amount"`
	BasePaidAmountAfterTax decimal.Decimal `json:"base_paid_amount_after_tax"`
	PaidFromAccountId      int             `json:"paid_from_account_id"`
	PaidToAccountId        int             `json:"paid_to_account_id"`
	CurrencyId             int             `json:"currency_id"`
}

func (input NewPaymentEntry) validate(ctx context.Context, businessId string) error {
	if _, err := ParsePaymentType(string(input.PaymentType)); err != nil {
		return err
	}
	if input.PartyType != "" {
		if _, err := ParsePartyType(string(input.PartyType)); err != nil {
			return err
		}
		if input.PartyId <= 0 {
			return errors.New("party id is required with party type")
		}
		if err := utils.ValidateResourceId[Party](ctx, businessId, input.PartyId); err != nil {
			return errors.New("party id not found")
		}
	}
	if input.PaidFromAccountId > 0 {
		if err := utils.ValidateResourceId[Account](ctx, businessId, input.PaidFromAccountId); err != nil {
			return errors.New("paid from account id not found")
		}
	}
	if input.PaidToAccountId > 0 {
		if err := utils.ValidateResourceId[Account](ctx, businessId, input.PaidToAccountId); err != nil {
			return errors.New("paid to account id not found")
		}
	}
	if input.PaidAmount.IsNegative() {
		return errors.New("paid amount cannot be negative")
	}
	return nil
}

func CreatePaymentEntry(ctx context.Context, input *NewPaymentEntry) (*PaymentEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	paymentEntry := PaymentEntry{
		BusinessId:             businessId,
		PostingDate:            input.PostingDate,
		PaymentType:            input.PaymentType,
		PartyType:              input.PartyType,
		PartyId:                input.PartyId,
		ReferenceNumber:        input.ReferenceNumber,
		ReferenceDate:          input.ReferenceDate,
		PaidAmount:             input.PaidAmount,
		BasePaidAmountAfterTax: input.BasePaidAmountAfterTax,
		PaidFromAccountId:      input.PaidFromAccountId,
		PaidToAccountId:        input.PaidToAccountId,
		CurrencyId:             input.CurrencyId,
		CreatedBy:              username,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&paymentEntry).Error; err != nil {
		return nil, err
	}
	return &paymentEntry, nil
}

func GetPaymentEntry(ctx context.Context, id int) (*PaymentEntry, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PaymentEntry](ctx, businessId, id)
}
