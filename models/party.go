package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
)

// Party is the customer/supplier/employee master a payment entry points at.
type Party struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index" json:"business_id" binding:"required"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	PartyType  PartyType `gorm:"not null;type:enum('Customer','Supplier','Employee');" json:"party_type"`
	Phone      string    `gorm:"size:50;default:null" json:"phone"`
	Email      string    `gorm:"size:255;default:null" json:"email"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Party) GetId() int {
	return p.ID
}

type NewParty struct {
	Name      string    `json:"name" binding:"required"`
	PartyType PartyType `json:"party_type" binding:"required"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
}

func (input NewParty) validate(ctx context.Context, businessId string) error {
	if _, err := ParsePartyType(string(input.PartyType)); err != nil {
		return err
	}
	if input.Phone != "" && !utils.ValidatePhoneNumber(input.Phone) {
		return errors.New("invalid phone number")
	}
	return utils.ValidateUnique[Party](ctx, businessId, "name", input.Name, 0)
}

func CreateParty(ctx context.Context, input *NewParty) (*Party, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	party := Party{
		BusinessId: businessId,
		Name:       input.Name,
		PartyType:  input.PartyType,
		Phone:      input.Phone,
		Email:      input.Email,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&party).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

func GetParty(ctx context.Context, id int) (*Party, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Party](ctx, businessId, id)
}
