package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/config"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index" json:"business_id"`
	Username   string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	IsAdmin    bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u User) GetId() int {
	return u.ID
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a signed token carrying the user's
// business id.
func Login(ctx context.Context, input *LoginInput) (string, error) {
	db := config.GetDB()

	var user User
	if err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error; err != nil {
		return "", errors.New("invalid username or password")
	}
	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return "", errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(ctx, user.ID, user.BusinessId, user.Username, user.IsAdmin)
	if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "Login", "JwtGenerate", user.Username, err)
		return "", errors.New("could not issue token")
	}
	return token, nil
}
