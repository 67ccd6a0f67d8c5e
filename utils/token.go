package utils

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	UserId     int    `json:"user_id"`
	BusinessId string `json:"business_id"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "aSecret"
	}
	return []byte(secret)
}

func JwtGenerate(_ context.Context, userId int, businessId string, username string, isAdmin bool) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserId:     userId,
		BusinessId: businessId,
		Username:   username,
		IsAdmin:    isAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	return t.SignedString(getJwtSecret())
}

func JwtValidate(_ context.Context, token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
}
