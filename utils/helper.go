package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"

	"bitbucket.org/mmdatafocus/recon_backend/config"
)

// UniqueSlice returns the slice with duplicates removed, first occurrence
// order preserved.
func UniqueSlice[T comparable](s []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, v := range s {
		if _, ok := inResult[v]; !ok {
			inResult[v] = true
			result = append(result, v)
		}
	}
	return result
}

func ParseDecimal(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// ConvertToDate truncates a timestamp to its date, keeping the location.
func ConvertToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func ValidatePhoneNumber(phone string) bool {
	num, err := libphonenumber.Parse(phone, "MM")
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

// ProcessValidationErrors flattens validator.ValidationErrors into one
// readable error message.
func ProcessValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		msgs = append(msgs, ve.Field()+" failed on "+ve.Tag())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// BusinessLock serializes reconciliation mutations per business.
// Caller must Release the returned lock.
func BusinessLock(ctx context.Context, businessId string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, errors.New("redis locker is not ready")
	}

	key := "business_lock:" + businessId
	lock, err := locker.Obtain(ctx, key, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 50),
	})
	if err == redislock.ErrNotObtained {
		return nil, errors.New("another reconciliation is in progress for this business")
	}
	return lock, err
}
