package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/invest_backend/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "KR"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizePhoneNumber validates the number for countryCode and returns it in E164.
func NormalizePhoneNumber(phoneNumber, countryCode string) (string, error) {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return "", err
	}

	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}

	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// ProcessValidationErrors maps binding errors to field -> failed tag.
func ProcessValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

// returns slice removing duplicate elements
func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// ItemLock obtains a best-effort redis lock for an invest item.
// The returned release func is never nil; when redis is unavailable or the
// lock is held elsewhere the caller proceeds and relies on the DB transaction.
func ItemLock(ctx context.Context, itemId int, moduleName string, functionName string) func() {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	noop := func() {}
	if locker == nil {
		return noop
	}
	lockKey := fmt.Sprintf("lock:invest-item:%d", itemId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": functionName,
			"item_id":  itemId,
		}).Warn("could not obtain redis lock; proceeding without redis lock")
		return noop
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for item", itemId, err)
		return noop
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil {
			logger.WithFields(logrus.Fields{
				"module":   moduleName,
				"funcName": functionName,
				"item_id":  itemId,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}
}
