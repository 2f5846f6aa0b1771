package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/invest_backend/config"
	"gorm.io/gorm"
)

// fetch a model by id
// (WHERE user_id = ? is added when userId > 0)
func FetchModel[T any](ctx context.Context, userId int, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models owned by userId
func FetchAllModels[T any](ctx context.Context, userId int, orders ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	for _, order := range orders {
		dbCtx = dbCtx.Order(order)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
