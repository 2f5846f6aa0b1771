package utils

import (
	"context"
	"reflect"

	"github.com/mmdatafocus/invest_backend/config"
)

// check if id exists (scoped by userId when > 0), return RecordNotFound Error
func ValidateResourceId[T any](ctx context.Context, userId int, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, userId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// ValidateUnique fails with a duplicate error when column = value already exists
// within the condition scope (excluding exceptId).
func ValidateUnique[T any](ctx context.Context, userId int, scope string, scopeValue interface{}, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, userId, scope+" AND "+column+" = ?", scopeValue, value)
	} else {
		count, err = ResourceCountWhere[T](ctx, userId, scope+" AND "+column+" = ? AND NOT id = ?", scopeValue, value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return NewDuplicateError(column)
	}
	return nil
}

// count records, using WHERE user_id = ? AND $condition
// userId can be 0 for models without an owner column
func ResourceCountWhere[T any](ctx context.Context, userId int, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
