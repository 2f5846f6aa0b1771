package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/utils"
	"gorm.io/gorm"
)

type InvestUnit struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ItemId    int       `gorm:"not null;uniqueIndex:idx_invest_unit_item_name,priority:1" json:"item_id"`
	Name      string    `gorm:"size:20;not null;uniqueIndex:idx_invest_unit_item_name,priority:2" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestUnit struct {
	Name string `json:"name" binding:"required,max=20"`
}

func (input *NewInvestUnit) validate(ctx context.Context, itemId int, id int) error {
	return utils.ValidateUnique[InvestUnit](ctx, 0, "item_id = ?", itemId, "name", input.Name, id)
}

// ValidateUnitOfItem fails with ErrorRecordNotFound unless the unit belongs to the item.
func ValidateUnitOfItem(tx *gorm.DB, itemId int, unitId int) error {
	var count int64
	if err := tx.Model(&InvestUnit{}).Where("id = ? AND item_id = ?", unitId, itemId).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func fetchUnitOfItem(ctx context.Context, itemId int, unitId int) (*InvestUnit, error) {
	db := config.GetDB()
	var unit InvestUnit
	if err := db.WithContext(ctx).Where("item_id = ?", itemId).First(&unit, unitId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &unit, nil
}

func CreateInvestUnit(ctx context.Context, itemId int, input *NewInvestUnit) (*InvestUnit, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, item.ID, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	unit := InvestUnit{
		ItemId: item.ID,
		Name:   input.Name,
	}
	if err := db.WithContext(ctx).Create(&unit).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, utils.NewDuplicateError("name")
		}
		return nil, err
	}
	return &unit, nil
}

func UpdateInvestUnit(ctx context.Context, itemId int, unitId int, input *NewInvestUnit) (*InvestUnit, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	unit, err := fetchUnitOfItem(ctx, item.ID, unitId)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, item.ID, unit.ID); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(unit).Update("Name", input.Name).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, utils.NewDuplicateError("name")
		}
		return nil, err
	}
	unit.Name = input.Name
	invalidateTotalSummaryCache(item.UserId)
	return unit, nil
}

// delete the unit with its histories and summaries
func DeleteInvestUnit(ctx context.Context, itemId int, unitId int) (*InvestUnit, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	unit, err := fetchUnitOfItem(ctx, item.ID, unitId)
	if err != nil {
		return nil, err
	}

	release := utils.ItemLock(ctx, item.ID, "InvestUnit", "DeleteInvestUnit")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&InvestHistory{}, &InvestSummary{}, &InvestSummaryTotal{}} {
			if err := tx.Where("item_id = ? AND unit_id = ?", item.ID, unit.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(unit).Error
	})
	if err != nil {
		return nil, err
	}

	invalidateTotalSummaryCache(item.UserId)
	return unit, nil
}

func ListInvestUnits(ctx context.Context, itemId int) ([]*InvestUnit, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*InvestUnit
	if err := db.WithContext(ctx).Where("item_id = ?", item.ID).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
