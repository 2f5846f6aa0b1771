package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/utils"
	"gorm.io/gorm"
)

type InvestItem struct {
	ID          int        `gorm:"primary_key" json:"id"`
	UserId      int        `gorm:"index;not null" json:"user_id"`
	GroupId     *int       `gorm:"index" json:"group_id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	ItemType    string     `gorm:"size:50" json:"item_type"`
	Description *string    `gorm:"size:255" json:"description"`
	ClosedAt    *time.Time `gorm:"type:date" json:"closed_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestItem struct {
	GroupId     *int    `json:"group_id"`
	Name        string  `json:"name" binding:"required,max=100"`
	ItemType    string  `json:"item_type" binding:"max=50"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	ClosedAt    *string `json:"closed_at" binding:"omitempty,datetime=2006-01-02"`
}

// isClosedBefore reports whether periodStart lies after the closure date.
func (item *InvestItem) isClosedBefore(periodStart time.Time) bool {
	return item.ClosedAt != nil && periodStart.After(*item.ClosedAt)
}

// clampToClosure returns min(date, closedAt).
func (item *InvestItem) clampToClosure(date time.Time) time.Time {
	if item.ClosedAt != nil && item.ClosedAt.Before(date) {
		return utils.NormalizeDate(*item.ClosedAt)
	}
	return date
}

func (input *NewInvestItem) validate(ctx context.Context, userId int, id int) (*time.Time, error) {
	if input.GroupId != nil && *input.GroupId <= 0 {
		input.GroupId = nil
	}
	if input.GroupId != nil {
		if err := utils.ValidateResourceId[InvestGroup](ctx, userId, *input.GroupId); err != nil {
			return nil, utils.NewInputError("group %d not found", *input.GroupId)
		}
	}
	if err := utils.ValidateUnique[InvestItem](ctx, userId, "user_id = ?", userId, "name", input.Name, id); err != nil {
		return nil, err
	}

	if input.ClosedAt == nil || *input.ClosedAt == "" {
		return nil, nil
	}
	closedAt, err := utils.ParseDate(*input.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &closedAt, nil
}

func CreateInvestItem(ctx context.Context, input *NewInvestItem) (*InvestItem, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	closedAt, err := input.validate(ctx, userId, 0)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	item := InvestItem{
		UserId:      userId,
		GroupId:     input.GroupId,
		Name:        input.Name,
		ItemType:    input.ItemType,
		Description: input.Description,
		ClosedAt:    closedAt,
	}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateInvestItem(ctx context.Context, id int, input *NewInvestItem) (*InvestItem, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[InvestItem](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	closedAt, err := input.validate(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	previousClosedAt := item.ClosedAt

	release := utils.ItemLock(ctx, item.ID, "InvestItem", "UpdateInvestItem")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Updates(map[string]interface{}{
			"GroupId":     input.GroupId,
			"Name":        input.Name,
			"ItemType":    input.ItemType,
			"Description": input.Description,
			"ClosedAt":    closedAt,
		}).Error; err != nil {
			return err
		}
		item.GroupId = input.GroupId
		item.Name = input.Name
		item.ItemType = input.ItemType
		item.Description = input.Description
		item.ClosedAt = closedAt

		return item.applyClosure(tx, previousClosedAt)
	})
	if err != nil {
		return nil, err
	}

	invalidateTotalSummaryCache(userId)
	return item, nil
}

// applyClosure brings every unit's summaries in line with a changed closure date.
func (item *InvestItem) applyClosure(tx *gorm.DB, previous *time.Time) error {
	current := item.ClosedAt
	if sameDatePtr(previous, current) {
		return nil
	}

	unitIds, err := itemUnitIds(tx, item.ID)
	if err != nil {
		return err
	}

	// closed or closed earlier: truncate
	if current != nil && (previous == nil || current.Before(*previous)) {
		for _, unitId := range unitIds {
			if err := UpdateSummariesFrom(tx, item.ID, unitId, *current); err != nil {
				return err
			}
			if _, err := UpsertYearSummary(tx, item.ID, unitId, *current); err != nil {
				return err
			}
			if _, err := UpsertTotalSummary(tx, item.ID, unitId); err != nil {
				return err
			}
		}
		return nil
	}

	// reopened or closed later: periods that were cut off have to come back
	for _, unitId := range unitIds {
		if err := RebuildSummaries(tx, item.ID, unitId); err != nil {
			return err
		}
	}
	return nil
}

func sameDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func itemUnitIds(tx *gorm.DB, itemId int) ([]int, error) {
	var unitIds []int
	if err := tx.Model(&InvestUnit{}).Where("item_id = ?", itemId).Order("id").Pluck("id", &unitIds).Error; err != nil {
		return nil, err
	}
	return unitIds, nil
}

// delete the item with its units, histories and summaries
func DeleteInvestItem(ctx context.Context, id int) (*InvestItem, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[InvestItem](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&InvestHistory{}, &InvestSummary{}, &InvestSummaryTotal{}, &InvestUnit{}} {
			if err := tx.Where("item_id = ?", item.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		return nil, err
	}

	invalidateTotalSummaryCache(userId)
	return item, nil
}

func GetInvestItem(ctx context.Context, id int) (*InvestItem, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[InvestItem](ctx, userId, id)
}

func ListInvestItems(ctx context.Context, groupId *int) ([]*InvestItem, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if groupId != nil {
		dbCtx = dbCtx.Where("group_id = ?", *groupId)
	}
	var results []*InvestItem
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
