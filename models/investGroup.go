package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/utils"
	"gorm.io/gorm"
)

type InvestGroup struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      int       `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestGroup struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (input *NewInvestGroup) validate(ctx context.Context, userId int, id int) error {
	return utils.ValidateUnique[InvestGroup](ctx, userId, "user_id = ?", userId, "name", input.Name, id)
}

func CreateInvestGroup(ctx context.Context, input *NewInvestGroup) (*InvestGroup, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	group := InvestGroup{
		UserId:      userId,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func UpdateInvestGroup(ctx context.Context, id int, input *NewInvestGroup) (*InvestGroup, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	group, err := utils.FetchModel[InvestGroup](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(group).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}).Error; err != nil {
		return nil, err
	}
	group.Name = input.Name
	group.Description = input.Description
	invalidateTotalSummaryCache(userId)
	return group, nil
}

// delete the group, items in it are kept without a group
func DeleteInvestGroup(ctx context.Context, id int) (*InvestGroup, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	group, err := utils.FetchModel[InvestGroup](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&InvestItem{}).
			Where("user_id = ? AND group_id = ?", userId, id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		return nil, err
	}
	invalidateTotalSummaryCache(userId)
	return group, nil
}

func GetInvestGroup(ctx context.Context, id int) (*InvestGroup, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[InvestGroup](ctx, userId, id)
}

func ListInvestGroups(ctx context.Context) ([]*InvestGroup, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchAllModels[InvestGroup](ctx, userId, "name")
}
