package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvestHistory is one raw dated entry of an (item, unit).
type InvestHistory struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ItemId      int             `gorm:"not null;index:idx_invest_history_item_unit_date,priority:1" json:"item_id"`
	UnitId      int             `gorm:"not null;index:idx_invest_history_item_unit_date,priority:2" json:"unit_id"`
	HistoryDate time.Time       `gorm:"type:date;not null;index:idx_invest_history_item_unit_date,priority:3" json:"history_date"`
	HistoryType HistoryType     `gorm:"size:10;not null" json:"history_type"`
	InoutType   InoutType       `gorm:"size:10" json:"inout_type"`
	RevenueType RevenueType     `gorm:"size:10" json:"revenue_type"`
	Value       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value"`
	Memo        *string         `gorm:"size:255" json:"memo"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestHistory struct {
	UnitId      int             `json:"unit_id" binding:"required"`
	HistoryDate string          `json:"history_date" binding:"required,datetime=2006-01-02"`
	HistoryType HistoryType     `json:"history_type" binding:"required"`
	InoutType   InoutType       `json:"inout_type"`
	RevenueType RevenueType     `json:"revenue_type"`
	Value       decimal.Decimal `json:"value"`
	Memo        *string         `json:"memo" binding:"omitempty,max=255"`
}

type InvestHistoryFilter struct {
	UnitId      *int
	FromDate    *time.Time
	ToDate      *time.Time
	HistoryType *HistoryType
}

// validate checks the type/subtype combination and returns the parsed date.
func (input *NewInvestHistory) validate() (time.Time, error) {
	date, err := utils.ParseDate(input.HistoryDate)
	if err != nil {
		return time.Time{}, err
	}

	switch input.HistoryType {
	case HistoryTypeInout:
		if !input.InoutType.IsValid() {
			return time.Time{}, utils.NewInputError("inout history requires inout_type principal or proceeds")
		}
		if input.RevenueType != "" {
			return time.Time{}, utils.NewInputError("inout history cannot have revenue_type")
		}
	case HistoryTypeRevenue:
		if !input.RevenueType.IsValid() {
			return time.Time{}, utils.NewInputError("revenue history requires revenue_type interest or eval")
		}
		if input.InoutType != "" {
			return time.Time{}, utils.NewInputError("revenue history cannot have inout_type")
		}
	default:
		return time.Time{}, utils.NewInputError("invalid history_type %q", input.HistoryType)
	}
	return date, nil
}

type historyValueSum struct {
	HistoryType HistoryType
	InoutType   InoutType
	RevenueType RevenueType
	Value       decimal.Decimal
}

// sumHistoryValues returns SUM(value) per (history_type, inout_type, revenue_type) within [from, to].
func sumHistoryValues(tx *gorm.DB, itemId int, unitId int, from time.Time, to time.Time) ([]historyValueSum, error) {
	var sums []historyValueSum
	err := tx.Model(&InvestHistory{}).
		Select("history_type, inout_type, revenue_type, COALESCE(SUM(value), 0) AS value").
		Where("item_id = ? AND unit_id = ? AND history_date BETWEEN ? AND ?", itemId, unitId, from, to).
		Group("history_type, inout_type, revenue_type").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// latestEvalValue returns the value of the most recent eval entry at or before date (0 when none).
// Entries on the same date are ordered by id.
func latestEvalValue(tx *gorm.DB, itemId int, unitId int, date time.Time) (decimal.Decimal, error) {
	var history InvestHistory
	err := tx.Where("item_id = ? AND unit_id = ? AND history_type = ? AND revenue_type = ? AND history_date <= ?",
		itemId, unitId, HistoryTypeRevenue, RevenueTypeEval, date).
		Order("history_date DESC").Order("id DESC").
		Take(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return history.Value, nil
}

func CreateInvestHistory(ctx context.Context, itemId int, input *NewInvestHistory) (*InvestHistory, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	historyDate, err := input.validate()
	if err != nil {
		return nil, err
	}

	history := InvestHistory{
		ItemId:      item.ID,
		UnitId:      input.UnitId,
		HistoryDate: historyDate,
		HistoryType: input.HistoryType,
		InoutType:   input.InoutType,
		RevenueType: input.RevenueType,
		Value:       input.Value,
		Memo:        input.Memo,
	}

	release := utils.ItemLock(ctx, item.ID, "InvestHistory", "CreateInvestHistory")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateUnitOfItem(tx, item.ID, input.UnitId); err != nil {
			return err
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return RecalculateSummaries(tx, item.ID, history.UnitId, history.HistoryDate)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "InvestHistory", "CreateInvestHistory", "creating history", input, err)
		return nil, err
	}

	invalidateTotalSummaryCache(item.UserId)
	return &history, nil
}

func UpdateInvestHistory(ctx context.Context, itemId int, id int, input *NewInvestHistory) (*InvestHistory, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	history, err := fetchHistoryOfItem(ctx, item.ID, id)
	if err != nil {
		return nil, err
	}
	historyDate, err := input.validate()
	if err != nil {
		return nil, err
	}
	oldUnitId := history.UnitId
	oldDate := history.HistoryDate

	release := utils.ItemLock(ctx, item.ID, "InvestHistory", "UpdateInvestHistory")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateUnitOfItem(tx, item.ID, input.UnitId); err != nil {
			return err
		}

		history.UnitId = input.UnitId
		history.HistoryDate = historyDate
		history.HistoryType = input.HistoryType
		history.InoutType = input.InoutType
		history.RevenueType = input.RevenueType
		history.Value = input.Value
		history.Memo = input.Memo
		if err := tx.Save(history).Error; err != nil {
			return err
		}

		if oldUnitId != history.UnitId {
			if err := RecalculateSummaries(tx, item.ID, history.UnitId, history.HistoryDate); err != nil {
				return err
			}
			return RecalculateSummaries(tx, item.ID, oldUnitId, oldDate)
		}
		if utils.SameMonth(oldDate, history.HistoryDate) {
			return RecalculateSummaries(tx, item.ID, history.UnitId, history.HistoryDate)
		}
		// later month first, so that the earlier pass re-propagates over it
		if err := RecalculateSummaries(tx, item.ID, history.UnitId, utils.LaterDate(oldDate, history.HistoryDate)); err != nil {
			return err
		}
		return RecalculateSummaries(tx, item.ID, history.UnitId, utils.EarlierDate(oldDate, history.HistoryDate))
	})
	if err != nil {
		config.LogError(config.GetLogger(), "InvestHistory", "UpdateInvestHistory", "updating history", input, err)
		return nil, err
	}

	invalidateTotalSummaryCache(item.UserId)
	return history, nil
}

func DeleteInvestHistory(ctx context.Context, itemId int, id int) (*InvestHistory, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	history, err := fetchHistoryOfItem(ctx, item.ID, id)
	if err != nil {
		return nil, err
	}

	release := utils.ItemLock(ctx, item.ID, "InvestHistory", "DeleteInvestHistory")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(history).Error; err != nil {
			return err
		}
		return RecalculateSummaries(tx, item.ID, history.UnitId, history.HistoryDate)
	})
	if err != nil {
		config.LogError(config.GetLogger(), "InvestHistory", "DeleteInvestHistory", "deleting history", history, err)
		return nil, err
	}

	invalidateTotalSummaryCache(item.UserId)
	return history, nil
}

func fetchHistoryOfItem(ctx context.Context, itemId int, id int) (*InvestHistory, error) {
	db := config.GetDB()
	var history InvestHistory
	if err := db.WithContext(ctx).Where("item_id = ?", itemId).First(&history, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &history, nil
}

func GetInvestHistory(ctx context.Context, itemId int, id int) (*InvestHistory, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	return fetchHistoryOfItem(ctx, item.ID, id)
}

// ListInvestHistories returns the item's histories, newest first.
func ListInvestHistories(ctx context.Context, itemId int, filter *InvestHistoryFilter) ([]*InvestHistory, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("item_id = ?", item.ID)
	if filter != nil {
		if filter.UnitId != nil {
			dbCtx = dbCtx.Where("unit_id = ?", *filter.UnitId)
		}
		if filter.FromDate != nil {
			dbCtx = dbCtx.Where("history_date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			dbCtx = dbCtx.Where("history_date <= ?", *filter.ToDate)
		}
		if filter.HistoryType != nil {
			dbCtx = dbCtx.Where("history_type = ?", *filter.HistoryType)
		}
	}

	var results []*InvestHistory
	if err := dbCtx.Order("history_date DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
