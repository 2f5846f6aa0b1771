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

/*
caches:
	TotalSummaryList:$userId
*/

// TotalSummary is a total row joined with the names of its item and unit.
type TotalSummary struct {
	ItemId              int             `json:"item_id"`
	ItemName            string          `json:"item_name"`
	ItemType            string          `json:"item_type"`
	GroupId             *int            `json:"group_id"`
	ClosedAt            *time.Time      `json:"closed_at"`
	UnitId              int             `json:"unit_id"`
	UnitName            string          `json:"unit_name"`
	InoutTotal          decimal.Decimal `json:"inout_total"`
	InoutPrincipal      decimal.Decimal `json:"inout_principal"`
	InoutProceeds       decimal.Decimal `json:"inout_proceeds"`
	RevenueTotal        decimal.Decimal `json:"revenue_total"`
	RevenueInterest     decimal.Decimal `json:"revenue_interest"`
	RevenueEval         decimal.Decimal `json:"revenue_eval"`
	Earn                decimal.Decimal `json:"earn"`
	EarnRate            decimal.Decimal `json:"earn_rate"`
	EarnIncProceeds     decimal.Decimal `json:"earn_inc_proceeds"`
	EarnRateIncProceeds decimal.Decimal `json:"earn_rate_inc_proceeds"`
}

func invalidateTotalSummaryCache(userId int) {
	if err := utils.RemoveRedisList[TotalSummary](userId); err != nil {
		config.LogError(config.GetLogger(), "InvestSummary", "invalidateTotalSummaryCache", "removing cached totals", userId, err)
	}
}

// ListInvestSummaries returns the period rows of (item, unit) in ascending order.
func ListInvestSummaries(ctx context.Context, itemId int, unitId int, summaryType SummaryType, fromDate *time.Time, toDate *time.Time) ([]*InvestSummary, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	if _, err := fetchUnitOfItem(ctx, item.ID, unitId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("item_id = ? AND unit_id = ? AND period_type = ?", item.ID, unitId, summaryType)
	if fromDate != nil {
		from, _ := summaryType.periodRange(*fromDate)
		dbCtx = dbCtx.Where("period_start >= ?", from)
	}
	if toDate != nil {
		dbCtx = dbCtx.Where("period_start <= ?", *toDate)
	}

	var results []*InvestSummary
	if err := dbCtx.Order("period_start ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetInvestSummaryTotal returns the total row of (item, unit); a unit without
// any history yet gets an unsaved all-zero total.
func GetInvestSummaryTotal(ctx context.Context, itemId int, unitId int) (*InvestSummaryTotal, error) {
	item, err := GetInvestItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	if _, err := fetchUnitOfItem(ctx, item.ID, unitId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result InvestSummaryTotal
	if err := db.WithContext(ctx).Where("item_id = ? AND unit_id = ?", item.ID, unitId).Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InvestSummaryTotal{ItemId: item.ID, UnitId: unitId}, nil
		}
		return nil, err
	}
	return &result, nil
}

// ListTotalSummaries returns the totals of every (item, unit) of the current user.
// Results are cached per user until the next mutation.
func ListTotalSummaries(ctx context.Context) ([]*TotalSummary, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	// first try redis cache
	results, err := utils.RetrieveRedisList[TotalSummary](userId)
	if err != nil {
		return nil, err
	}
	if results != nil {
		return results, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Table("invest_summary_totals AS t").
		Select("t.item_id, i.name AS item_name, i.item_type, i.group_id, i.closed_at, t.unit_id, u.name AS unit_name, "+
			"t.inout_total, t.inout_principal, t.inout_proceeds, t.revenue_total, t.revenue_interest, t.revenue_eval, "+
			"t.earn, t.earn_rate, t.earn_inc_proceeds, t.earn_rate_inc_proceeds").
		Joins("JOIN invest_items i ON i.id = t.item_id").
		Joins("JOIN invest_units u ON u.id = t.unit_id").
		Where("i.user_id = ?", userId).
		Order("i.name ASC").Order("u.name ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	if results == nil {
		results = []*TotalSummary{}
	}

	// caching the result
	if err := utils.StoreRedisList[TotalSummary](results, userId); err != nil {
		return nil, err
	}
	return results, nil
}
