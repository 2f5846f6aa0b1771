package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvestSummaryTotal mirrors the latest yearly row of an (item, unit).
type InvestSummaryTotal struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	ItemId              int             `gorm:"not null;uniqueIndex:idx_invest_summary_total_item_unit,priority:1" json:"item_id"`
	UnitId              int             `gorm:"not null;uniqueIndex:idx_invest_summary_total_item_unit,priority:2" json:"unit_id"`
	InoutTotal          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_total"`
	InoutPrincipal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_principal"`
	InoutProceeds       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_proceeds"`
	RevenueTotal        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_total"`
	RevenueInterest     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_interest"`
	RevenueEval         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_eval"`
	Earn                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn"`
	EarnRate            decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate"`
	EarnIncProceeds     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn_inc_proceeds"`
	EarnRateIncProceeds decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate_inc_proceeds"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (total *InvestSummaryTotal) copyFrom(year *InvestSummary) {
	total.InoutTotal = year.InoutTotal
	total.InoutPrincipal = year.InoutPrincipalTotal
	total.InoutProceeds = year.InoutProceedsTotal
	total.RevenueTotal = year.RevenueTotal
	total.RevenueInterest = year.RevenueInterestTotal
	total.RevenueEval = year.RevenueEval
	total.Earn = year.Earn
	total.EarnRate = year.EarnRate
	total.EarnIncProceeds = year.EarnIncProceeds
	total.EarnRateIncProceeds = year.EarnRateIncProceeds
}

// UpsertTotalSummary copies the latest yearly row into the total row of the pair.
// Without any yearly row the total is saved with the values it already has.
func UpsertTotalSummary(tx *gorm.DB, itemId int, unitId int) (*InvestSummaryTotal, error) {
	if _, err := loadSummaryTarget(tx, itemId, unitId); err != nil {
		return nil, err
	}

	total := InvestSummaryTotal{
		ItemId: itemId,
		UnitId: unitId,
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND unit_id = ?", itemId, unitId).
		FirstOrCreate(&total).Error; err != nil {
		return nil, err
	}

	var latestYear InvestSummary
	err := tx.Where("item_id = ? AND unit_id = ? AND period_type = ?", itemId, unitId, SummaryTypeYear).
		Order("period_start DESC").Take(&latestYear).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		total.copyFrom(&latestYear)
	}

	if err := tx.Save(&total).Error; err != nil {
		return nil, err
	}
	return &total, nil
}
