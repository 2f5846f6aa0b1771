package models

import (
	"errors"
	"time"

	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvestSummary is the derived state of one (item, unit) for one month or year.
// Rows are always rebuilt wholesale from raw histories (months) or
// monthly rows (years) plus the previous row of the same type.
type InvestSummary struct {
	ID          int         `gorm:"primary_key" json:"id"`
	ItemId      int         `gorm:"not null;uniqueIndex:idx_invest_summary_period,priority:1" json:"item_id"`
	UnitId      int         `gorm:"not null;uniqueIndex:idx_invest_summary_period,priority:2" json:"unit_id"`
	PeriodType  SummaryType `gorm:"size:10;not null;uniqueIndex:idx_invest_summary_period,priority:3" json:"type"`
	PeriodStart time.Time   `gorm:"type:date;not null;uniqueIndex:idx_invest_summary_period,priority:4" json:"date"`

	InoutTotal            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_total"`
	InoutPrincipalPrev    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_principal_prev"`
	InoutPrincipalCurrent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_principal_current"`
	InoutPrincipalTotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_principal_total"`
	InoutProceedsPrev     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_proceeds_prev"`
	InoutProceedsCurrent  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_proceeds_current"`
	InoutProceedsTotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inout_proceeds_total"`

	RevenueTotal           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_total"`
	RevenueInterestPrev    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_interest_prev"`
	RevenueInterestCurrent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_interest_current"`
	RevenueInterestTotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_interest_total"`
	RevenueEval            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_eval"`
	RevenueEvalPrev        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue_eval_prev"`

	Earn                        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn"`
	EarnRate                    decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate"`
	EarnIncProceeds             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn_inc_proceeds"`
	EarnRateIncProceeds         decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate_inc_proceeds"`
	EarnPrevDiff                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn_prev_diff"`
	EarnRatePrevDiff            decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate_prev_diff"`
	EarnIncProceedsPrevDiff     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"earn_inc_proceeds_prev_diff"`
	EarnRateIncProceedsPrevDiff decimal.Decimal `gorm:"type:decimal(24,10);default:0" json:"earn_rate_inc_proceeds_prev_diff"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// rates are stored as decimal(24,10)
const rateScale = 10

// periodRange returns the first and last day of the period containing date.
func (t SummaryType) periodRange(date time.Time) (time.Time, time.Time) {
	if t == SummaryTypeYear {
		return utils.YearRange(date)
	}
	return utils.MonthRange(date)
}

func (t SummaryType) nextPeriod(periodStart time.Time) time.Time {
	if t == SummaryTypeYear {
		return periodStart.AddDate(1, 0, 0)
	}
	return periodStart.AddDate(0, 1, 0)
}

func (s *InvestSummary) resetAmounts() {
	s.InoutTotal = decimal.Zero
	s.InoutPrincipalPrev = decimal.Zero
	s.InoutPrincipalCurrent = decimal.Zero
	s.InoutPrincipalTotal = decimal.Zero
	s.InoutProceedsPrev = decimal.Zero
	s.InoutProceedsCurrent = decimal.Zero
	s.InoutProceedsTotal = decimal.Zero
	s.RevenueTotal = decimal.Zero
	s.RevenueInterestPrev = decimal.Zero
	s.RevenueInterestCurrent = decimal.Zero
	s.RevenueInterestTotal = decimal.Zero
	s.RevenueEval = decimal.Zero
	s.RevenueEvalPrev = decimal.Zero
	s.Earn = decimal.Zero
	s.EarnRate = decimal.Zero
	s.EarnIncProceeds = decimal.Zero
	s.EarnRateIncProceeds = decimal.Zero
	s.EarnPrevDiff = decimal.Zero
	s.EarnRatePrevDiff = decimal.Zero
	s.EarnIncProceedsPrevDiff = decimal.Zero
	s.EarnRateIncProceedsPrevDiff = decimal.Zero
}

// carryForward turns the period's Currents into running Totals on top of prev.
func (s *InvestSummary) carryForward(prev *InvestSummary) {
	s.InoutPrincipalTotal = s.InoutPrincipalCurrent
	s.InoutProceedsTotal = s.InoutProceedsCurrent
	s.RevenueInterestTotal = s.RevenueInterestCurrent
	if prev == nil {
		return
	}

	s.InoutPrincipalPrev = prev.InoutPrincipalTotal
	s.InoutPrincipalTotal = s.InoutPrincipalTotal.Add(prev.InoutPrincipalTotal)
	s.InoutProceedsPrev = prev.InoutProceedsTotal
	s.InoutProceedsTotal = s.InoutProceedsTotal.Add(prev.InoutProceedsTotal)
	s.RevenueInterestPrev = prev.RevenueInterestTotal
	s.RevenueInterestTotal = s.RevenueInterestTotal.Add(prev.RevenueInterestTotal)
	s.RevenueEvalPrev = prev.RevenueEval
}

// CalculateDerived fills totals, earnings, rates and the differences to prev.
// A rate stays zero when its base or its earning is zero, even if the eval
// branch alone made the earning nonzero.
func (s *InvestSummary) CalculateDerived(prev *InvestSummary) {
	s.InoutTotal = s.InoutPrincipalTotal.Add(s.InoutProceedsTotal)
	s.RevenueTotal = s.RevenueInterestTotal.Add(s.RevenueEval)

	s.Earn = s.RevenueInterestTotal
	s.EarnIncProceeds = s.RevenueInterestTotal
	if !s.RevenueEval.IsZero() {
		s.Earn = s.Earn.Add(s.RevenueEval.Sub(s.InoutPrincipalTotal))
		s.EarnIncProceeds = s.EarnIncProceeds.Add(s.RevenueEval.Sub(s.InoutTotal))
	}

	s.EarnRate = decimal.Zero
	if !s.InoutPrincipalTotal.IsZero() && !s.Earn.IsZero() {
		s.EarnRate = s.Earn.DivRound(s.InoutPrincipalTotal, rateScale)
	}
	s.EarnRateIncProceeds = decimal.Zero
	if !s.InoutTotal.IsZero() && !s.EarnIncProceeds.IsZero() {
		s.EarnRateIncProceeds = s.EarnIncProceeds.DivRound(s.InoutTotal, rateScale)
	}

	s.EarnPrevDiff = s.Earn
	s.EarnIncProceedsPrevDiff = s.EarnIncProceeds
	s.EarnRatePrevDiff = decimal.Zero
	s.EarnRateIncProceedsPrevDiff = decimal.Zero
	if prev == nil {
		return
	}
	s.EarnPrevDiff = s.Earn.Sub(prev.Earn)
	s.EarnIncProceedsPrevDiff = s.EarnIncProceeds.Sub(prev.EarnIncProceeds)
	if !prev.EarnRate.IsZero() {
		s.EarnRatePrevDiff = s.EarnRate.Sub(prev.EarnRate)
	}
	if !prev.EarnRateIncProceeds.IsZero() {
		s.EarnRateIncProceedsPrevDiff = s.EarnRateIncProceeds.Sub(prev.EarnRateIncProceeds)
	}
}

// loadSummaryTarget returns the item after checking that the unit belongs to it.
func loadSummaryTarget(tx *gorm.DB, itemId int, unitId int) (*InvestItem, error) {
	var item InvestItem
	if err := tx.First(&item, itemId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := ValidateUnitOfItem(tx, itemId, unitId); err != nil {
		return nil, err
	}
	return &item, nil
}

func firstOrCreateSummary(tx *gorm.DB, itemId int, unitId int, summaryType SummaryType, periodStart time.Time) (*InvestSummary, error) {
	summary := InvestSummary{
		ItemId:      itemId,
		UnitId:      unitId,
		PeriodType:  summaryType,
		PeriodStart: periodStart,
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start = ?", itemId, unitId, summaryType, periodStart).
		FirstOrCreate(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// previousSummary returns the latest row of the same type before periodStart, or nil.
func previousSummary(tx *gorm.DB, itemId int, unitId int, summaryType SummaryType, periodStart time.Time) (*InvestSummary, error) {
	var prev InvestSummary
	err := tx.Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start < ?", itemId, unitId, summaryType, periodStart).
		Order("period_start DESC").Take(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prev, nil
}

// UpsertMonthSummary rebuilds the monthly row containing date.
// It returns nil without touching anything when the month starts after the item's closure.
func UpsertMonthSummary(tx *gorm.DB, itemId int, unitId int, date time.Time) (*InvestSummary, error) {
	item, err := loadSummaryTarget(tx, itemId, unitId)
	if err != nil {
		return nil, err
	}
	firstDay, lastDay := SummaryTypeMonth.periodRange(date)
	if item.isClosedBefore(firstDay) {
		return nil, nil
	}

	summary, err := firstOrCreateSummary(tx, itemId, unitId, SummaryTypeMonth, firstDay)
	if err != nil {
		return nil, err
	}
	summary.resetAmounts()

	sums, err := sumHistoryValues(tx, itemId, unitId, firstDay, lastDay)
	if err != nil {
		return nil, err
	}
	for _, sum := range sums {
		switch {
		case sum.HistoryType == HistoryTypeInout && sum.InoutType == InoutTypePrincipal:
			summary.InoutPrincipalCurrent = sum.Value
		case sum.HistoryType == HistoryTypeInout && sum.InoutType == InoutTypeProceeds:
			summary.InoutProceedsCurrent = sum.Value
		case sum.HistoryType == HistoryTypeRevenue && sum.RevenueType == RevenueTypeInterest:
			summary.RevenueInterestCurrent = sum.Value
		}
	}

	summary.RevenueEval, err = latestEvalValue(tx, itemId, unitId, lastDay)
	if err != nil {
		return nil, err
	}

	prev, err := previousSummary(tx, itemId, unitId, SummaryTypeMonth, firstDay)
	if err != nil {
		return nil, err
	}
	summary.carryForward(prev)
	summary.CalculateDerived(prev)

	if err := tx.Save(summary).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

type monthlyCurrentSum struct {
	InoutPrincipalCurrent  decimal.Decimal
	InoutProceedsCurrent   decimal.Decimal
	RevenueInterestCurrent decimal.Decimal
}

// UpsertYearSummary rebuilds the yearly row containing date from the monthly rows of that year.
func UpsertYearSummary(tx *gorm.DB, itemId int, unitId int, date time.Time) (*InvestSummary, error) {
	item, err := loadSummaryTarget(tx, itemId, unitId)
	if err != nil {
		return nil, err
	}
	firstDay, lastDay := SummaryTypeYear.periodRange(date)
	if item.isClosedBefore(firstDay) {
		return nil, nil
	}

	summary, err := firstOrCreateSummary(tx, itemId, unitId, SummaryTypeYear, firstDay)
	if err != nil {
		return nil, err
	}
	summary.resetAmounts()

	var sum monthlyCurrentSum
	if err := tx.Model(&InvestSummary{}).
		Select("COALESCE(SUM(inout_principal_current), 0) AS inout_principal_current, "+
			"COALESCE(SUM(inout_proceeds_current), 0) AS inout_proceeds_current, "+
			"COALESCE(SUM(revenue_interest_current), 0) AS revenue_interest_current").
		Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start BETWEEN ? AND ?",
			itemId, unitId, SummaryTypeMonth, firstDay, lastDay).
		Scan(&sum).Error; err != nil {
		return nil, err
	}
	summary.InoutPrincipalCurrent = sum.InoutPrincipalCurrent
	summary.InoutProceedsCurrent = sum.InoutProceedsCurrent
	summary.RevenueInterestCurrent = sum.RevenueInterestCurrent

	// eval of the year is the one of its latest month
	var lastMonth InvestSummary
	err = tx.Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start BETWEEN ? AND ?",
		itemId, unitId, SummaryTypeMonth, firstDay, lastDay).
		Order("period_start DESC").Take(&lastMonth).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		summary.RevenueEval = lastMonth.RevenueEval
	}

	prev, err := previousSummary(tx, itemId, unitId, SummaryTypeYear, firstDay)
	if err != nil {
		return nil, err
	}
	summary.carryForward(prev)
	summary.CalculateDerived(prev)

	if err := tx.Save(summary).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

// upsertSummary dispatches to the builder of the given granularity.
func upsertSummary(tx *gorm.DB, summaryType SummaryType, itemId int, unitId int, date time.Time) (*InvestSummary, error) {
	if summaryType == SummaryTypeYear {
		return UpsertYearSummary(tx, itemId, unitId, date)
	}
	return UpsertMonthSummary(tx, itemId, unitId, date)
}
