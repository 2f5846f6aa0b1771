package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMonthlySummaryFromHistories(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	f.inout(t, "2023-01-05", models.InoutTypePrincipal, "100")
	f.revenue(t, "2023-01-20", models.RevenueTypeInterest, "5")
	f.revenue(t, "2023-01-31", models.RevenueTypeEval, "105")

	jan := f.summaries(t, models.SummaryTypeMonth)["2023-01"]
	require.NotNil(t, jan)
	requireDecimal(t, "100", jan.InoutPrincipalCurrent)
	requireDecimal(t, "100", jan.InoutPrincipalTotal)
	requireDecimal(t, "5", jan.RevenueInterestCurrent)
	requireDecimal(t, "5", jan.RevenueInterestTotal)
	requireDecimal(t, "105", jan.RevenueEval)
	requireDecimal(t, "10", jan.Earn)
	requireDecimal(t, "0.1", jan.EarnRate)
	requireDecimal(t, "10", jan.EarnPrevDiff)
	requireDecimal(t, "0", jan.EarnRatePrevDiff)
}

func TestMonthlySummaryCarriesForward(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	f.inout(t, "2023-01-05", models.InoutTypePrincipal, "100")
	f.revenue(t, "2023-01-20", models.RevenueTypeInterest, "5")
	f.revenue(t, "2023-01-31", models.RevenueTypeEval, "105")
	f.revenue(t, "2023-02-28", models.RevenueTypeEval, "108")

	months := f.summaries(t, models.SummaryTypeMonth)
	feb := months["2023-02"]
	require.NotNil(t, feb)
	requireDecimal(t, "0", feb.InoutPrincipalCurrent)
	requireDecimal(t, "100", feb.InoutPrincipalPrev)
	requireDecimal(t, "100", feb.InoutPrincipalTotal)
	requireDecimal(t, "105", feb.RevenueEvalPrev)
	requireDecimal(t, "108", feb.RevenueEval)
	requireDecimal(t, "13", feb.Earn)
	requireDecimal(t, "3", feb.EarnPrevDiff)

	year := f.summaries(t, models.SummaryTypeYear)["2023"]
	require.NotNil(t, year)
	requireDecimal(t, "100", year.InoutPrincipalCurrent)
	requireDecimal(t, "5", year.RevenueInterestCurrent)
	requireDecimal(t, "108", year.RevenueEval)
	requireDecimal(t, "13", year.Earn)
}

func TestSummaryInvariantsHoldAcrossPeriods(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Fund")

	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "1000")
	f.revenue(t, "2023-02-10", models.RevenueTypeInterest, "12")
	f.inout(t, "2023-03-10", models.InoutTypeProceeds, "-200")
	f.revenue(t, "2023-03-31", models.RevenueTypeEval, "850")
	f.inout(t, "2024-01-15", models.InoutTypePrincipal, "500")
	f.revenue(t, "2024-02-29", models.RevenueTypeEval, "1400")
	// backdated entry re-propagates every later month
	f.revenue(t, "2023-01-25", models.RevenueTypeInterest, "3")

	rows, err := models.ListInvestSummaries(f.ctx, f.item.ID, f.unit.ID, models.SummaryTypeMonth, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for i, row := range rows {
		assert.True(t, row.InoutTotal.Equal(row.InoutPrincipalTotal.Add(row.InoutProceedsTotal)), "inout total of %s", row.PeriodStart)
		assert.True(t, row.RevenueTotal.Equal(row.RevenueInterestTotal.Add(row.RevenueEval)), "revenue total of %s", row.PeriodStart)
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		assert.True(t, row.InoutPrincipalPrev.Equal(prev.InoutPrincipalTotal), "principal prev of %s", row.PeriodStart)
		assert.True(t, row.InoutProceedsPrev.Equal(prev.InoutProceedsTotal), "proceeds prev of %s", row.PeriodStart)
		assert.True(t, row.RevenueInterestPrev.Equal(prev.RevenueInterestTotal), "interest prev of %s", row.PeriodStart)
		assert.True(t, row.RevenueEvalPrev.Equal(prev.RevenueEval), "eval prev of %s", row.PeriodStart)
	}

	years := f.summaries(t, models.SummaryTypeYear)
	require.Len(t, years, 2)
	requireDecimal(t, "15", years["2023"].RevenueInterestTotal)
	requireDecimal(t, "1500", years["2024"].InoutPrincipalTotal)

	total := f.total(t)
	latest := years["2024"]
	requireDecimal(t, latest.Earn.String(), total.Earn)
	requireDecimal(t, latest.EarnRate.String(), total.EarnRate)
	requireDecimal(t, latest.InoutTotal.String(), total.InoutTotal)
	requireDecimal(t, latest.InoutPrincipalTotal.String(), total.InoutPrincipal)
	requireDecimal(t, latest.InoutProceedsTotal.String(), total.InoutProceeds)
	requireDecimal(t, latest.RevenueTotal.String(), total.RevenueTotal)
	requireDecimal(t, latest.RevenueEval.String(), total.RevenueEval)
	requireDecimal(t, latest.EarnIncProceeds.String(), total.EarnIncProceeds)
}

func TestUpsertMonthSummaryIsIdempotent(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	history := f.inout(t, "2023-05-02", models.InoutTypePrincipal, "250")
	f.revenue(t, "2023-05-30", models.RevenueTypeEval, "260")

	db := config.GetDB()
	var first, second *models.InvestSummary
	err := db.WithContext(f.ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if first, err = models.UpsertMonthSummary(tx, f.item.ID, f.unit.ID, history.HistoryDate); err != nil {
			return err
		}
		firstCopy := *first
		first = &firstCopy
		second, err = models.UpsertMonthSummary(tx, f.item.ID, f.unit.ID, history.HistoryDate)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	second.UpdatedAt = first.UpdatedAt
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestSummaryBuilderRejectsForeignUnit(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	other := newFixture(t, 1, "Stocks")

	err := config.GetDB().WithContext(f.ctx).Transaction(func(tx *gorm.DB) error {
		return models.RecalculateSummaries(tx, f.item.ID, other.unit.ID, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	_, err = models.CreateInvestHistory(f.ctx, f.item.ID, &models.NewInvestHistory{
		UnitId:      other.unit.ID,
		HistoryDate: "2023-01-01",
		HistoryType: models.HistoryTypeInout,
		InoutType:   models.InoutTypePrincipal,
		Value:       decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	histories, err := models.ListInvestHistories(f.ctx, f.item.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, histories)
}

func TestCalculateDerivedKeepsRateGuards(t *testing.T) {
	// eval alone makes earn nonzero while the principal is zero: the rate stays 0
	s := models.InvestSummary{
		InoutProceedsTotal: decimal.NewFromInt(20),
		RevenueEval:        decimal.NewFromInt(50),
	}
	s.CalculateDerived(nil)
	requireDecimal(t, "50", s.Earn)
	requireDecimal(t, "0", s.EarnRate)
	requireDecimal(t, "30", s.EarnIncProceeds)
	requireDecimal(t, "1.5", s.EarnRateIncProceeds)
	requireDecimal(t, "50", s.EarnPrevDiff)

	// eval equal to principal: earn is zero and so is the rate
	s = models.InvestSummary{
		InoutPrincipalTotal: decimal.NewFromInt(100),
		RevenueEval:         decimal.NewFromInt(100),
	}
	s.CalculateDerived(nil)
	requireDecimal(t, "0", s.Earn)
	requireDecimal(t, "0", s.EarnRate)

	// without eval the principal is not subtracted
	s = models.InvestSummary{
		InoutPrincipalTotal:  decimal.NewFromInt(100),
		RevenueInterestTotal: decimal.NewFromInt(4),
	}
	s.CalculateDerived(nil)
	requireDecimal(t, "4", s.Earn)
	requireDecimal(t, "0.04", s.EarnRate)
}

func TestCalculateDerivedPrevDiff(t *testing.T) {
	prev := models.InvestSummary{
		Earn:     decimal.NewFromInt(10),
		EarnRate: decimal.Zero,
	}
	s := models.InvestSummary{
		InoutPrincipalTotal:  decimal.NewFromInt(100),
		RevenueInterestTotal: decimal.NewFromInt(5),
		RevenueEval:          decimal.NewFromInt(110),
	}
	s.CalculateDerived(&prev)
	requireDecimal(t, "15", s.Earn)
	requireDecimal(t, "5", s.EarnPrevDiff)
	// previous rate unset
	requireDecimal(t, "0", s.EarnRatePrevDiff)

	prev.EarnRate = decimal.RequireFromString("0.1")
	s.CalculateDerived(&prev)
	requireDecimal(t, "0.05", s.EarnRatePrevDiff)
}

func TestUpdateHistoryAcrossMonths(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	moved := f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")
	f.inout(t, "2023-03-10", models.InoutTypePrincipal, "50")

	_, err := models.UpdateInvestHistory(f.ctx, f.item.ID, moved.ID, &models.NewInvestHistory{
		UnitId:      f.unit.ID,
		HistoryDate: "2023-04-10",
		HistoryType: models.HistoryTypeInout,
		InoutType:   models.InoutTypePrincipal,
		Value:       decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	months := f.summaries(t, models.SummaryTypeMonth)
	requireDecimal(t, "0", months["2023-01"].InoutPrincipalTotal)
	requireDecimal(t, "50", months["2023-03"].InoutPrincipalTotal)
	requireDecimal(t, "0", months["2023-03"].InoutPrincipalPrev)
	requireDecimal(t, "100", months["2023-04"].InoutPrincipalCurrent)
	requireDecimal(t, "150", months["2023-04"].InoutPrincipalTotal)

	requireDecimal(t, "150", f.summaries(t, models.SummaryTypeYear)["2023"].InoutPrincipalTotal)
	requireDecimal(t, "150", f.total(t).InoutPrincipal)
}

func TestUpdateHistoryToAnotherUnit(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	usd, err := models.CreateInvestUnit(f.ctx, f.item.ID, &models.NewInvestUnit{Name: "USD"})
	require.NoError(t, err)

	history := f.inout(t, "2023-06-01", models.InoutTypePrincipal, "70")
	_, err = models.UpdateInvestHistory(f.ctx, f.item.ID, history.ID, &models.NewInvestHistory{
		UnitId:      usd.ID,
		HistoryDate: "2023-06-01",
		HistoryType: models.HistoryTypeInout,
		InoutType:   models.InoutTypePrincipal,
		Value:       decimal.NewFromInt(70),
	})
	require.NoError(t, err)

	requireDecimal(t, "0", f.total(t).InoutPrincipal)
	usdTotal, err := models.GetInvestSummaryTotal(f.ctx, f.item.ID, usd.ID)
	require.NoError(t, err)
	requireDecimal(t, "70", usdTotal.InoutPrincipal)
}

func TestDeleteHistoryRecalculates(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")
	interest := f.revenue(t, "2023-01-15", models.RevenueTypeInterest, "8")
	f.inout(t, "2023-02-10", models.InoutTypePrincipal, "20")

	_, err := models.DeleteInvestHistory(f.ctx, f.item.ID, interest.ID)
	require.NoError(t, err)

	months := f.summaries(t, models.SummaryTypeMonth)
	requireDecimal(t, "0", months["2023-01"].RevenueInterestTotal)
	requireDecimal(t, "0", months["2023-02"].RevenueInterestPrev)
	requireDecimal(t, "120", months["2023-02"].InoutPrincipalTotal)
	requireDecimal(t, "0", f.total(t).RevenueInterest)

	_, err = models.GetInvestHistory(f.ctx, f.item.ID, interest.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestInvalidHistoryInput(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	cases := map[string]*models.NewInvestHistory{
		"inout without subtype": {UnitId: f.unit.ID, HistoryDate: "2023-01-01", HistoryType: models.HistoryTypeInout},
		"mixed subtypes": {UnitId: f.unit.ID, HistoryDate: "2023-01-01", HistoryType: models.HistoryTypeRevenue,
			RevenueType: models.RevenueTypeEval, InoutType: models.InoutTypePrincipal},
		"unknown type": {UnitId: f.unit.ID, HistoryDate: "2023-01-01", HistoryType: "dividend"},
		"bad date":     {UnitId: f.unit.ID, HistoryDate: "2023-13-01", HistoryType: models.HistoryTypeInout, InoutType: models.InoutTypePrincipal},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := models.CreateInvestHistory(f.ctx, f.item.ID, input)
			assert.ErrorIs(t, err, utils.ErrorInvalidInput)
		})
	}
}

func TestEvalPicksLatestDateThenHighestId(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Stocks")

	latest := f.revenue(t, "2023-01-31", models.RevenueTypeEval, "300")
	f.revenue(t, "2023-01-20", models.RevenueTypeEval, "100")
	f.revenue(t, "2023-01-20", models.RevenueTypeEval, "200")

	requireDecimal(t, "300", f.summaries(t, models.SummaryTypeMonth)["2023-01"].RevenueEval)

	_, err := models.DeleteInvestHistory(f.ctx, f.item.ID, latest.ID)
	require.NoError(t, err)

	// same date: the entry created last wins
	requireDecimal(t, "200", f.summaries(t, models.SummaryTypeMonth)["2023-01"].RevenueEval)
	requireDecimal(t, "200", f.total(t).RevenueEval)
}

func TestTotalOfUnitWithoutHistoryIsZero(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	total := f.total(t)
	assert.Equal(t, f.item.ID, total.ItemId)
	assert.Equal(t, f.unit.ID, total.UnitId)
	requireDecimal(t, "0", total.InoutTotal)
	requireDecimal(t, "0", total.Earn)
	requireDecimal(t, "0", total.EarnRate)

	_, err := models.GetInvestSummaryTotal(f.ctx, f.item.ID, f.unit.ID+100)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}
