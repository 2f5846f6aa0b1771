package models_test

import (
	"testing"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeItem(t *testing.T, f fixture, closedAt *string) {
	t.Helper()
	item, err := models.UpdateInvestItem(f.ctx, f.item.ID, &models.NewInvestItem{
		Name:     f.item.Name,
		ItemType: f.item.ItemType,
		ClosedAt: closedAt,
	})
	require.NoError(t, err)
	f.item.ClosedAt = item.ClosedAt
}

func TestClosingItemTruncatesSummaries(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")
	f.inout(t, "2023-02-10", models.InoutTypePrincipal, "10")
	f.inout(t, "2023-03-10", models.InoutTypePrincipal, "10")
	f.inout(t, "2024-02-10", models.InoutTypePrincipal, "10")
	requireDecimal(t, "130", f.total(t).InoutPrincipal)

	closedAt := "2023-02-15"
	closeItem(t, f, &closedAt)

	months := f.summaries(t, models.SummaryTypeMonth)
	assert.Len(t, months, 2)
	assert.Contains(t, months, "2023-01")
	assert.Contains(t, months, "2023-02")

	years := f.summaries(t, models.SummaryTypeYear)
	require.Len(t, years, 1)
	requireDecimal(t, "110", years["2023"].InoutPrincipalTotal)
	requireDecimal(t, "110", f.total(t).InoutPrincipal)

	// entries after the closure are kept but not summarized
	f.inout(t, "2023-05-01", models.InoutTypePrincipal, "1")
	assert.Len(t, f.summaries(t, models.SummaryTypeMonth), 2)
	requireDecimal(t, "110", f.total(t).InoutPrincipal)
}

func TestReopeningItemRebuildsSummaries(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")
	f.inout(t, "2024-02-10", models.InoutTypePrincipal, "30")

	closedAt := "2023-06-30"
	closeItem(t, f, &closedAt)
	requireDecimal(t, "100", f.total(t).InoutPrincipal)

	closeItem(t, f, nil)

	months := f.summaries(t, models.SummaryTypeMonth)
	// every month from the first to the last entry
	assert.Len(t, months, 14)
	requireDecimal(t, "100", months["2023-07"].InoutPrincipalTotal)
	requireDecimal(t, "130", months["2024-02"].InoutPrincipalTotal)
	assert.Len(t, f.summaries(t, models.SummaryTypeYear), 2)
	requireDecimal(t, "130", f.total(t).InoutPrincipal)
}

func TestItemsAreScopedToOwner(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")

	stranger := userContext(2)

	_, err := models.GetInvestItem(stranger, f.item.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	items, err := models.ListInvestItems(stranger, nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = models.ListInvestSummaries(stranger, f.item.ID, f.unit.ID, models.SummaryTypeMonth, nil, nil)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	_, err = models.ListInvestHistories(stranger, f.item.ID, nil)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	_, err = models.DeleteInvestItem(stranger, f.item.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	// same name is fine for another user
	_, err = models.CreateInvestItem(stranger, &models.NewInvestItem{Name: "Savings"})
	assert.NoError(t, err)

	_, err = models.ListInvestItems(userContext(0), nil)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
}

func TestDuplicateNames(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")

	_, err := models.CreateInvestItem(f.ctx, &models.NewInvestItem{Name: "Savings"})
	assert.ErrorIs(t, err, utils.ErrorDuplicate)

	_, err = models.CreateInvestUnit(f.ctx, f.item.ID, &models.NewInvestUnit{Name: "KRW"})
	assert.ErrorIs(t, err, utils.ErrorDuplicate)

	_, err = models.CreateInvestGroup(f.ctx, &models.NewInvestGroup{Name: "Banks"})
	require.NoError(t, err)
	_, err = models.CreateInvestGroup(f.ctx, &models.NewInvestGroup{Name: "Banks"})
	assert.ErrorIs(t, err, utils.ErrorDuplicate)
}

func TestDeleteGroupDetachesItems(t *testing.T) {
	setupStore(t)
	ctx := userContext(1)

	group, err := models.CreateInvestGroup(ctx, &models.NewInvestGroup{Name: "Banks"})
	require.NoError(t, err)
	item, err := models.CreateInvestItem(ctx, &models.NewInvestItem{Name: "Deposit", GroupId: &group.ID})
	require.NoError(t, err)

	inGroup, err := models.ListInvestItems(ctx, &group.ID)
	require.NoError(t, err)
	require.Len(t, inGroup, 1)

	_, err = models.DeleteInvestGroup(ctx, group.ID)
	require.NoError(t, err)

	item, err = models.GetInvestItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, item.GroupId)

	missing := 999
	_, err = models.CreateInvestItem(ctx, &models.NewInvestItem{Name: "Bond", GroupId: &missing})
	assert.ErrorIs(t, err, utils.ErrorInvalidInput)
}

func TestDeleteItemRemovesEverything(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")
	f.revenue(t, "2023-03-31", models.RevenueTypeEval, "104")

	_, err := models.DeleteInvestItem(f.ctx, f.item.ID)
	require.NoError(t, err)

	db := config.GetDB()
	for _, model := range []interface{}{&models.InvestHistory{}, &models.InvestSummary{}, &models.InvestSummaryTotal{}, &models.InvestUnit{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("item_id = ?", f.item.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDeleteUnitRemovesItsSummaries(t *testing.T) {
	setupStore(t)
	f := newFixture(t, 1, "Savings")
	f.inout(t, "2023-01-10", models.InoutTypePrincipal, "100")

	_, err := models.DeleteInvestUnit(f.ctx, f.item.ID, f.unit.ID)
	require.NoError(t, err)

	_, err = models.GetInvestSummaryTotal(f.ctx, f.item.ID, f.unit.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	units, err := models.ListInvestUnits(f.ctx, f.item.ID)
	require.NoError(t, err)
	assert.Empty(t, units)
}
