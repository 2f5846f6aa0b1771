package models_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupStore points config at a fresh sqlite file and an in-memory redis.
func setupStore(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "invest.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(config.NewOwnerGuardPlugin()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one writer at a time, like the row locks on mysql
	sqlDB.SetMaxOpenConns(1)

	config.SetDB(db)
	models.MigrateTable()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisClient(client)

	t.Cleanup(func() {
		config.SetRedisClient(nil)
		_ = client.Close()
		config.SetDB(nil)
		_ = sqlDB.Close()
	})
	return mr
}

func userContext(userId int) context.Context {
	return utils.SetUserIdInContext(context.Background(), userId)
}

type fixture struct {
	ctx  context.Context
	item *models.InvestItem
	unit *models.InvestUnit
}

func newFixture(t *testing.T, userId int, itemName string) fixture {
	t.Helper()
	ctx := userContext(userId)

	item, err := models.CreateInvestItem(ctx, &models.NewInvestItem{Name: itemName, ItemType: "deposit"})
	require.NoError(t, err)
	unit, err := models.CreateInvestUnit(ctx, item.ID, &models.NewInvestUnit{Name: "KRW"})
	require.NoError(t, err)

	return fixture{ctx: ctx, item: item, unit: unit}
}

func (f fixture) inout(t *testing.T, date string, inoutType models.InoutType, value string) *models.InvestHistory {
	t.Helper()
	history, err := models.CreateInvestHistory(f.ctx, f.item.ID, &models.NewInvestHistory{
		UnitId:      f.unit.ID,
		HistoryDate: date,
		HistoryType: models.HistoryTypeInout,
		InoutType:   inoutType,
		Value:       decimal.RequireFromString(value),
	})
	require.NoError(t, err)
	return history
}

func (f fixture) revenue(t *testing.T, date string, revenueType models.RevenueType, value string) *models.InvestHistory {
	t.Helper()
	history, err := models.CreateInvestHistory(f.ctx, f.item.ID, &models.NewInvestHistory{
		UnitId:      f.unit.ID,
		HistoryDate: date,
		HistoryType: models.HistoryTypeRevenue,
		RevenueType: revenueType,
		Value:       decimal.RequireFromString(value),
	})
	require.NoError(t, err)
	return history
}

// summaries returns the rows of the given type keyed by period ("2006-01" or "2006").
func (f fixture) summaries(t *testing.T, summaryType models.SummaryType) map[string]*models.InvestSummary {
	t.Helper()
	rows, err := models.ListInvestSummaries(f.ctx, f.item.ID, f.unit.ID, summaryType, nil, nil)
	require.NoError(t, err)

	layout := "2006-01"
	if summaryType == models.SummaryTypeYear {
		layout = "2006"
	}
	results := make(map[string]*models.InvestSummary, len(rows))
	for _, row := range rows {
		results[row.PeriodStart.Format(layout)] = row
	}
	return results
}

func (f fixture) total(t *testing.T) *models.InvestSummaryTotal {
	t.Helper()
	total, err := models.GetInvestSummaryTotal(f.ctx, f.item.ID, f.unit.ID)
	require.NoError(t, err)
	return total
}

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	require.Truef(t, want.Equal(actual), "expected %s, got %s %v", want, actual, msgAndArgs)
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := utils.ParseDate(value)
	require.NoError(t, err)
	return date
}
