package models

import (
	"errors"
	"time"

	"github.com/mmdatafocus/invest_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("invest_backend/models")

// UpdateSummariesFrom re-runs the monthly then the yearly builder for every
// existing period starting after fromDate, oldest first, and drops periods
// that start after the item's closure date.
func UpdateSummariesFrom(tx *gorm.DB, itemId int, unitId int, fromDate time.Time) error {
	for _, summaryType := range []SummaryType{SummaryTypeMonth, SummaryTypeYear} {
		if err := repropagateSummaries(tx, summaryType, itemId, unitId, fromDate); err != nil {
			return err
		}
	}
	return nil
}

func repropagateSummaries(tx *gorm.DB, summaryType SummaryType, itemId int, unitId int, fromDate time.Time) error {
	item, err := loadSummaryTarget(tx, itemId, unitId)
	if err != nil {
		return err
	}

	minDate, maxDate, found, err := summaryPeriodBounds(tx, summaryType, itemId, unitId, fromDate)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	maxDate = item.clampToClosure(maxDate)

	for periodStart := minDate; !periodStart.After(maxDate); periodStart = summaryType.nextPeriod(periodStart) {
		if _, err := upsertSummary(tx, summaryType, itemId, unitId, periodStart); err != nil {
			return err
		}
	}

	if item.ClosedAt != nil {
		if err := tx.Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start > ?",
			itemId, unitId, summaryType, *item.ClosedAt).
			Delete(&InvestSummary{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// summaryPeriodBounds finds the first and last period start of the given type after fromDate.
func summaryPeriodBounds(tx *gorm.DB, summaryType SummaryType, itemId int, unitId int, fromDate time.Time) (time.Time, time.Time, bool, error) {
	query := func(order string) (*InvestSummary, error) {
		var summary InvestSummary
		err := tx.Where("item_id = ? AND unit_id = ? AND period_type = ? AND period_start > ?", itemId, unitId, summaryType, fromDate).
			Order(order).Take(&summary).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &summary, nil
	}

	first, err := query("period_start ASC")
	if err != nil || first == nil {
		return time.Time{}, time.Time{}, false, err
	}
	last, err := query("period_start DESC")
	if err != nil || last == nil {
		return time.Time{}, time.Time{}, false, err
	}
	return utils.NormalizeDate(first.PeriodStart), utils.NormalizeDate(last.PeriodStart), true, nil
}

// RecalculateSummaries is the cascade run after a history of (item, unit) dated
// date was written or removed. It must run inside the caller's transaction.
func RecalculateSummaries(tx *gorm.DB, itemId int, unitId int, date time.Time) (err error) {
	ctx, span := tracer.Start(tx.Statement.Context, "RecalculateSummaries", trace.WithAttributes(
		attribute.Int("item_id", itemId),
		attribute.Int("unit_id", unitId),
		attribute.String("date", utils.FormatDate(date)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	tx = tx.WithContext(ctx)

	if _, err = UpsertMonthSummary(tx, itemId, unitId, date); err != nil {
		return err
	}
	if err = repropagateSummaries(tx, SummaryTypeMonth, itemId, unitId, date); err != nil {
		return err
	}
	if _, err = UpsertYearSummary(tx, itemId, unitId, date); err != nil {
		return err
	}
	if err = repropagateSummaries(tx, SummaryTypeYear, itemId, unitId, date); err != nil {
		return err
	}
	_, err = UpsertTotalSummary(tx, itemId, unitId)
	return err
}

// RebuildSummaries drops every summary of (item, unit) and builds them again
// from the first to the last history, limited by the item's closure date.
func RebuildSummaries(tx *gorm.DB, itemId int, unitId int) error {
	item, err := loadSummaryTarget(tx, itemId, unitId)
	if err != nil {
		return err
	}

	if err := tx.Where("item_id = ? AND unit_id = ?", itemId, unitId).Delete(&InvestSummary{}).Error; err != nil {
		return err
	}
	if err := tx.Where("item_id = ? AND unit_id = ?", itemId, unitId).Delete(&InvestSummaryTotal{}).Error; err != nil {
		return err
	}

	firstDate, lastDate, found, err := historyDateBounds(tx, itemId, unitId)
	if err != nil {
		return err
	}
	if found {
		lastDate = item.clampToClosure(lastDate)
		for _, summaryType := range []SummaryType{SummaryTypeMonth, SummaryTypeYear} {
			periodStart, _ := summaryType.periodRange(firstDate)
			for ; !periodStart.After(lastDate); periodStart = summaryType.nextPeriod(periodStart) {
				if _, err := upsertSummary(tx, summaryType, itemId, unitId, periodStart); err != nil {
					return err
				}
			}
		}
	}

	_, err = UpsertTotalSummary(tx, itemId, unitId)
	return err
}

func historyDateBounds(tx *gorm.DB, itemId int, unitId int) (time.Time, time.Time, bool, error) {
	var first, last InvestHistory
	err := tx.Where("item_id = ? AND unit_id = ?", itemId, unitId).Order("history_date ASC").Take(&first).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, time.Time{}, false, nil
		}
		return time.Time{}, time.Time{}, false, err
	}
	if err := tx.Where("item_id = ? AND unit_id = ?", itemId, unitId).Order("history_date DESC").Take(&last).Error; err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return utils.NormalizeDate(first.HistoryDate), utils.NormalizeDate(last.HistoryDate), true, nil
}
