package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const summarySheetName = "Summary"

var summaryExportHeadings = []string{
	"Period",
	"Principal Prev", "Principal Current", "Principal Total",
	"Proceeds Prev", "Proceeds Current", "Proceeds Total", "Inout Total",
	"Interest Prev", "Interest Current", "Interest Total",
	"Eval Prev", "Eval", "Revenue Total",
	"Earn", "Earn Rate (%)", "Earn Diff", "Earn Rate Diff (%)",
	"Earn Inc Proceeds", "Earn Rate Inc Proceeds (%)", "Earn Inc Proceeds Diff", "Earn Rate Inc Proceeds Diff (%)",
}

func amountCell(d decimal.Decimal) float64 {
	return d.Round(4).InexactFloat64()
}

// rates are exported as percentages with 2 decimal places
func rateCell(d decimal.Decimal) float64 {
	return d.Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func (s *InvestSummary) cellValues() []interface{} {
	period := s.PeriodStart.Format("2006-01")
	if s.PeriodType == SummaryTypeYear {
		period = s.PeriodStart.Format("2006")
	}
	return []interface{}{
		period,
		amountCell(s.InoutPrincipalPrev), amountCell(s.InoutPrincipalCurrent), amountCell(s.InoutPrincipalTotal),
		amountCell(s.InoutProceedsPrev), amountCell(s.InoutProceedsCurrent), amountCell(s.InoutProceedsTotal), amountCell(s.InoutTotal),
		amountCell(s.RevenueInterestPrev), amountCell(s.RevenueInterestCurrent), amountCell(s.RevenueInterestTotal),
		amountCell(s.RevenueEvalPrev), amountCell(s.RevenueEval), amountCell(s.RevenueTotal),
		amountCell(s.Earn), rateCell(s.EarnRate), amountCell(s.EarnPrevDiff), rateCell(s.EarnRatePrevDiff),
		amountCell(s.EarnIncProceeds), rateCell(s.EarnRateIncProceeds), amountCell(s.EarnIncProceedsPrevDiff), rateCell(s.EarnRateIncProceedsPrevDiff),
	}
}

// ExportInvestSummaries writes the period rows of (item, unit) into a one-sheet workbook.
func ExportInvestSummaries(ctx context.Context, itemId int, unitId int, summaryType SummaryType) (*excelize.File, error) {
	summaries, err := ListInvestSummaries(ctx, itemId, unitId, summaryType, nil, nil)
	if err != nil {
		return nil, err
	}

	return newSummaryWorkbook(summarySheetName, summaries)
}

// newSummaryWorkbook is closed again when any cell cannot be written.
func newSummaryWorkbook(sheetName string, summaries []*InvestSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeSummarySheet(f, sheetName, summaries); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, sheetName string, summaries []*InvestSummary) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	// Add headers
	for i, h := range summaryExportHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	// Add data
	for rowNo, summary := range summaries {
		for i, value := range summary.cellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportFileName builds the download name of an export.
func ExportFileName(itemId int, unitId int, summaryType SummaryType) string {
	return fmt.Sprintf("invest-summary-%d-%d-%s-%s.xlsx", itemId, unitId, summaryType, utils.FormatDate(time.Now()))
}
