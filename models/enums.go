package models

import "github.com/mmdatafocus/invest_backend/utils"

type HistoryType string

const (
	HistoryTypeInout   HistoryType = "inout"
	HistoryTypeRevenue HistoryType = "revenue"
)

func (t HistoryType) IsValid() bool {
	switch t {
	case HistoryTypeInout, HistoryTypeRevenue:
		return true
	}
	return false
}

type InoutType string

const (
	InoutTypePrincipal InoutType = "principal"
	InoutTypeProceeds  InoutType = "proceeds"
)

func (t InoutType) IsValid() bool {
	switch t {
	case InoutTypePrincipal, InoutTypeProceeds:
		return true
	}
	return false
}

type RevenueType string

const (
	RevenueTypeInterest RevenueType = "interest"
	RevenueTypeEval     RevenueType = "eval"
)

func (t RevenueType) IsValid() bool {
	switch t {
	case RevenueTypeInterest, RevenueTypeEval:
		return true
	}
	return false
}

type SummaryType string

const (
	SummaryTypeMonth SummaryType = "month"
	SummaryTypeYear  SummaryType = "year"
)

func (t SummaryType) IsValid() bool {
	switch t {
	case SummaryTypeMonth, SummaryTypeYear:
		return true
	}
	return false
}

// ParseSummaryType maps a query value to a SummaryType ("" means month).
func ParseSummaryType(value string) (SummaryType, error) {
	if value == "" {
		return SummaryTypeMonth, nil
	}
	t := SummaryType(value)
	if !t.IsValid() {
		return "", utils.NewInputError("invalid summary type %q", value)
	}
	return t, nil
}
