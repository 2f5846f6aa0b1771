package utils_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := utils.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "2024-02-29", utils.FormatDate(date))

	for _, value := range []string{"", "2023-02-29", "2024/01/01", "20240101"} {
		_, err := utils.ParseDate(value)
		assert.ErrorIs(t, err, utils.ErrorInvalidInput, value)
	}
}

func TestPeriodRanges(t *testing.T) {
	date := time.Date(2024, time.February, 10, 15, 30, 0, 0, time.UTC)

	first, last := utils.MonthRange(date)
	assert.Equal(t, "2024-02-01", utils.FormatDate(first))
	assert.Equal(t, "2024-02-29", utils.FormatDate(last))

	first, last = utils.MonthRange(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-01", utils.FormatDate(first))
	assert.Equal(t, "2023-12-31", utils.FormatDate(last))

	first, last = utils.YearRange(date)
	assert.Equal(t, "2024-01-01", utils.FormatDate(first))
	assert.Equal(t, "2024-12-31", utils.FormatDate(last))

	assert.Equal(t, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), utils.NormalizeDate(date))
}

func TestDateComparisons(t *testing.T) {
	a := time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)
	b := time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, utils.SameMonth(a, b))
	assert.True(t, utils.SameMonth(b, b.AddDate(0, 0, 27)))
	assert.Equal(t, a, utils.EarlierDate(a, b))
	assert.Equal(t, a, utils.EarlierDate(b, a))
	assert.Equal(t, b, utils.LaterDate(a, b))
	assert.Equal(t, b, utils.LaterDate(b, a))
}
