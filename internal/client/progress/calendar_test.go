package progress

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, ist)
}

func TestCalendar_MidnightSplitsDays(t *testing.T) {
	today := at(2024, 3, 14, 9, 0)
	recs := []models.ActivityRecord{
		{Date: at(2024, 3, 12, 23, 59), Count: 1},
		{Date: at(2024, 3, 13, 0, 1), Count: 1},
	}

	cal := Calendar(recs, today)

	assert.Equal(t, 1, cal.Month[11].Count)
	assert.Equal(t, 1, cal.Month[12].Count)
	assert.Equal(t, 2, cal.ActiveDaysThisMonth)
}

func TestCalendar_SameDaySummed(t *testing.T) {
	today := at(2024, 3, 14, 9, 0)
	recs := []models.ActivityRecord{
		{Date: at(2024, 3, 14, 6, 0), Count: 2},
		{Date: at(2024, 3, 14, 20, 0), Count: 3},
		{Date: at(2024, 3, 14, 21, 0), Count: 0},
		{Date: at(2024, 3, 14, 22, 0), Count: -4},
	}

	cal := Calendar(recs, today)
	assert.Equal(t, 5, cal.Month[13].Count)
	assert.Equal(t, 5, cal.MonthTotal)
	assert.Equal(t, 1, cal.ActiveStreak)
}

func TestCalendar_WeekStartsMonday(t *testing.T) {
	// 2024-03-17 is a Sunday.
	today := at(2024, 3, 17, 12, 0)
	recs := []models.ActivityRecord{
		{Date: at(2024, 3, 10, 12, 0), Count: 9}, // previous Sunday
		{Date: at(2024, 3, 11, 12, 0), Count: 1}, // Monday
		{Date: at(2024, 3, 17, 12, 0), Count: 2},
	}

	cal := Calendar(recs, today)

	assert.Equal(t, time.Monday, cal.Week[0].Date.Weekday())
	assert.Equal(t, 11, cal.Week[0].Date.Day())
	assert.Equal(t, 17, cal.Week[6].Date.Day())
	assert.Equal(t, 1, cal.Week[0].Count)
	assert.Equal(t, 2, cal.Week[6].Count)
	assert.Equal(t, 3, cal.WeekTotal)
	assert.Equal(t, 12, cal.MonthTotal)
}

func TestCalendar_WeekSpansMonthBoundary(t *testing.T) {
	// Wednesday 2024-05-01.
	today := at(2024, 5, 1, 8, 0)
	recs := []models.ActivityRecord{{Date: at(2024, 4, 29, 8, 0), Count: 4}}

	cal := Calendar(recs, today)
	assert.Equal(t, time.April, cal.Week[0].Date.Month())
	assert.Equal(t, 4, cal.Week[0].Count)
	assert.Equal(t, 4, cal.WeekTotal)
	assert.Equal(t, 0, cal.MonthTotal)
	assert.Len(t, cal.Month, 31)
}

func TestCalendar_MonthLength(t *testing.T) {
	cal := Calendar(nil, at(2024, 2, 10, 0, 0))
	require.Len(t, cal.Month, 29)
	assert.Equal(t, 1, cal.Month[0].Date.Day())
	assert.Equal(t, 29, cal.Month[28].Date.Day())
	assert.Zero(t, cal.DailyAverage)
	assert.Zero(t, cal.ActiveStreak)
}

func TestCalendar_DailyAverageMonthToDate(t *testing.T) {
	today := at(2024, 3, 4, 10, 0)
	recs := []models.ActivityRecord{
		{Date: at(2024, 3, 1, 10, 0), Count: 4},
		{Date: at(2024, 3, 3, 10, 0), Count: 2},
		{Date: at(2024, 3, 20, 10, 0), Count: 50},
	}

	cal := Calendar(recs, today)
	assert.InDelta(t, 1.5, cal.DailyAverage, 1e-9)
}

func TestCalendar_ActiveStreak(t *testing.T) {
	today := at(2024, 3, 14, 9, 0)

	endingYesterday := []models.ActivityRecord{
		{Date: at(2024, 3, 13, 9, 0), Count: 1},
		{Date: at(2024, 3, 12, 9, 0), Count: 1},
		{Date: at(2024, 3, 11, 9, 0), Count: 1},
		{Date: at(2024, 3, 9, 9, 0), Count: 1},
	}
	assert.Equal(t, 3, Calendar(endingYesterday, today).ActiveStreak)

	acrossMonths := []models.ActivityRecord{
		{Date: at(2024, 3, 1, 9, 0), Count: 1},
		{Date: at(2024, 2, 29, 9, 0), Count: 1},
		{Date: at(2024, 2, 28, 9, 0), Count: 1},
	}
	assert.Equal(t, 3, Calendar(acrossMonths, at(2024, 3, 1, 18, 0)).ActiveStreak)

	broken := []models.ActivityRecord{{Date: at(2024, 3, 12, 9, 0), Count: 1}}
	assert.Equal(t, 0, Calendar(broken, today).ActiveStreak)
}

func TestCalendar_BareDatesUseCalendarDay(t *testing.T) {
	today := at(2024, 3, 14, 9, 0)
	recs := []models.ActivityRecord{
		{Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Count: 1, DateOnly: true},
		// 20:00 UTC on the 13th is already the 14th in IST.
		{Date: time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC), Count: 1},
	}

	cal := Calendar(recs, today)
	assert.Equal(t, 2, cal.Month[13].Count)
	assert.Equal(t, 0, cal.Month[12].Count)
}
