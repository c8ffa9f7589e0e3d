package progress

import (
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/montanaflynn/stats"
)

type DayBucket struct {
	Date  time.Time
	Count int
}

type ActivityCalendar struct {
	Today time.Time

	// Week runs Monday to Sunday and contains Today.
	Week  [7]DayBucket
	Month []DayBucket

	WeekTotal           int
	MonthTotal          int
	ActiveDaysThisMonth int

	// DailyAverage is the mean count over the month's days up to Today.
	DailyAverage float64

	// ActiveStreak counts consecutive active days ending today, or
	// yesterday when nothing has been read yet today.
	ActiveStreak int
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// Calendar buckets records by calendar date in today's location. Records on
// the same date are summed; non-positive counts are ignored.
func Calendar(records []models.ActivityRecord, today time.Time) ActivityCalendar {
	loc := today.Location()
	y, m, d := today.Date()
	day0 := time.Date(y, m, d, 0, 0, 0, 0, loc)

	counts := make(map[dayKey]int, len(records))
	for _, r := range records {
		if r.Count <= 0 {
			continue
		}
		ry, rm, rd := r.Day(loc)
		counts[dayKey{ry, rm, rd}] += r.Count
	}

	cal := ActivityCalendar{Today: day0}

	offset := (int(day0.Weekday()) + 6) % 7
	weekStart := day0.AddDate(0, 0, -offset)
	for i := range cal.Week {
		dt := weekStart.AddDate(0, 0, i)
		n := counts[keyOf(dt)]
		cal.Week[i] = DayBucket{Date: dt, Count: n}
		cal.WeekTotal += n
	}

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	days := monthStart.AddDate(0, 1, -1).Day()
	cal.Month = make([]DayBucket, days)
	toDate := make([]float64, 0, d)
	for i := range cal.Month {
		dt := monthStart.AddDate(0, 0, i)
		n := counts[keyOf(dt)]
		cal.Month[i] = DayBucket{Date: dt, Count: n}
		cal.MonthTotal += n
		if n > 0 {
			cal.ActiveDaysThisMonth++
		}
		if i < d {
			toDate = append(toDate, float64(n))
		}
	}
	if mean, err := stats.Mean(toDate); err == nil {
		cal.DailyAverage = mean
	}

	cur := day0
	if counts[keyOf(cur)] == 0 {
		cur = cur.AddDate(0, 0, -1)
	}
	for counts[keyOf(cur)] > 0 {
		cal.ActiveStreak++
		cur = cur.AddDate(0, 0, -1)
	}
	return cal
}
