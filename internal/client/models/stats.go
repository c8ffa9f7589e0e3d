package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatsSnapshot is the raw counter set reported by the server. Optional
// groups may be absent when the server predates them.
type StatsSnapshot struct {
	TotalShlokasRead int           `json:"total_shlokas_read"`
	TotalBooksRead   int           `json:"total_books_read"`
	Level            int           `json:"level"`
	Experience       int           `json:"experience"`
	Streak           *StreakStats  `json:"streak,omitempty"`
	Periods          *PeriodCounts `json:"periods,omitempty"`
}

type StreakStats struct {
	Current   int `json:"current"`
	Longest   int `json:"longest"`
	TotalDays int `json:"total_days"`
}

type PeriodCounts struct {
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
	AllTime   int `json:"all_time"`
}

// ActivityRecord is the number of readings logged on one date. DateOnly is
// set when the server sent a bare calendar date, in which case Date is that
// date at midnight UTC and carries no instant.
type ActivityRecord struct {
	Date     time.Time
	Count    int
	DateOnly bool
}

const dayLayout = "2006-01-02"

type activityRecordJSON struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UnmarshalJSON accepts either a bare calendar date or an RFC 3339 timestamp.
func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	var raw activityRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dateOnly := true
	d, err := time.Parse(dayLayout, raw.Date)
	if err != nil {
		dateOnly = false
		d, err = time.Parse(time.RFC3339, raw.Date)
		if err != nil {
			return fmt.Errorf("activity date %q: %w", raw.Date, err)
		}
	}
	r.Date = d
	r.Count = raw.Count
	r.DateOnly = dateOnly
	return nil
}

func (r ActivityRecord) MarshalJSON() ([]byte, error) {
	layout := time.RFC3339
	if r.DateOnly {
		layout = dayLayout
	}
	return json.Marshal(activityRecordJSON{Date: r.Date.Format(layout), Count: r.Count})
}

// Day returns the calendar date of r as seen in loc.
func (r ActivityRecord) Day(loc *time.Location) (year int, month time.Month, day int) {
	if r.DateOnly {
		return r.Date.Date()
	}
	return r.Date.In(loc).Date()
}
