// Package progress turns the server's raw reading statistics into the
// numbers shown on progress screens. Everything here is a pure function of
// its inputs.
package progress

import (
	"github.com/dmitrijs2005/shlokapath/internal/client/models"
)

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 100

type DerivedProgress struct {
	Level         int
	CurrentXP     int
	XPToNext      int
	LevelProgress float64

	Streak          int
	LongestStreak   int
	TotalStreakDays int

	Periods          models.PeriodCounts
	TotalShlokasRead int
	TotalBooksRead   int
}

// Derive computes DerivedProgress from s. A nil snapshot or an absent
// group counts as zero. A positive Level from the server wins over the one
// implied by Experience.
func Derive(s *models.StatsSnapshot) DerivedProgress {
	var d DerivedProgress
	if s == nil {
		s = &models.StatsSnapshot{}
	}

	// Experience is the running total across all levels, not the amount
	// earned within the current one.
	xp := max(s.Experience, 0)
	if s.Level > 0 {
		d.Level = s.Level
		d.CurrentXP = min(max(xp-(s.Level-1)*XPPerLevel, 0), XPPerLevel)
	} else {
		d.Level = xp/XPPerLevel + 1
		d.CurrentXP = xp % XPPerLevel
	}
	d.XPToNext = XPPerLevel - d.CurrentXP
	d.LevelProgress = float64(d.CurrentXP) / XPPerLevel

	if s.Streak != nil {
		d.Streak = s.Streak.Current
		d.LongestStreak = max(s.Streak.Longest, s.Streak.Current)
		d.TotalStreakDays = s.Streak.TotalDays
	}
	if s.Periods != nil {
		d.Periods = *s.Periods
	}
	d.TotalShlokasRead = s.TotalShlokasRead
	d.TotalBooksRead = s.TotalBooksRead
	return d
}
