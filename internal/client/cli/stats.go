package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/client/progress"
	"golang.org/x/sync/errgroup"
)

const barWidth = 20

// fetchProgress loads the stats snapshot and the activity history in
// parallel.
func (a *App) fetchProgress(ctx context.Context) (*models.StatsSnapshot, []models.ActivityRecord, error) {
	var (
		snap *models.StatsSnapshot
		recs []models.ActivityRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = a.session.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = a.session.StreakHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snap, recs, nil
}

func (a *App) Stats(ctx context.Context) error {
	snap, recs, err := a.fetchProgress(ctx)
	if err != nil {
		return err
	}

	p := progress.Derive(snap)
	cal := progress.Calendar(recs, a.now())

	filled := int(p.LevelProgress * barWidth)
	a.printf("Level %d  [%s%s] %d/%d XP, %d to next level\n",
		p.Level, strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled),
		p.CurrentXP, progress.XPPerLevel, p.XPToNext)
	a.printf("Streak: %d days (longest %d, %d days in total)\n", p.Streak, p.LongestStreak, p.TotalStreakDays)
	a.printf("Shlokas read: %d   Books completed: %d\n", p.TotalShlokasRead, p.TotalBooksRead)
	a.printf("This week: %d   This month: %d   All time: %d\n", p.Periods.ThisWeek, p.Periods.ThisMonth, p.Periods.AllTime)

	a.printf("\n")
	a.printWeek(cal)
	return nil
}

func (a *App) Calendar(ctx context.Context) error {
	recs, err := a.session.StreakHistory(ctx)
	if err != nil {
		return err
	}
	cal := progress.Calendar(recs, a.now())

	a.printf("%s\n", cal.Today.Format("January 2006"))
	a.printf("  Mo  Tu  We  Th  Fr  Sa  Su\n")

	var b strings.Builder
	lead := (int(cal.Month[0].Date.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", lead))
	for i, day := range cal.Month {
		b.WriteString(dayCell(day, day.Date.Equal(cal.Today)))
		if (lead+i)%7 == 6 {
			b.WriteString("\n")
		}
	}
	a.printf("%s\n", strings.TrimRight(b.String(), "\n"))

	a.printf("\nActive days: %d   Total: %d   Daily average: %.1f   Current run: %d\n",
		cal.ActiveDaysThisMonth, cal.MonthTotal, cal.DailyAverage, cal.ActiveStreak)
	return nil
}

func (a *App) printWeek(cal progress.ActivityCalendar) {
	var b strings.Builder
	for _, d := range cal.Week {
		fmt.Fprintf(&b, "%s:%d ", d.Date.Format("Mon"), d.Count)
	}
	a.printf("This week  %s (total %d)\n", strings.TrimSpace(b.String()), cal.WeekTotal)
}

// dayCell renders one calendar day: the date, marked with * when something
// was read, or bracketed when it is today.
func dayCell(d progress.DayBucket, today bool) string {
	mark := " "
	if d.Count > 0 {
		mark = "*"
	}
	if today {
		return fmt.Sprintf("[%2d]", d.Date.Day())
	}
	return fmt.Sprintf(" %2d%s", d.Date.Day(), mark)
}
