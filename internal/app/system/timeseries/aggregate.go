// internal/app/system/timeseries/aggregate.go
package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

// DayTotal is one calendar day's emissions total. Snapshots and backend
// daily rows both reduce to this shape before weekly and monthly grouping.
type DayTotal struct {
	Day            time.Time
	Emissions      float64
	EquipmentCount int
}

// Ranges sets the lookback of each rollup.
type Ranges struct {
	Days   int
	Weeks  int
	Months int
}

// DefaultRanges returns the dashboard's standard lookbacks.
func DefaultRanges() Ranges {
	return Ranges{Days: DefaultDailyRange, Weeks: DefaultWeeklyRange, Months: DefaultMonthlyRange}
}

// DayTotals reduces snapshots to per-day totals, preserving order.
func DayTotals(snapshots []models.EquipmentSnapshot) []DayTotal {
	out := make([]DayTotal, len(snapshots))
	for i, s := range snapshots {
		out[i] = DayTotal{
			Day:            s.Timestamp,
			Emissions:      s.Metadata.TotalEmissions,
			EquipmentCount: s.Metadata.TotalEquipmentCount,
		}
	}
	return out
}

// windowStart is midnight of the first day of a trailing window of n
// calendar days that ends today.
func windowStart(now time.Time, n int) time.Time {
	return DaysAgoAtMidnight(now, n-1)
}

// DailyAggregates returns one entry per snapshot within the trailing window
// of days calendar days, today included.
func DailyAggregates(snapshots []models.EquipmentSnapshot, days int, now time.Time) []models.DailyAggregate {
	return DailyFromTotals(DayTotals(snapshots), days, now)
}

// DailyFromTotals is DailyAggregates over pre-reduced day totals.
func DailyFromTotals(totals []DayTotal, days int, now time.Time) []models.DailyAggregate {
	out := []models.DailyAggregate{}
	if days <= 0 {
		return out
	}
	cutoff := windowStart(now, days)
	for _, t := range totals {
		if t.Day.Before(cutoff) {
			continue
		}
		out = append(out, models.DailyAggregate{
			Date:      FormatDate(t.Day),
			Emissions: t.Emissions,
		})
	}
	return out
}

// WeekBucket is one ISO week's total.
type WeekBucket struct {
	Year           int
	Week           int
	Start          time.Time // Monday
	Total          float64
	EquipmentCount int
}

// MonthBucket is one calendar month's total.
type MonthBucket struct {
	Year  int
	Month time.Month
	Total float64
}

// GroupWeeks buckets the trailing weeks*7 days by (ISO year, ISO week),
// ordered by the Monday that starts each week. A week's equipment count is
// taken from the first day seen for that week, not the latest or the maximum.
func GroupWeeks(totals []DayTotal, weeks int, now time.Time) []WeekBucket {
	if weeks <= 0 {
		return nil
	}
	cutoff := windowStart(now, weeks*7)

	type key struct{ year, week int }
	index := map[key]int{}
	var out []WeekBucket
	for _, t := range totals {
		if t.Day.Before(cutoff) {
			continue
		}
		y, w := ISOWeek(t.Day)
		k := key{y, w}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, WeekBucket{
				Year:           y,
				Week:           w,
				Start:          ISOWeekStart(y, w, now.Location()),
				EquipmentCount: t.EquipmentCount,
			})
		}
		out[i].Total += t.Emissions
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// GroupMonths buckets days from the first of the month `months` back by
// calendar month, oldest first.
func GroupMonths(totals []DayTotal, months int, now time.Time) []MonthBucket {
	if months <= 0 {
		return nil
	}
	cutoff := time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, now.Location())

	type key struct {
		year  int
		month time.Month
	}
	index := map[key]int{}
	var out []MonthBucket
	for _, t := range totals {
		if t.Day.Before(cutoff) {
			continue
		}
		k := key{t.Day.Year(), t.Day.Month()}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, MonthBucket{Year: k.year, Month: k.month})
		}
		out[i].Total += t.Emissions
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// WeeklyAggregates groups the trailing weeks*7 days by ISO week.
func WeeklyAggregates(snapshots []models.EquipmentSnapshot, weeks int, now time.Time) []models.WeeklyAggregate {
	return WeeklyFromTotals(DayTotals(snapshots), weeks, now)
}

// WeeklyFromTotals is WeeklyAggregates over pre-reduced day totals.
func WeeklyFromTotals(totals []DayTotal, weeks int, now time.Time) []models.WeeklyAggregate {
	out := []models.WeeklyAggregate{}
	for _, b := range GroupWeeks(totals, weeks, now) {
		out = append(out, models.WeeklyAggregate{
			Name:           WeekLabel(b.Week),
			Emissions:      math.Round(b.Total),
			EquipmentCount: b.EquipmentCount,
		})
	}
	return out
}

// MonthlyAggregates groups snapshots from the first day of the month
// `months` back by calendar month.
func MonthlyAggregates(snapshots []models.EquipmentSnapshot, months int, now time.Time) []models.MonthlyAggregate {
	return MonthlyFromTotals(DayTotals(snapshots), months, now)
}

// MonthlyFromTotals is MonthlyAggregates over pre-reduced day totals.
func MonthlyFromTotals(totals []DayTotal, months int, now time.Time) []models.MonthlyAggregate {
	out := []models.MonthlyAggregate{}
	for _, b := range GroupMonths(totals, months, now) {
		out = append(out, models.MonthlyAggregate{
			Name:      MonthName(int(b.Month) - 1),
			Emissions: math.Round(b.Total),
		})
	}
	return out
}

// Rollup derives all three rollups from one snapshot sequence.
func Rollup(snapshots []models.EquipmentSnapshot, r Ranges, now time.Time) models.HistoricalData {
	totals := DayTotals(snapshots)
	return models.HistoricalData{
		Daily:   DailyFromTotals(totals, r.Days, now),
		Weekly:  WeeklyFromTotals(totals, r.Weeks, now),
		Monthly: MonthlyFromTotals(totals, r.Months, now),
	}
}
