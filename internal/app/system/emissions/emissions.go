// internal/app/system/emissions/emissions.go
//
// Package emissions derives dashboard statistics from daily rollups.
package emissions

import (
	"math"
	"strings"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

// Change is a percentage change and its direction.
type Change struct {
	Percent float64
	Type    string
}

// PercentageChange returns |current-previous|/previous*100. A zero previous
// value yields {0, increase} rather than dividing by zero.
func PercentageChange(current, previous float64) Change {
	if previous == 0 {
		return Change{Percent: 0, Type: models.ChangeIncrease}
	}
	change := (current - previous) / previous * 100
	typ := models.ChangeIncrease
	if change < 0 {
		typ = models.ChangeDecrease
	}
	return Change{Percent: math.Abs(change), Type: typ}
}

// KgToTons converts kilograms to metric tons.
func KgToTons(kg float64) float64 { return kg / 1000 }

// KWhToMWh converts kilowatt-hours to megawatt-hours.
func KWhToMWh(kwh float64) float64 { return kwh / 1000 }

// FormatEmissions scales kg to tons once the value reaches 1000.
func FormatEmissions(kg float64) models.Measure {
	if kg >= 1000 {
		return models.Measure{Value: round2(KgToTons(kg)), Unit: models.UnitTCO2e}
	}
	return models.Measure{Value: round2(kg), Unit: models.UnitKgCO2e}
}

// FormatConsumption scales kWh to MWh once the value reaches 1000.
func FormatConsumption(kwh float64) models.Measure {
	if kwh >= 1000 {
		return models.Measure{Value: round2(KWhToMWh(kwh)), Unit: "MWh"}
	}
	return models.Measure{Value: round2(kwh), Unit: "kWh"}
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// CurrentMonth returns the entries whose date falls in now's calendar month.
func CurrentMonth(daily []models.DailyAggregate, now time.Time) []models.DailyAggregate {
	return inMonth(daily, MonthKey(now))
}

// PreviousMonth returns the entries whose date falls in the month before now's.
func PreviousMonth(daily []models.DailyAggregate, now time.Time) []models.DailyAggregate {
	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	return inMonth(daily, MonthKey(prev))
}

func inMonth(daily []models.DailyAggregate, key string) []models.DailyAggregate {
	out := []models.DailyAggregate{}
	for _, d := range daily {
		if strings.HasPrefix(d.Date, key) {
			out = append(out, d)
		}
	}
	return out
}

// SumEmissions totals the emissions of daily entries.
func SumEmissions(daily []models.DailyAggregate) float64 {
	var sum float64
	for _, d := range daily {
		sum += d.Emissions
	}
	return sum
}

// AverageDailyEmissions is SumEmissions divided by the entry count, or 0
// for no entries.
func AverageDailyEmissions(daily []models.DailyAggregate) float64 {
	if len(daily) == 0 {
		return 0
	}
	return SumEmissions(daily) / float64(len(daily))
}

// LastNDays returns the trailing n entries.
func LastNDays(daily []models.DailyAggregate, n int) []models.DailyAggregate {
	if n <= 0 {
		return []models.DailyAggregate{}
	}
	if n >= len(daily) {
		return daily
	}
	return daily[len(daily)-n:]
}

// MonthlyConsumptionKWh estimates a 30-day energy draw from power ratings.
func MonthlyConsumptionKWh(equipment []models.Equipment) float64 {
	var kwh float64
	for _, eq := range equipment {
		kwh += eq.PowerDraw.Value * 24 * 30
	}
	return kwh
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
