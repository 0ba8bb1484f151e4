// internal/app/system/timeseries/variation.go
package timeseries

import (
	"math/rand/v2"
	"time"
)

// Synthetic variation constants.
const (
	WeekendFactor = 0.7
	WeekdayFactor = 1.0
	TrendFactor   = 0.1
	RandomMin     = 0.85
	RandomRange   = 0.3
)

// DayFactor returns the weekend damping for date.
func DayFactor(date time.Time) float64 {
	if IsWeekend(date) {
		return WeekendFactor
	}
	return WeekdayFactor
}

// Trend rises linearly from 1.0 at the start of the window to
// 1+TrendFactor at daysAgo == 0.
func Trend(daysAgo, totalHistoryDays int) float64 {
	if totalHistoryDays <= 0 {
		return 1.0 + TrendFactor
	}
	return 1.0 + float64(totalHistoryDays-daysAgo)/float64(totalHistoryDays)*TrendFactor
}

// RandomVariation draws uniformly from [RandomMin, RandomMin+RandomRange).
// A nil rnd uses the process-wide source.
func RandomVariation(rnd *rand.Rand) float64 {
	if rnd == nil {
		return RandomMin + rand.Float64()*RandomRange
	}
	return RandomMin + rnd.Float64()*RandomRange
}

// VariationFactor combines weekend damping, the linear trend and a random
// draw. Successive calls differ, so a snapshot sequence must be generated
// once and reused rather than regenerated per query.
func VariationFactor(date time.Time, daysAgo, totalHistoryDays int, rnd *rand.Rand) float64 {
	return DayFactor(date) * Trend(daysAgo, totalHistoryDays) * RandomVariation(rnd)
}

// FactorBounds returns the smallest and largest values VariationFactor can
// produce for the given window.
func FactorBounds(totalHistoryDays int) (lo, hi float64) {
	return WeekendFactor * Trend(totalHistoryDays, totalHistoryDays) * RandomMin,
		WeekdayFactor * Trend(0, totalHistoryDays) * (RandomMin + RandomRange)
}
