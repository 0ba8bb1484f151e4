// internal/app/system/timeseries/generator.go
package timeseries

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

// GenerateOptions tunes snapshot generation. The zero value uses the current
// time, the process-wide random source and the "mock" data source label.
type GenerateOptions struct {
	Now    time.Time
	Rand   *rand.Rand
	Source string
}

// GenerateSnapshots produces historyDays+1 daily snapshots, oldest first,
// one per calendar day ending today. Each equipment item gets its own
// variation draw; values are rounded to 2 decimals before totals are taken.
func GenerateSnapshots(base []models.Equipment, historyDays int, opts GenerateOptions) []models.EquipmentSnapshot {
	if historyDays < 0 {
		historyDays = 0
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	source := opts.Source
	if source == "" {
		source = models.SourceMock
	}

	snapshots := make([]models.EquipmentSnapshot, 0, historyDays+1)
	for daysAgo := historyDays; daysAgo >= 0; daysAgo-- {
		day := DaysAgoAtMidnight(now, daysAgo)

		items := make([]models.Equipment, len(base))
		for i, eq := range base {
			items[i] = vary(eq, day, daysAgo, historyDays, opts.Rand)
		}

		date := FormatDate(day)
		snap := models.EquipmentSnapshot{
			ID:        "snap_" + date,
			Timestamp: day,
			Date:      date,
			Equipment: items,
			Metadata:  models.SnapshotMetadata{DataSource: source},
		}
		Recount(&snap)
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// AppendEquipment returns a copy of snapshots with eq added to every day,
// drawing fresh per-day values for eq alone. The values already drawn for
// other equipment are kept, so past totals move only by eq's share.
// historyDays must be the value the sequence was generated with.
func AppendEquipment(snapshots []models.EquipmentSnapshot, eq models.Equipment, historyDays int, rnd *rand.Rand) []models.EquipmentSnapshot {
	out := models.CloneSnapshots(snapshots)
	last := len(out) - 1
	for i := range out {
		out[i].Equipment = append(out[i].Equipment, vary(eq, out[i].Timestamp, last-i, historyDays, rnd))
		Recount(&out[i])
	}
	return out
}

// Recount recomputes the metadata totals from the snapshot's per-item
// values. DataSource is left as is.
func Recount(s *models.EquipmentSnapshot) {
	var sum float64
	for _, eq := range s.Equipment {
		sum += eq.DailyEmissions.Value
	}
	s.Metadata.TotalEquipmentCount = len(s.Equipment)
	s.Metadata.TotalEmissions = math.Round(sum)
}

func vary(eq models.Equipment, day time.Time, daysAgo, historyDays int, rnd *rand.Rand) models.Equipment {
	factor := VariationFactor(day, daysAgo, historyDays, rnd)
	eq.DailyEmissions.Value = Round2(eq.DailyEmissions.Value * factor)
	return eq
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds v to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
