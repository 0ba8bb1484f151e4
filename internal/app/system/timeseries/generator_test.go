package timeseries

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

func baseEquipment() []models.Equipment {
	return []models.Equipment{
		{ID: "1", Name: "ULT Freezer", Type: models.TypeUltraLowFreezer, DailyEmissions: models.Measure{Value: 120, Unit: models.UnitKgCO2e}},
		{ID: "2", Name: "Incubator", Type: models.TypeCO2Incubator, DailyEmissions: models.Measure{Value: 65, Unit: models.UnitKgCO2e}},
		{ID: "3", Name: "Cabinet", Type: models.TypeBiosafetyCabinet, DailyEmissions: models.Measure{Value: 35, Unit: models.UnitKgCO2e}},
	}
}

func TestVariationFactor_Bounds(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	lo, hi := FactorBounds(DaysOfHistory)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		day := start.AddDate(0, 0, i%DaysOfHistory)
		f := VariationFactor(day, i%DaysOfHistory, DaysOfHistory, rnd)
		if f < lo || f > hi {
			t.Fatalf("VariationFactor = %f, outside [%f, %f]", f, lo, hi)
		}
	}
}

func TestTrend(t *testing.T) {
	if got := Trend(90, 90); got != 1.0 {
		t.Errorf("Trend(90, 90) = %f, want 1.0", got)
	}
	if got := Trend(0, 90); math.Abs(got-1.1) > 1e-9 {
		t.Errorf("Trend(0, 90) = %f, want 1.1", got)
	}
}

func TestDayFactor(t *testing.T) {
	sat := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)
	mon := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)
	if DayFactor(sat) != WeekendFactor {
		t.Errorf("DayFactor(Saturday) = %f, want %f", DayFactor(sat), WeekendFactor)
	}
	if DayFactor(mon) != WeekdayFactor {
		t.Errorf("DayFactor(Monday) = %f, want %f", DayFactor(mon), WeekdayFactor)
	}
}

func TestGenerateSnapshots_Shape(t *testing.T) {
	now := time.Date(2026, time.October, 16, 14, 0, 0, 0, time.UTC)
	base := baseEquipment()
	snaps := GenerateSnapshots(base, 90, GenerateOptions{Now: now, Rand: rand.New(rand.NewPCG(7, 7))})

	if len(snaps) != 91 {
		t.Fatalf("len(snaps) = %d, want 91", len(snaps))
	}
	if snaps[0].Date != "2026-07-18" {
		t.Errorf("first date = %s, want 2026-07-18", snaps[0].Date)
	}
	last := snaps[len(snaps)-1]
	if last.ID != "snap_2026-10-16" {
		t.Errorf("last id = %s, want snap_2026-10-16", last.ID)
	}

	for i, s := range snaps {
		if i > 0 && !s.Timestamp.After(snaps[i-1].Timestamp) {
			t.Fatalf("snapshots not strictly ascending at %d", i)
		}
		if s.Metadata.TotalEquipmentCount != len(base) {
			t.Errorf("%s: equipment count = %d, want %d", s.ID, s.Metadata.TotalEquipmentCount, len(base))
		}
		if s.Metadata.DataSource != models.SourceMock {
			t.Errorf("%s: data source = %q, want mock", s.ID, s.Metadata.DataSource)
		}
		var sum float64
		for _, eq := range s.Equipment {
			if eq.DailyEmissions.Value != Round2(eq.DailyEmissions.Value) {
				t.Errorf("%s: value %f not rounded to 2 decimals", s.ID, eq.DailyEmissions.Value)
			}
			sum += eq.DailyEmissions.Value
		}
		if s.Metadata.TotalEmissions != math.Round(sum) {
			t.Errorf("%s: total = %f, want %f", s.ID, s.Metadata.TotalEmissions, math.Round(sum))
		}
	}
}

func TestGenerateSnapshots_DoesNotMutateBase(t *testing.T) {
	base := baseEquipment()
	GenerateSnapshots(base, 5, GenerateOptions{Now: time.Now()})
	if base[0].DailyEmissions.Value != 120 {
		t.Errorf("base mutated: value = %f, want 120", base[0].DailyEmissions.Value)
	}
}

func TestGenerateSnapshots_ValuesWithinFactorBounds(t *testing.T) {
	base := baseEquipment()
	snaps := GenerateSnapshots(base, 1, GenerateOptions{Now: time.Now()})
	if len(snaps) != 2 {
		t.Fatalf("len(snaps) = %d, want 2", len(snaps))
	}
	lo, hi := FactorBounds(1)
	for _, s := range snaps {
		for i, eq := range s.Equipment {
			b := base[i].DailyEmissions.Value
			if eq.DailyEmissions.Value < Round2(b*lo)-0.01 || eq.DailyEmissions.Value > Round2(b*hi)+0.01 {
				t.Errorf("%s/%s: value %f outside [%f, %f]", s.ID, eq.ID, eq.DailyEmissions.Value, b*lo, b*hi)
			}
		}
	}
}

func TestAppendEquipment(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	rnd := rand.New(rand.NewPCG(3, 4))
	snaps := GenerateSnapshots(baseEquipment(), 10, GenerateOptions{Now: now, Rand: rnd})

	extra := models.Equipment{ID: "4", Name: "Autoclave", DailyEmissions: models.Measure{Value: 45, Unit: models.UnitKgCO2e}}
	out := AppendEquipment(snaps, extra, 10, rnd)

	if len(out) != len(snaps) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(snaps))
	}
	lo, hi := FactorBounds(10)
	for i, s := range out {
		if len(snaps[i].Equipment) != 3 {
			t.Fatalf("input snapshot %s was modified", snaps[i].ID)
		}
		if len(s.Equipment) != 4 || s.Equipment[3].ID != "4" {
			t.Fatalf("%s: equipment = %+v, want the new item last", s.ID, s.Equipment)
		}
		for j := 0; j < 3; j++ {
			if s.Equipment[j].DailyEmissions.Value != snaps[i].Equipment[j].DailyEmissions.Value {
				t.Errorf("%s/%s: existing value changed", s.ID, s.Equipment[j].ID)
			}
		}
		v := s.Equipment[3].DailyEmissions.Value
		if v < Round2(45*lo)-0.01 || v > Round2(45*hi)+0.01 {
			t.Errorf("%s: new value %f outside [%f, %f]", s.ID, v, 45*lo, 45*hi)
		}
		var sum float64
		for _, eq := range s.Equipment {
			sum += eq.DailyEmissions.Value
		}
		if s.Metadata.TotalEmissions != math.Round(sum) || s.Metadata.TotalEquipmentCount != 4 {
			t.Errorf("%s: metadata = %+v, want totals over 4 items", s.ID, s.Metadata)
		}
		if s.Metadata.DataSource != models.SourceMock {
			t.Errorf("%s: DataSource = %q, want mock", s.ID, s.Metadata.DataSource)
		}
	}
}
