package timeseries

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

func TestDailyAggregates_TwoSnapshots(t *testing.T) {
	now := time.Now()
	base := []models.Equipment{
		{ID: "a", DailyEmissions: models.Measure{Value: 50, Unit: models.UnitKgCO2e}},
		{ID: "b", DailyEmissions: models.Measure{Value: 50, Unit: models.UnitKgCO2e}},
	}
	snaps := GenerateSnapshots(base, 1, GenerateOptions{Now: now})

	daily := DailyAggregates(snaps, 1, now)
	if len(daily) != 1 {
		t.Fatalf("len(daily) = %d, want 1", len(daily))
	}
	if daily[0].Date != FormatDate(now) {
		t.Errorf("daily[0].Date = %s, want %s", daily[0].Date, FormatDate(now))
	}
	if daily[0].Emissions < 59.5 || daily[0].Emissions > 127 {
		t.Errorf("daily[0].Emissions = %f, want within [59.5, 127]", daily[0].Emissions)
	}

	if got := DailyAggregates(snaps, 2, now); len(got) != 2 {
		t.Errorf("len(daily(2)) = %d, want 2", len(got))
	}
}

func TestDailyAggregates_Empty(t *testing.T) {
	if got := DailyAggregates(nil, 30, time.Now()); got == nil || len(got) != 0 {
		t.Errorf("DailyAggregates(nil) = %v, want empty non-nil slice", got)
	}
	if got := WeeklyAggregates(nil, 12, time.Now()); got == nil || len(got) != 0 {
		t.Errorf("WeeklyAggregates(nil) = %v, want empty non-nil slice", got)
	}
	if got := MonthlyAggregates(nil, 12, time.Now()); got == nil || len(got) != 0 {
		t.Errorf("MonthlyAggregates(nil) = %v, want empty non-nil slice", got)
	}
}

func TestWeeklyAndDailySumsAgree(t *testing.T) {
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	snaps := GenerateSnapshots(baseEquipment(), DaysOfHistory, GenerateOptions{Now: now, Rand: rand.New(rand.NewPCG(3, 4))})

	for _, weeks := range []int{1, 4, 12} {
		var dailySum, weeklySum float64
		for _, d := range DailyAggregates(snaps, weeks*7, now) {
			dailySum += d.Emissions
		}
		for _, w := range WeeklyAggregates(snaps, weeks, now) {
			weeklySum += w.Emissions
		}
		// Each weekly total is rounded once.
		if math.Abs(dailySum-weeklySum) > float64(weeks+1)*0.5 {
			t.Errorf("weeks=%d: daily sum %f, weekly sum %f", weeks, dailySum, weeklySum)
		}
	}
}

func TestWeeklyAggregates_OrderAcrossYearBoundary(t *testing.T) {
	loc := time.UTC
	days := []DayTotal{
		{Day: time.Date(2024, time.December, 23, 0, 0, 0, 0, loc), Emissions: 10, EquipmentCount: 3},
		{Day: time.Date(2024, time.December, 30, 0, 0, 0, 0, loc), Emissions: 20, EquipmentCount: 4},
		{Day: time.Date(2024, time.December, 31, 0, 0, 0, 0, loc), Emissions: 5, EquipmentCount: 9},
		{Day: time.Date(2025, time.January, 6, 0, 0, 0, 0, loc), Emissions: 30, EquipmentCount: 5},
	}
	now := time.Date(2025, time.January, 7, 12, 0, 0, 0, loc)

	got := WeeklyFromTotals(days, 4, now)
	want := []models.WeeklyAggregate{
		{Name: "W52", Emissions: 10, EquipmentCount: 3},
		{Name: "W1", Emissions: 25, EquipmentCount: 4},
		{Name: "W2", Emissions: 30, EquipmentCount: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthlyAggregates(t *testing.T) {
	loc := time.UTC
	days := []DayTotal{
		{Day: time.Date(2026, time.July, 31, 0, 0, 0, 0, loc), Emissions: 100},
		{Day: time.Date(2026, time.August, 1, 0, 0, 0, 0, loc), Emissions: 10.4},
		{Day: time.Date(2026, time.August, 2, 0, 0, 0, 0, loc), Emissions: 10.4},
		{Day: time.Date(2026, time.October, 1, 0, 0, 0, 0, loc), Emissions: 7},
	}
	now := time.Date(2026, time.October, 16, 0, 0, 0, 0, loc)

	got := MonthlyFromTotals(days, 2, now)
	want := []models.MonthlyAggregate{
		{Name: "Aug", Emissions: 21},
		{Name: "Oct", Emissions: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRollup_UsesRanges(t *testing.T) {
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	snaps := GenerateSnapshots(baseEquipment(), DaysOfHistory, GenerateOptions{Now: now})

	h := Rollup(snaps, DefaultRanges(), now)
	if len(h.Daily) != DefaultDailyRange {
		t.Errorf("len(Daily) = %d, want %d", len(h.Daily), DefaultDailyRange)
	}
	if len(h.Weekly) < DefaultWeeklyRange || len(h.Weekly) > DefaultWeeklyRange+1 {
		t.Errorf("len(Weekly) = %d, want %d or %d", len(h.Weekly), DefaultWeeklyRange, DefaultWeeklyRange+1)
	}
	if len(h.Monthly) == 0 {
		t.Error("Monthly should not be empty")
	}
}
