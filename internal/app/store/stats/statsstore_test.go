package statsstore

import (
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/testutil"
)

func TestRecordAndGetForDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	day := time.Date(2026, time.October, 16, 15, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, day, TypeSync, "success", map[string]float64{"equipment_count": 12}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, day.Add(time.Hour), TypeSync, "success", map[string]float64{"equipment_count": 13}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, day, TypeSync, "failed", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	stats, err := store.GetForDate(ctx, day, TypeSync)
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	if stats.Counters["success"] != 2 || stats.Counters["failed"] != 1 {
		t.Errorf("counters = %v", stats.Counters)
	}
	if stats.Gauges["equipment_count"] != 13 {
		t.Errorf("equipment_count gauge = %v, want 13", stats.Gauges["equipment_count"])
	}
}

func TestGetForDate_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := store.GetForDate(ctx, time.Now(), TypeEmissions); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSumCountersAndRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	base := time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.Increment(ctx, base.AddDate(0, 0, i), TypeEmissions, "recorded", 12); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}

	sums, err := store.SumCounters(ctx, base, base.AddDate(0, 0, 1), TypeEmissions)
	if err != nil {
		t.Fatalf("SumCounters: %v", err)
	}
	if sums["recorded"] != 24 {
		t.Errorf("recorded = %d, want 24", sums["recorded"])
	}

	days, err := store.GetRange(ctx, base, base.AddDate(0, 0, 2), TypeEmissions)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(days) != 3 || !days[0].Date.Equal(base) {
		t.Errorf("GetRange = %d days, first %v", len(days), days)
	}
}
