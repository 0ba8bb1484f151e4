package emissions

import (
	"math"
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name        string
		cur, prev   float64
		wantPercent float64
		wantType    string
	}{
		{"zero previous", 50, 0, 0, models.ChangeIncrease},
		{"zero both", 0, 0, 0, models.ChangeIncrease},
		{"increase", 150, 100, 50, models.ChangeIncrease},
		{"decrease", 75, 100, 25, models.ChangeDecrease},
		{"unchanged", 100, 100, 0, models.ChangeIncrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageChange(tt.cur, tt.prev)
			if math.Abs(got.Percent-tt.wantPercent) > 1e-9 || got.Type != tt.wantType {
				t.Errorf("PercentageChange(%v, %v) = %+v, want {%v %s}", tt.cur, tt.prev, got, tt.wantPercent, tt.wantType)
			}
		})
	}
}

func TestFormatEmissions(t *testing.T) {
	if got := FormatEmissions(999.999); got.Unit != models.UnitKgCO2e || got.Value != 1000 {
		t.Errorf("FormatEmissions(999.999) = %+v", got)
	}
	if got := FormatEmissions(1234.5); got.Unit != models.UnitTCO2e || got.Value != 1.23 {
		t.Errorf("FormatEmissions(1234.5) = %+v", got)
	}
}

func TestFormatConsumption(t *testing.T) {
	if got := FormatConsumption(12.344); got.Unit != "kWh" || got.Value != 12.34 {
		t.Errorf("FormatConsumption(12.344) = %+v", got)
	}
	if got := FormatConsumption(2500); got.Unit != "MWh" || got.Value != 2.5 {
		t.Errorf("FormatConsumption(2500) = %+v", got)
	}
}

func TestMonthFilters(t *testing.T) {
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	daily := []models.DailyAggregate{
		{Date: "2025-12-30", Emissions: 10},
		{Date: "2025-12-31", Emissions: 20},
		{Date: "2026-01-01", Emissions: 5},
		{Date: "2026-01-02", Emissions: 7},
	}

	cur := CurrentMonth(daily, now)
	if len(cur) != 2 || SumEmissions(cur) != 12 {
		t.Errorf("CurrentMonth = %v, want 2 entries summing to 12", cur)
	}
	prev := PreviousMonth(daily, now)
	if len(prev) != 2 || SumEmissions(prev) != 30 {
		t.Errorf("PreviousMonth = %v, want 2 entries summing to 30", prev)
	}
}

func TestAverageAndLastN(t *testing.T) {
	if got := AverageDailyEmissions(nil); got != 0 {
		t.Errorf("AverageDailyEmissions(nil) = %v, want 0", got)
	}
	daily := []models.DailyAggregate{{Emissions: 1}, {Emissions: 2}, {Emissions: 3}}
	if got := AverageDailyEmissions(daily); got != 2 {
		t.Errorf("AverageDailyEmissions = %v, want 2", got)
	}
	if got := LastNDays(daily, 2); len(got) != 2 || got[0].Emissions != 2 {
		t.Errorf("LastNDays(2) = %v", got)
	}
	if got := LastNDays(daily, 10); len(got) != 3 {
		t.Errorf("LastNDays(10) len = %d, want 3", len(got))
	}
}

func TestConversions(t *testing.T) {
	if KgToTons(2500) != 2.5 {
		t.Errorf("KgToTons(2500) = %v", KgToTons(2500))
	}
	if KWhToMWh(500) != 0.5 {
		t.Errorf("KWhToMWh(500) = %v", KWhToMWh(500))
	}
	eq := []models.Equipment{{PowerDraw: models.Measure{Value: 1}}, {PowerDraw: models.Measure{Value: 0.5}}}
	if got := MonthlyConsumptionKWh(eq); got != 1080 {
		t.Errorf("MonthlyConsumptionKWh = %v, want 1080", got)
	}
}
