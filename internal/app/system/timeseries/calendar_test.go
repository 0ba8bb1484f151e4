package timeseries

import (
	"testing"
	"time"
)

func TestISOWeek_YearBoundaries(t *testing.T) {
	tests := []struct {
		date     string
		wantYear int
		wantWeek int
	}{
		{"2024-12-30", 2025, 1},
		{"2025-01-01", 2025, 1},
		{"2021-01-03", 2020, 53},
		{"2021-01-04", 2021, 1},
		{"2026-06-15", 2026, 25},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.ParseInLocation(DateLayout, tt.date, time.Local)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			y, w := ISOWeek(d)
			if y != tt.wantYear || w != tt.wantWeek {
				t.Errorf("ISOWeek(%s) = %d-W%d, want %d-W%d", tt.date, y, w, tt.wantYear, tt.wantWeek)
			}
		})
	}
}

func TestISOWeekStart(t *testing.T) {
	tests := []struct {
		year, week int
		want       string
	}{
		{2025, 1, "2024-12-30"},
		{2020, 53, "2020-12-28"},
		{2021, 1, "2021-01-04"},
		{2026, 42, "2026-10-12"},
	}

	for _, tt := range tests {
		got := FormatDate(ISOWeekStart(tt.year, tt.week, time.UTC))
		if got != tt.want {
			t.Errorf("ISOWeekStart(%d, %d) = %s, want %s", tt.year, tt.week, got, tt.want)
		}
		if wd := ISOWeekStart(tt.year, tt.week, time.UTC).Weekday(); wd != time.Monday {
			t.Errorf("ISOWeekStart(%d, %d) weekday = %v, want Monday", tt.year, tt.week, wd)
		}
	}
}

func TestDaysAgoAtMidnight(t *testing.T) {
	now := time.Date(2026, time.March, 1, 15, 30, 0, 0, time.UTC)

	got := DaysAgoAtMidnight(now, 1)
	want := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DaysAgoAtMidnight(1) = %v, want %v", got, want)
	}

	// Stable across the day.
	later := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	if !DaysAgoAtMidnight(later, 5).Equal(DaysAgoAtMidnight(now, 5)) {
		t.Error("DaysAgoAtMidnight should not depend on the time of day")
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(0); got != "Jan" {
		t.Errorf("MonthName(0) = %q, want Jan", got)
	}
	if got := MonthName(11); got != "Dec" {
		t.Errorf("MonthName(11) = %q, want Dec", got)
	}
	if got := MonthName(12); got != "" {
		t.Errorf("MonthName(12) = %q, want empty", got)
	}
}

func TestWeekLabel(t *testing.T) {
	if got := WeekLabel(7); got != "W7" {
		t.Errorf("WeekLabel(7) = %q, want W7", got)
	}
}
