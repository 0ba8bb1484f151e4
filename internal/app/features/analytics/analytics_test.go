package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	"github.com/dalemusser/labcarbon/internal/domain/models"
)

func history() models.HistoricalData {
	return models.HistoricalData{
		Daily: []models.DailyAggregate{
			{Date: "2026-10-12", Emissions: 400}, // Monday
			{Date: "2026-10-13", Emissions: 600},
			{Date: "2026-10-14", Emissions: 800},
			{Date: "2026-10-15", Emissions: 1000},
		},
		Weekly:  []models.WeeklyAggregate{{Name: "W42", Emissions: 2800, EquipmentCount: 3}},
		Monthly: []models.MonthlyAggregate{{Name: "Sep", Emissions: 9000}, {Name: "Oct", Emissions: 2800}},
	}
}

func seeded() *statestore.Store {
	st := statestore.New()
	st.SetEquipment([]models.Equipment{{ID: "1", Name: "Freezer"}})
	st.SetHistoricalData(history())
	return st
}

func TestSeries(t *testing.T) {
	week, ok := Series(history(), RangeWeek)
	if !ok || len(week) != 4 || week[0].Name != "Mon" || week[3].Name != "Thu" {
		t.Errorf("week series = %+v", week)
	}
	month, _ := Series(history(), RangeMonth)
	if month[0].Name != "Day 12" {
		t.Errorf("month series[0] = %+v, want Day 12", month[0])
	}
	year, _ := Series(history(), RangeYear)
	if len(year) != 2 || year[0].Name != "Sep" {
		t.Errorf("year series = %+v", year)
	}
	if _, ok := Series(history(), "decade"); ok {
		t.Error("unknown range should not be accepted")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(RangeWeek, []Point{{"Mon", 400}, {"Tue", 600}, {"Wed", 800}, {"Thu", 1000}})
	if s.Total.Value != 2.8 || s.Total.Unit != models.UnitTCO2e {
		t.Errorf("total = %+v, want 2.8 tCO₂e", s.Total)
	}
	if s.Average.Value != 700 || s.Average.Unit != models.UnitKgCO2e {
		t.Errorf("average = %+v, want 700 kgCO₂e", s.Average)
	}

	empty := Summarize(RangeWeek, nil)
	if empty.Average.Value != 0 {
		t.Errorf("empty average = %v, want 0", empty.Average.Value)
	}
}

func TestRoutes(t *testing.T) {
	r := Routes(NewHandler(seeded()))

	tests := []struct {
		path string
		want int
	}{
		{"/daily", http.StatusOK},
		{"/daily?days=2", http.StatusOK},
		{"/daily?days=zero", http.StatusBadRequest},
		{"/weekly", http.StatusOK},
		{"/monthly", http.StatusOK},
		{"/summary", http.StatusOK},
		{"/summary?range=year", http.StatusOK},
		{"/summary?range=decade", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDaily_Trimmed(t *testing.T) {
	rec := httptest.NewRecorder()
	Routes(NewHandler(seeded())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/daily?days=2", nil))

	var body struct {
		Daily []models.DailyAggregate `json:"daily"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Daily) != 2 || body.Daily[0].Date != "2026-10-14" {
		t.Errorf("daily = %+v, want the last two days", body.Daily)
	}
}

func TestSummary_NoData(t *testing.T) {
	rec := httptest.NewRecorder()
	Routes(NewHandler(statestore.New())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
