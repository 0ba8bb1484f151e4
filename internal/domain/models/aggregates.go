// internal/domain/models/aggregates.go
package models

// DailyAggregate is the total emissions for one calendar day.
type DailyAggregate struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Emissions float64 `json:"emissions"`
}

// WeeklyAggregate is the total emissions for one ISO week.
type WeeklyAggregate struct {
	Name           string  `json:"name"` // W<iso week>
	Emissions      float64 `json:"emissions"`
	EquipmentCount int     `json:"equipmentCount"`
}

// MonthlyAggregate is the total emissions for one calendar month.
type MonthlyAggregate struct {
	Name      string  `json:"name"` // Jan..Dec
	Emissions float64 `json:"emissions"`
}

// HistoricalData bundles the three rollups shown by the dashboard.
type HistoricalData struct {
	Daily   []DailyAggregate   `json:"daily"`
	Weekly  []WeeklyAggregate  `json:"weekly"`
	Monthly []MonthlyAggregate `json:"monthly"`
}

// EmptyHistoricalData returns a HistoricalData with empty, non-nil slices.
func EmptyHistoricalData() HistoricalData {
	return HistoricalData{
		Daily:   []DailyAggregate{},
		Weekly:  []WeeklyAggregate{},
		Monthly: []MonthlyAggregate{},
	}
}

// Clone returns a deep copy.
func (h HistoricalData) Clone() HistoricalData {
	out := HistoricalData{
		Daily:   make([]DailyAggregate, len(h.Daily)),
		Weekly:  make([]WeeklyAggregate, len(h.Weekly)),
		Monthly: make([]MonthlyAggregate, len(h.Monthly)),
	}
	copy(out.Daily, h.Daily)
	copy(out.Weekly, h.Weekly)
	copy(out.Monthly, h.Monthly)
	return out
}

// IsEmpty reports whether no rollup holds any entries.
func (h HistoricalData) IsEmpty() bool {
	return len(h.Daily) == 0 && len(h.Weekly) == 0 && len(h.Monthly) == 0
}
