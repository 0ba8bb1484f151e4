// internal/domain/models/dashboard.go
package models

// Change direction labels.
const (
	ChangeIncrease = "increase"
	ChangeDecrease = "decrease"
)

// EmissionsStat is the headline emissions card.
type EmissionsStat struct {
	Total            float64 `json:"total"`
	Unit             string  `json:"unit"`
	PercentageChange float64 `json:"percentageChange"`
	ChangeType       string  `json:"changeType"`
}

// ActiveEquipmentStat is the equipment count card.
type ActiveEquipmentStat struct {
	Count            int     `json:"count"`
	PercentageChange float64 `json:"percentageChange"`
	ChangeType       string  `json:"changeType"`
}

// ConsumptionStat is the monthly energy card.
type ConsumptionStat struct {
	Value            float64 `json:"value"`
	Unit             string  `json:"unit"`
	PercentageChange float64 `json:"percentageChange"`
	ChangeType       string  `json:"changeType"`
}

// MonthlyEmissionPoint is one point on the monthly trend chart.
type MonthlyEmissionPoint struct {
	Month     string  `json:"month"`
	Emissions float64 `json:"emissions"`
}

// EquipmentEmission is one bar on the top-equipment chart.
type EquipmentEmission struct {
	Name      string  `json:"name"`
	Emissions float64 `json:"emissions"`
	Color     string  `json:"color"`
}

// Alert is a predictive alert. None are produced yet; the list is always empty.
type Alert struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// DashboardData is everything the dashboard view renders.
type DashboardData struct {
	Emissions          EmissionsStat          `json:"emissions"`
	ActiveEquipment    ActiveEquipmentStat    `json:"activeEquipment"`
	MonthlyConsumption ConsumptionStat        `json:"monthlyConsumption"`
	MonthlyTrend       []MonthlyEmissionPoint `json:"monthlyTrend"`
	TopEquipment       []EquipmentEmission    `json:"topEquipment"`
	Alerts             []Alert                `json:"alerts"`
}
