// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"math"
	"net/http"
	"sort"
	"time"

	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	"github.com/dalemusser/labcarbon/internal/app/system/emissions"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TopEquipmentColors colors the top-equipment bars by rank, highest first.
var TopEquipmentColors = [5]string{"#ef4444", "#f97316", "#eab308", "#22c55e", "#3b82f6"}

// StateReader is the read side of the reactive store.
type StateReader interface {
	State() statestore.State
}

// Handler serves the dashboard summary.
type Handler struct {
	store  StateReader
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(store StateReader, now func() time.Time, logger *zap.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, now: now, logger: logger}
}

// Routes returns a chi.Router with dashboard routes mounted.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serveDashboard)
	return r
}

// Response wraps the dashboard data. Data is null until the first sync has
// produced equipment and daily history.
type Response struct {
	Data         *models.DashboardData `json:"data"`
	IsLoading    bool                  `json:"isLoading"`
	Error        *string               `json:"error"`
	LastSyncTime *time.Time            `json:"lastSyncTime"`
}

func (h *Handler) serveDashboard(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	resp := Response{
		IsLoading:    st.IsLoading,
		Error:        st.Error,
		LastSyncTime: st.LastSyncTime,
	}
	if data, ok := Build(st, h.now()); ok {
		resp.Data = &data
	}
	jsonutil.OK(w, resp)
}

// Build derives the dashboard cards and charts from store state. It reports
// false when there is no equipment or no daily history yet.
func Build(st statestore.State, now time.Time) (models.DashboardData, bool) {
	if len(st.Equipment) == 0 || len(st.HistoricalData.Daily) == 0 {
		return models.DashboardData{}, false
	}
	hist := st.HistoricalData
	activeCount := len(st.Equipment)

	current := emissions.SumEmissions(emissions.CurrentMonth(hist.Daily, now))
	previous := emissions.SumEmissions(emissions.PreviousMonth(hist.Daily, now))
	emissionsChange := emissions.PercentageChange(current, previous)

	currentWeek, previousWeek := activeCount, activeCount
	if n := len(hist.Weekly); n > 0 {
		if c := hist.Weekly[n-1].EquipmentCount; c > 0 {
			currentWeek = c
		}
		if n > 1 {
			if c := hist.Weekly[n-2].EquipmentCount; c > 0 {
				previousWeek = c
			}
		}
	}
	equipmentChange := emissions.PercentageChange(float64(currentWeek), float64(previousWeek))

	consumption := emissions.FormatConsumption(emissions.MonthlyConsumptionKWh(st.Equipment))

	trend := make([]models.MonthlyEmissionPoint, len(hist.Monthly))
	for i, m := range hist.Monthly {
		trend[i] = models.MonthlyEmissionPoint{Month: m.Name, Emissions: m.Emissions}
	}

	return models.DashboardData{
		Emissions: models.EmissionsStat{
			Total:            emissions.KgToTons(current),
			Unit:             models.UnitTCO2e,
			PercentageChange: math.Round(emissionsChange.Percent),
			ChangeType:       emissionsChange.Type,
		},
		ActiveEquipment: models.ActiveEquipmentStat{
			Count:            activeCount,
			PercentageChange: math.Round(equipmentChange.Percent),
			ChangeType:       equipmentChange.Type,
		},
		MonthlyConsumption: models.ConsumptionStat{
			Value:      consumption.Value,
			Unit:       consumption.Unit,
			ChangeType: models.ChangeDecrease,
		},
		MonthlyTrend: trend,
		TopEquipment: TopEquipment(st.Equipment),
		Alerts:       []models.Alert{},
	}, true
}

// TopEquipment returns up to five items sorted by daily emissions,
// highest first, colored by rank. The input is not reordered.
func TopEquipment(equipment []models.Equipment) []models.EquipmentEmission {
	sorted := models.CloneEquipment(equipment)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DailyEmissions.Value > sorted[j].DailyEmissions.Value
	})
	if len(sorted) > len(TopEquipmentColors) {
		sorted = sorted[:len(TopEquipmentColors)]
	}

	out := make([]models.EquipmentEmission, len(sorted))
	for i, eq := range sorted {
		out[i] = models.EquipmentEmission{
			Name:      eq.Name,
			Emissions: eq.DailyEmissions.Value,
			Color:     TopEquipmentColors[i],
		}
	}
	return out
}
