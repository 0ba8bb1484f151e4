// internal/app/features/analytics/analytics.go
package analytics

import (
	"net/http"
	"strconv"
	"time"

	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	"github.com/dalemusser/labcarbon/internal/app/system/emissions"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Summary ranges.
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// StateReader is the read side of the reactive store.
type StateReader interface {
	State() statestore.State
}

// Handler serves the historical rollups held in the store.
type Handler struct {
	store StateReader
}

// NewHandler creates a new analytics Handler.
func NewHandler(store StateReader) *Handler {
	return &Handler{store: store}
}

// Routes returns a chi.Router with analytics routes mounted.
//
// When mounted at /api/analytics:
//   - GET /daily?days=N
//   - GET /weekly
//   - GET /monthly
//   - GET /summary?range=week|month|year
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/daily", h.Daily)
	r.Get("/weekly", h.Weekly)
	r.Get("/monthly", h.Monthly)
	r.Get("/summary", h.Summary)
	return r
}

// Daily handles GET /api/analytics/daily. days trims the series to its
// trailing N entries.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	daily := h.store.State().HistoricalData.Daily
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonutil.ValidationError(w, map[string]string{"days": "must be a positive integer"})
			return
		}
		daily = emissions.LastNDays(daily, n)
	}
	jsonutil.OK(w, map[string]any{"daily": daily})
}

// Weekly handles GET /api/analytics/weekly.
func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"weekly": h.store.State().HistoricalData.Weekly})
}

// Monthly handles GET /api/analytics/monthly.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"monthly": h.store.State().HistoricalData.Monthly})
}

// Point is one labelled value of a summary series.
type Point struct {
	Name      string  `json:"name"`
	Emissions float64 `json:"emissions"`
}

// SummaryResponse is a chart series with its total and average.
type SummaryResponse struct {
	Range   string         `json:"range"`
	Series  []Point        `json:"series"`
	Total   models.Measure `json:"total"`
	Average models.Measure `json:"average"`
}

// Summary handles GET /api/analytics/summary. It answers 404 until the
// store holds equipment and daily history.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = RangeWeek
	}
	st := h.store.State()
	if len(st.Equipment) == 0 || len(st.HistoricalData.Daily) == 0 {
		jsonutil.NotFound(w, "no analytics data available")
		return
	}
	series, ok := Series(st.HistoricalData, rng)
	if !ok {
		jsonutil.ValidationError(w, map[string]string{"range": "must be week, month or year"})
		return
	}
	jsonutil.OK(w, Summarize(rng, series))
}

// Series builds the chart series for a range: the last 7 days labelled by
// weekday, the last 30 days labelled "Day <n>", or the monthly rollup.
func Series(h models.HistoricalData, rng string) ([]Point, bool) {
	switch rng {
	case RangeWeek:
		return dailyPoints(emissions.LastNDays(h.Daily, 7), func(t time.Time) string {
			return t.Format("Mon")
		}), true
	case RangeMonth:
		return dailyPoints(emissions.LastNDays(h.Daily, 30), func(t time.Time) string {
			return "Day " + strconv.Itoa(t.Day())
		}), true
	case RangeYear:
		out := make([]Point, len(h.Monthly))
		for i, m := range h.Monthly {
			out[i] = Point{Name: m.Name, Emissions: m.Emissions}
		}
		return out, true
	}
	return nil, false
}

func dailyPoints(daily []models.DailyAggregate, label func(time.Time) string) []Point {
	out := make([]Point, 0, len(daily))
	for _, d := range daily {
		name := d.Date
		if t, err := time.Parse(timeseries.DateLayout, d.Date); err == nil {
			name = label(t)
		}
		out = append(out, Point{Name: name, Emissions: d.Emissions})
	}
	return out
}

// Summarize totals and averages a series, formatting both in kg or tonnes.
func Summarize(rng string, series []Point) SummaryResponse {
	var total float64
	for _, p := range series {
		total += p.Emissions
	}
	var avg float64
	if len(series) > 0 {
		avg = total / float64(len(series))
	}
	return SummaryResponse{
		Range:   rng,
		Series:  series,
		Total:   emissions.FormatEmissions(total),
		Average: emissions.FormatEmissions(avg),
	}
}
