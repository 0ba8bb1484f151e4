// internal/app/features/catalogapi/catalogapi.go
package catalogapi

import (
	"net/http"

	"github.com/dalemusser/labcarbon/internal/app/system/catalog"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Handler serves the reference equipment catalog.
type Handler struct {
	cat *catalog.Catalog
}

// NewHandler creates a new catalog Handler.
func NewHandler(cat *catalog.Catalog) *Handler {
	return &Handler{cat: cat}
}

// Routes returns a chi.Router with catalog routes mounted.
//
// When mounted at /api/catalog:
//   - GET /?labType=wet-lab|dry-lab&q=text
//   - GET /types
//   - GET /manufacturers
//   - GET /items/{name}
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/types", h.Types)
	r.Get("/manufacturers", h.Manufacturers)
	r.Get("/items/{name}", h.Item)
	return r
}

// ItemResponse adds the derived daily emissions to a catalog item.
type ItemResponse struct {
	models.CatalogItem
	DailyEmissions float64 `json:"dailyEmissions"`
}

func withDaily(items []models.CatalogItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{CatalogItem: it, DailyEmissions: catalog.DailyEmissions(it)}
	}
	return out
}

// List handles GET /api/catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.cat.Search(q.Get("q"))

	if lt := q.Get("labType"); lt != "" {
		labType := models.EquipmentCategory(lt)
		if labType != models.CategoryWetLab && labType != models.CategoryDryLab {
			jsonutil.ValidationError(w, map[string]string{"labType": "must be wet-lab or dry-lab"})
			return
		}
		filtered := items[:0]
		for _, it := range items {
			if it.LabType == labType {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	jsonutil.OK(w, map[string]any{"items": withDaily(items), "total": len(items)})
}

// Types handles GET /api/catalog/types.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"types": h.cat.Types()})
}

// Manufacturers handles GET /api/catalog/manufacturers.
func (h *Handler) Manufacturers(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"manufacturers": h.cat.Manufacturers()})
}

// Item handles GET /api/catalog/items/{name}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	it, ok := h.cat.Find(chi.URLParam(r, "name"))
	if !ok {
		jsonutil.NotFound(w, "catalog item not found")
		return
	}
	jsonutil.OK(w, ItemResponse{CatalogItem: it, DailyEmissions: catalog.DailyEmissions(it)})
}
