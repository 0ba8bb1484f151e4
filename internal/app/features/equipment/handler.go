// internal/app/features/equipment/handler.go
package equipment

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/labcarbon/internal/app/features/errors"
	"github.com/dalemusser/labcarbon/internal/app/system/datasource"
	"github.com/dalemusser/labcarbon/internal/app/system/htmlsanitize"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/syncer"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Inventory routes equipment mutations through the active data source.
type Inventory interface {
	AddEquipment(ctx context.Context, eq models.Equipment) (models.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, patch models.EquipmentPatch) (models.Equipment, error)
	RemoveEquipment(ctx context.Context, id string) error
}

// Reader is the read side of the reactive store.
type Reader interface {
	Equipment() []models.Equipment
	EquipmentByID(id string) (models.Equipment, bool)
}

// Handler serves the equipment inventory.
type Handler struct {
	inv    Inventory
	store  Reader
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new equipment Handler.
func NewHandler(inv Inventory, store Reader, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{inv: inv, store: store, errLog: errLog, logger: logger}
}

// ListResponse is returned by GET /api/equipment.
type ListResponse struct {
	Equipment []models.Equipment `json:"equipment"`
	Total     int                `json:"total"`
}

// GroupedResponse is returned by GET /api/equipment?group=true.
type GroupedResponse struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

// List handles GET /api/equipment.
//
// Query parameters: q (search text), type, status, group (bool).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Query: q.Get("q")}
	fieldErrs := map[string]string{}
	if t := q.Get("type"); t != "" {
		if !models.IsValidEquipmentType(t) {
			fieldErrs["type"] = "unknown equipment type"
		}
		f.Type = models.EquipmentType(t)
	}
	if s := q.Get("status"); s != "" {
		if !models.IsValidStatus(s) {
			fieldErrs["status"] = "unknown status"
		}
		f.Status = models.EquipmentStatus(s)
	}
	group := false
	if g := q.Get("group"); g != "" {
		var err error
		if group, err = strconv.ParseBool(g); err != nil {
			fieldErrs["group"] = "must be true or false"
		}
	}
	if len(fieldErrs) > 0 {
		jsonutil.ValidationError(w, fieldErrs)
		return
	}

	items := Search(h.store.Equipment(), f)
	if group {
		jsonutil.OK(w, GroupedResponse{Groups: GroupIdentical(items), Total: len(items)})
		return
	}
	jsonutil.OK(w, ListResponse{Equipment: items, Total: len(items)})
}

// Get handles GET /api/equipment/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	eq, ok := h.store.EquipmentByID(chi.URLParam(r, "id"))
	if !ok {
		jsonutil.NotFound(w, "equipment not found")
		return
	}
	jsonutil.OK(w, eq)
}

// Create handles POST /api/equipment.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.Equipment
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	htmlsanitize.Fields(&in.Name, &in.EquipmentID, &in.Manufacturer, &in.ErrorMessage)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stored, err := h.inv.AddEquipment(ctx, in)
	if err != nil {
		h.writeMutationError(w, r, "add", err)
		return
	}
	h.logger.Info("equipment added", zap.String("id", stored.ID), zap.String("name", stored.Name))
	jsonutil.Created(w, stored)
}

// Update handles PATCH and PUT /api/equipment/{id}. Only fields present in
// the body change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch models.EquipmentPatch
	if err := jsonutil.Decode(r, &patch); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	htmlsanitize.Fields(patch.Name, patch.EquipmentID, patch.Manufacturer, patch.ErrorMessage)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.inv.UpdateEquipment(ctx, id, patch)
	if err != nil {
		h.writeMutationError(w, r, "update", err)
		return
	}
	h.logger.Info("equipment updated", zap.String("id", id))
	jsonutil.OK(w, updated)
}

// Delete handles DELETE /api/equipment/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.inv.RemoveEquipment(ctx, id); err != nil {
		h.writeMutationError(w, r, "remove", err)
		return
	}
	h.logger.Info("equipment removed", zap.String("id", id))
	jsonutil.NoContent(w)
}

func (h *Handler) writeMutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *syncer.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonutil.ValidationError(w, verr.Fields)
	case errors.Is(err, datasource.ErrNotFound):
		jsonutil.NotFound(w, "equipment not found")
	case errors.Is(err, datasource.ErrNoOrganization):
		jsonutil.Conflict(w, "no organization selected")
	default:
		h.errLog.LogWithFields(r, "equipment "+op+" failed", err, zap.String("op", op))
		jsonutil.BadGateway(w, "failed to "+op+" equipment")
	}
}
