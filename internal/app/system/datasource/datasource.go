// internal/app/system/datasource/datasource.go
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

var (
	// ErrNotFound is returned when a mutation targets equipment the source
	// does not hold.
	ErrNotFound = errors.New("equipment not found")
	// ErrNoOrganization is returned by the backend when no organization is
	// selected.
	ErrNoOrganization = errors.New("no organization selected")
)

// Result is everything one fetch produced.
type Result struct {
	Mode        string
	Equipment   []models.Equipment
	Snapshots   []models.EquipmentSnapshot // mock only
	History     models.HistoricalData
	Experiments []models.Experiment
}

// DataSource is where a sync cycle gets its data and where equipment
// mutations are persisted. One is chosen per cycle.
type DataSource interface {
	Mode() string
	Fetch(ctx context.Context, orgID string, now time.Time) (Result, error)
	Add(ctx context.Context, orgID string, eq models.Equipment) (models.Equipment, error)
	Update(ctx context.Context, orgID, id string, patch models.EquipmentPatch) (models.Equipment, error)
	Remove(ctx context.Context, orgID, id string) error
}
