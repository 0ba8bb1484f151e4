// internal/app/system/recorder/recorder.go
package recorder

import (
	"context"
	"fmt"
	"time"

	relstore "github.com/dalemusser/labcarbon/internal/app/store/relational"
	statsstore "github.com/dalemusser/labcarbon/internal/app/store/stats"
	"github.com/dalemusser/labcarbon/internal/app/system/events"
	"github.com/dalemusser/labcarbon/internal/app/system/metrics"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

// Store is the slice of the relational backend the recorder needs.
type Store interface {
	ListOrganizations(ctx context.Context) ([]relstore.Organization, error)
	ListActiveEquipment(ctx context.Context, orgID string) ([]models.Equipment, error)
	HasDailyEmissions(ctx context.Context, orgID, date string) (bool, error)
	InsertDailyEmissions(ctx context.Context, rows []relstore.DailyEmission) error
}

// Counter keeps daily totals of recorded rows.
type Counter interface {
	Increment(ctx context.Context, date time.Time, statType, counter string, delta int64) error
}

// Report is the outcome of one recording pass.
type Report struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Recorded int      `json:"recorded"`
	Errors   []string `json:"errors,omitempty"`
}

// Recorder writes one daily_emissions row per active equipment item per
// organization per day.
type Recorder struct {
	db      Store
	stats   Counter
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a recorder. stats, pub and m may be nil.
func New(db Store, stats Counter, pub events.Publisher, m *metrics.Metrics, logger *zap.Logger) *Recorder {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Recorder{db: db, stats: stats, events: pub, metrics: m, logger: logger}
}

// Run records today's emissions for every organization. Organizations that
// already have rows for the day, or have no active equipment, are skipped.
// A failing organization is reported in Report.Errors and does not stop the
// others; only failing to list organizations returns an error.
func (r *Recorder) Run(ctx context.Context, now time.Time) (Report, error) {
	today := timeseries.FormatDate(now)

	orgs, err := r.db.ListOrganizations(ctx)
	if err != nil {
		return Report{Success: false, Message: "failed to fetch organizations"},
			fmt.Errorf("failed to fetch organizations: %w", err)
	}
	if len(orgs) == 0 {
		return Report{Success: true, Message: "No organizations to process"}, nil
	}

	var (
		recorded int
		problems []string
	)
	for _, org := range orgs {
		n, err := r.recordOrg(ctx, org.ID, today)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Org %s: %v", org.ID, err))
			r.logger.Warn("record emissions failed",
				zap.String("organization_id", org.ID),
				zap.Error(err))
			continue
		}
		if n == 0 {
			continue
		}
		recorded += n
		r.events.Publish(ctx, events.Event{
			Type:           events.EmissionsRecorded,
			OrganizationID: org.ID,
			Payload:        map[string]any{"date": today, "rows": n},
		})
	}

	if recorded > 0 {
		r.metrics.AddRecords("daily_emissions", recorded)
		if r.stats != nil {
			if err := r.stats.Increment(ctx, now, statsstore.TypeEmissions, "rows", int64(recorded)); err != nil {
				r.logger.Warn("failed to count recorded rows", zap.Error(err))
			}
		}
	}

	r.logger.Info("daily emissions recorded",
		zap.String("date", today),
		zap.Int("organizations", len(orgs)),
		zap.Int("recorded", recorded),
		zap.Int("errors", len(problems)))

	return Report{
		Success:  true,
		Message:  fmt.Sprintf("Recorded daily emissions for %d equipment items", recorded),
		Recorded: recorded,
		Errors:   problems,
	}, nil
}

func (r *Recorder) recordOrg(ctx context.Context, orgID, date string) (int, error) {
	equipment, err := r.db.ListActiveEquipment(ctx, orgID)
	if err != nil {
		return 0, err
	}
	if len(equipment) == 0 {
		return 0, nil
	}

	exists, err := r.db.HasDailyEmissions(ctx, orgID, date)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	rows := make([]relstore.DailyEmission, len(equipment))
	for i, eq := range equipment {
		rows[i] = relstore.DailyEmission{
			OrganizationID: orgID,
			EquipmentID:    eq.ID,
			Date:           date,
			EmissionsValue: eq.DailyEmissions.Value,
			EmissionsUnit:  models.UnitKgCO2e,
		}
	}
	if err := r.db.InsertDailyEmissions(ctx, rows); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return len(rows), nil
}
