// internal/app/system/datasource/backend.go
package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/store/aggregatecache"
	relstore "github.com/dalemusser/labcarbon/internal/app/store/relational"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

// HistoryCache holds computed rollups per organization.
type HistoryCache interface {
	Get(ctx context.Context, orgID string) (models.HistoricalData, error)
	Set(ctx context.Context, orgID string, h models.HistoricalData) error
	Invalidate(ctx context.Context, orgID string) error
}

// Backend reads and writes an organization's equipment in the relational
// store. Rollups are read through an optional cache.
type Backend struct {
	db     *relstore.DB
	cache  HistoryCache
	ranges timeseries.Ranges
	logger *zap.Logger
}

// NewBackend creates a backend source. cache may be nil.
func NewBackend(db *relstore.DB, cache HistoryCache, ranges timeseries.Ranges, logger *zap.Logger) *Backend {
	if ranges == (timeseries.Ranges{}) {
		ranges = timeseries.DefaultRanges()
	}
	return &Backend{db: db, cache: cache, ranges: ranges, logger: logger}
}

func (b *Backend) Mode() string { return models.ModeBackend }

// Fetch loads active equipment and the rollups for orgID.
func (b *Backend) Fetch(ctx context.Context, orgID string, now time.Time) (Result, error) {
	if orgID == "" {
		return Result{}, ErrNoOrganization
	}
	equipment, err := b.db.ListActiveEquipment(ctx, orgID)
	if err != nil {
		return Result{}, fmt.Errorf("list equipment: %w", err)
	}
	history, err := b.history(ctx, orgID, now)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Mode:      models.ModeBackend,
		Equipment: equipment,
		History:   history,
	}, nil
}

func (b *Backend) history(ctx context.Context, orgID string, now time.Time) (models.HistoricalData, error) {
	if b.cache != nil {
		h, err := b.cache.Get(ctx, orgID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, aggregatecache.ErrMiss) {
			b.logger.Warn("aggregate cache read failed", zap.String("organization_id", orgID), zap.Error(err))
		}
	}

	daily, err := b.db.DailyAggregates(ctx, orgID, b.ranges.Days, now)
	if err != nil {
		return models.HistoricalData{}, fmt.Errorf("daily aggregates: %w", err)
	}
	weekly, err := b.db.WeeklyAggregates(ctx, orgID, b.ranges.Weeks, now)
	if err != nil {
		return models.HistoricalData{}, fmt.Errorf("weekly aggregates: %w", err)
	}
	monthly, err := b.db.MonthlyAggregates(ctx, orgID, b.ranges.Months, now)
	if err != nil {
		return models.HistoricalData{}, fmt.Errorf("monthly aggregates: %w", err)
	}
	h := HistoryFromRows(daily, weekly, monthly)

	if b.cache != nil {
		if err := b.cache.Set(ctx, orgID, h); err != nil {
			b.logger.Warn("aggregate cache write failed", zap.String("organization_id", orgID), zap.Error(err))
		}
	}
	return h, nil
}

// HistoryFromRows converts backend aggregate rows into rollups.
func HistoryFromRows(daily []relstore.DailyRow, weekly []relstore.WeeklyRow, monthly []relstore.MonthlyRow) models.HistoricalData {
	h := models.EmptyHistoricalData()
	for _, r := range daily {
		h.Daily = append(h.Daily, models.DailyAggregate{Date: r.Date, Emissions: r.TotalEmissions})
	}
	for _, r := range weekly {
		h.Weekly = append(h.Weekly, models.WeeklyAggregate{
			Name:           r.WeekName,
			Emissions:      r.TotalEmissions,
			EquipmentCount: r.EquipmentCount,
		})
	}
	for _, r := range monthly {
		h.Monthly = append(h.Monthly, models.MonthlyAggregate{Name: r.MonthName, Emissions: r.TotalEmissions})
	}
	return h
}

// Add inserts eq and returns the stored row.
func (b *Backend) Add(ctx context.Context, orgID string, eq models.Equipment) (models.Equipment, error) {
	if orgID == "" {
		return models.Equipment{}, ErrNoOrganization
	}
	stored, err := b.db.InsertEquipment(ctx, orgID, eq, "")
	if err != nil {
		return models.Equipment{}, err
	}
	b.invalidate(ctx, orgID)
	return stored, nil
}

// Update merges patch into the stored row.
func (b *Backend) Update(ctx context.Context, orgID, id string, patch models.EquipmentPatch) (models.Equipment, error) {
	if orgID == "" {
		return models.Equipment{}, ErrNoOrganization
	}
	eq, err := b.db.UpdateEquipment(ctx, orgID, id, patch)
	if errors.Is(err, relstore.ErrNotFound) {
		return models.Equipment{}, ErrNotFound
	}
	if err != nil {
		return models.Equipment{}, err
	}
	b.invalidate(ctx, orgID)
	return eq, nil
}

// Remove soft-deletes id.
func (b *Backend) Remove(ctx context.Context, orgID, id string) error {
	if orgID == "" {
		return ErrNoOrganization
	}
	err := b.db.SoftDeleteEquipment(ctx, orgID, id)
	if errors.Is(err, relstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	b.invalidate(ctx, orgID)
	return nil
}

func (b *Backend) invalidate(ctx context.Context, orgID string) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Invalidate(ctx, orgID); err != nil {
		b.logger.Warn("aggregate cache invalidate failed", zap.String("organization_id", orgID), zap.Error(err))
	}
}
