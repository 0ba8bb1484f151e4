// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/system/recorder"
	"go.uber.org/zap"
)

// Job names, also accepted by RunOnce.
const (
	JobSync            = "equipment-sync"
	JobRecordEmissions = "record-emissions"
	JobSnapshotExport  = "snapshot-export"
	JobHistoryPrune    = "history-prune"
)

// PeriodicSyncer runs one interval-triggered sync.
type PeriodicSyncer interface {
	SyncPeriodic(ctx context.Context) error
}

// EmissionsRecorder writes the daily emissions rows.
type EmissionsRecorder interface {
	Run(ctx context.Context, now time.Time) (recorder.Report, error)
}

// SnapshotExporter writes the snapshot sequence to file storage.
type SnapshotExporter interface {
	Export(ctx context.Context, now time.Time) (string, error)
}

// Pruner deletes documents older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrunerFunc adapts a plain function to Pruner.
type PrunerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// PruneBefore calls f.
func (f PrunerFunc) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

// SyncJob re-syncs the dashboard on every interval. The initial sync happens
// at startup, so the first tick is skipped.
func SyncJob(s PeriodicSyncer, interval time.Duration) Job {
	return Job{
		Name:        JobSync,
		Interval:    interval,
		SkipInitial: true,
		Run:         s.SyncPeriodic,
	}
}

// RecordEmissionsJob records one row per active equipment item per day.
// Recording is idempotent per organization and date, so running on a shorter
// interval than a day only fills days that were missed.
func RecordEmissionsJob(rec EmissionsRecorder, interval time.Duration, now func() time.Time, logger *zap.Logger) Job {
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:     JobRecordEmissions,
		Interval: interval,
		Run: func(ctx context.Context) error {
			report, err := rec.Run(ctx, now())
			if err != nil {
				return err
			}
			if len(report.Errors) > 0 {
				logger.Warn("record emissions finished with errors",
					zap.Int("recorded", report.Recorded),
					zap.Strings("errors", report.Errors))
				return errors.New(strings.Join(report.Errors, "; "))
			}
			if report.Recorded > 0 {
				logger.Info("recorded daily emissions",
					zap.Int("recorded", report.Recorded))
			}
			return nil
		},
	}
}

// SnapshotExportJob writes the current snapshot sequence to storage.
func SnapshotExportJob(exp SnapshotExporter, interval time.Duration, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:        JobSnapshotExport,
		Interval:    interval,
		SkipInitial: true,
		Run: func(ctx context.Context) error {
			_, err := exp.Export(ctx, now())
			return err
		},
	}
}

// HistoryPruneJob removes cached snapshot sequences older than keepSnapshots
// and sync runs older than keepRuns.
func HistoryPruneJob(snapshots, runs Pruner, keepSnapshots, keepRuns time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     JobHistoryPrune,
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			now := time.Now()

			deleted, err := snapshots.PruneBefore(ctx, now.Add(-keepSnapshots))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned cached snapshot sequences",
					zap.Int64("deleted", deleted))
			}

			deleted, err = runs.PruneBefore(ctx, now.Add(-keepRuns))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned sync runs",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
