package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/system/recorder"
	"github.com/dalemusser/labcarbon/internal/app/system/tasks"
	"go.uber.org/zap"
)

type countingSyncer struct{ calls int }

func (c *countingSyncer) SyncPeriodic(context.Context) error {
	c.calls++
	return nil
}

type stubRecorder struct {
	report recorder.Report
	err    error
	at     time.Time
}

func (s *stubRecorder) Run(_ context.Context, now time.Time) (recorder.Report, error) {
	s.at = now
	return s.report, s.err
}

type stubExporter struct {
	at  time.Time
	err error
}

func (s *stubExporter) Export(_ context.Context, now time.Time) (string, error) {
	s.at = now
	return "exports/x.json", s.err
}

var jobNow = time.Date(2026, 10, 16, 0, 5, 0, 0, time.UTC)

func TestSyncJob(t *testing.T) {
	s := &countingSyncer{}
	job := tasks.SyncJob(s, 5*time.Minute)

	if job.Name != tasks.JobSync || !job.SkipInitial || job.Interval != 5*time.Minute {
		t.Errorf("job = %+v", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.calls != 1 {
		t.Errorf("SyncPeriodic called %d times, want 1", s.calls)
	}
}

func TestRecordEmissionsJob(t *testing.T) {
	tests := []struct {
		name    string
		rec     *stubRecorder
		wantErr bool
	}{
		{"recorded", &stubRecorder{report: recorder.Report{Success: true, Recorded: 3}}, false},
		{"nothing to do", &stubRecorder{report: recorder.Report{Success: true}}, false},
		{"per-org errors", &stubRecorder{report: recorder.Report{Success: true, Errors: []string{"Org a: boom"}}}, true},
		{"fatal", &stubRecorder{err: errors.New("failed to fetch organizations")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := tasks.RecordEmissionsJob(tt.rec, 24*time.Hour, func() time.Time { return jobNow }, zap.NewNop())
			err := job.Run(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.rec.at.Equal(jobNow) {
				t.Errorf("recorder got now = %v, want %v", tt.rec.at, jobNow)
			}
		})
	}
}

func TestSnapshotExportJob(t *testing.T) {
	exp := &stubExporter{}
	job := tasks.SnapshotExportJob(exp, 24*time.Hour, func() time.Time { return jobNow })
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !exp.at.Equal(jobNow) {
		t.Errorf("exporter got now = %v", exp.at)
	}

	exp.err = errors.New("bucket missing")
	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() should return the export error")
	}
}

func TestHistoryPruneJob(t *testing.T) {
	var snapCutoff, runCutoff time.Time
	snaps := tasks.PrunerFunc(func(_ context.Context, c time.Time) (int64, error) {
		snapCutoff = c
		return 2, nil
	})
	runs := tasks.PrunerFunc(func(_ context.Context, c time.Time) (int64, error) {
		runCutoff = c
		return 0, nil
	})

	job := tasks.HistoryPruneJob(snaps, runs, 7*24*time.Hour, 30*24*time.Hour, zap.NewNop())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !runCutoff.Before(snapCutoff) {
		t.Errorf("run cutoff %v should be earlier than snapshot cutoff %v", runCutoff, snapCutoff)
	}
	if d := time.Since(snapCutoff); d < 7*24*time.Hour || d > 7*24*time.Hour+time.Minute {
		t.Errorf("snapshot cutoff %v is not 7 days back", snapCutoff)
	}
}

func TestHistoryPruneJob_StopsOnError(t *testing.T) {
	runsCalled := false
	snaps := tasks.PrunerFunc(func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("mongo down")
	})
	runs := tasks.PrunerFunc(func(context.Context, time.Time) (int64, error) {
		runsCalled = true
		return 0, nil
	})

	job := tasks.HistoryPruneJob(snaps, runs, time.Hour, time.Hour, zap.NewNop())
	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() should return the prune error")
	}
	if runsCalled {
		t.Error("sync run pruning should not run after a snapshot prune failure")
	}
}
