// internal/domain/models/syncrun.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sync run outcomes.
const (
	SyncOutcomeRunning = "running"
	SyncOutcomeSuccess = "success"
	SyncOutcomeFailed  = "failed"
	SyncOutcomeSkipped = "skipped"
)

// Sync triggers.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
	// TriggerScopeChange is the follow-up sync for a scope that changed
	// while another sync was running.
	TriggerScopeChange = "scope-change"
)

// Sync modes.
const (
	ModeMock    = "mock"
	ModeBackend = "backend"
	ModeNone    = "none"
)

// SyncRun records one pass of the sync orchestrator.
type SyncRun struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID          string             `bson:"run_id" json:"run_id"`
	Trigger        string             `bson:"trigger" json:"trigger"`
	Mode           string             `bson:"mode" json:"mode"`
	OrganizationID string             `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Outcome        string             `bson:"outcome" json:"outcome"`
	Error          string             `bson:"error,omitempty" json:"error,omitempty"`
	EquipmentCount int                `bson:"equipment_count" json:"equipment_count"`
	SnapshotCount  int                `bson:"snapshot_count" json:"snapshot_count"`
	StartedAt      time.Time          `bson:"started_at" json:"started_at"`
	FinishedAt     *time.Time         `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
	DurationMS     int64              `bson:"duration_ms" json:"duration_ms"`
}
