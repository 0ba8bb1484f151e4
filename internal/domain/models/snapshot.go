// internal/domain/models/snapshot.go
package models

import "time"

// Data source labels recorded in snapshot metadata.
const (
	SourceMock    = "mock"
	SourceBackend = "backend"
)

// SnapshotMetadata holds totals derived from a snapshot's equipment list.
type SnapshotMetadata struct {
	TotalEquipmentCount int     `bson:"total_equipment_count" json:"totalEquipmentCount"`
	TotalEmissions      float64 `bson:"total_emissions" json:"totalEmissions"`
	DataSource          string  `bson:"data_source" json:"dataSource"`
}

// EquipmentSnapshot is an immutable capture of the whole equipment list for
// one calendar day.
type EquipmentSnapshot struct {
	ID        string           `bson:"id" json:"id"` // snap_YYYY-MM-DD
	Timestamp time.Time        `bson:"timestamp" json:"timestamp"`
	Date      string           `bson:"date" json:"date"` // YYYY-MM-DD
	Equipment []Equipment      `bson:"equipment" json:"equipment"`
	Metadata  SnapshotMetadata `bson:"metadata" json:"metadata"`
}

// Clone returns a deep copy of the snapshot.
func (s EquipmentSnapshot) Clone() EquipmentSnapshot {
	s.Equipment = CloneEquipment(s.Equipment)
	return s
}

// CloneSnapshots deep-copies a snapshot slice.
func CloneSnapshots(in []EquipmentSnapshot) []EquipmentSnapshot {
	out := make([]EquipmentSnapshot, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
