// internal/app/system/snapexport/snapexport.go
package snapexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// Putter is the part of storage.Store the exporter writes through.
type Putter interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
}

// SnapshotSource supplies the snapshots to export.
type SnapshotSource interface {
	Snapshots() []models.EquipmentSnapshot
	OrganizationID() string
}

// Document is the exported file body.
type Document struct {
	ExportedAt     time.Time                  `json:"exportedAt"`
	OrganizationID string                     `json:"organizationId,omitempty"`
	Snapshots      []models.EquipmentSnapshot `json:"snapshots"`
}

// Exporter writes the store's snapshot sequence to file storage.
type Exporter struct {
	out    Putter
	src    SnapshotSource
	logger *zap.Logger
}

// New creates an exporter.
func New(out Putter, src SnapshotSource, logger *zap.Logger) *Exporter {
	return &Exporter{out: out, src: src, logger: logger}
}

// Path is the storage key for a day's export.
func Path(now time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/snapshots-%s.json",
		now.Year(), int(now.Month()), now.Format("2006-01-02"))
}

// Export writes today's file. It returns the path written, or "" when the
// store holds no snapshots yet.
func (e *Exporter) Export(ctx context.Context, now time.Time) (string, error) {
	snaps := e.src.Snapshots()
	if len(snaps) == 0 {
		e.logger.Debug("snapshot export skipped; no snapshots")
		return "", nil
	}

	body, err := json.MarshalIndent(Document{
		ExportedAt:     now.UTC(),
		OrganizationID: e.src.OrganizationID(),
		Snapshots:      snaps,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	path := Path(now)
	if err := e.out.Put(ctx, path, bytes.NewReader(body), &storage.PutOptions{
		ContentType: "application/json",
	}); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	e.logger.Info("snapshot export written",
		zap.String("path", path),
		zap.Int("snapshots", len(snaps)),
		zap.Int("bytes", len(body)))
	return path, nil
}
