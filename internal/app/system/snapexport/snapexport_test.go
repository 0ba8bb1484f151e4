package snapexport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type memPutter struct {
	files map[string][]byte
	types map[string]string
	err   error
}

func (m *memPutter) Put(_ context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.files[path] = b
	m.types[path] = opts.ContentType
	return nil
}

type staticSource struct {
	snaps []models.EquipmentSnapshot
	org   string
}

func (s staticSource) Snapshots() []models.EquipmentSnapshot { return s.snaps }
func (s staticSource) OrganizationID() string                { return s.org }

var exportDay = time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)

func TestPath(t *testing.T) {
	if got, want := Path(exportDay), "exports/2026/03/snapshots-2026-03-07.json"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestExport(t *testing.T) {
	out := &memPutter{}
	src := staticSource{snaps: []models.EquipmentSnapshot{{ID: "snap_2026-03-07", Date: "2026-03-07"}}, org: "org-1"}

	path, err := New(out, src, zap.NewNop()).Export(context.Background(), exportDay)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.types[path] != "application/json" {
		t.Errorf("content type = %q", out.types[path])
	}

	var doc Document
	if err := json.Unmarshal(out.files[path], &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.OrganizationID != "org-1" || len(doc.Snapshots) != 1 || doc.Snapshots[0].ID != "snap_2026-03-07" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestExport_NoSnapshots(t *testing.T) {
	out := &memPutter{}
	path, err := New(out, staticSource{}, zap.NewNop()).Export(context.Background(), exportDay)
	if err != nil || path != "" {
		t.Errorf("Export() = %q, %v; want empty path and nil error", path, err)
	}
	if len(out.files) != 0 {
		t.Error("nothing should be written")
	}
}

func TestExport_StorageError(t *testing.T) {
	out := &memPutter{err: errors.New("disk full")}
	src := staticSource{snaps: []models.EquipmentSnapshot{{ID: "snap_2026-03-07"}}}
	if _, err := New(out, src, zap.NewNop()).Export(context.Background(), exportDay); err == nil {
		t.Error("Export() should return the storage error")
	}
}
