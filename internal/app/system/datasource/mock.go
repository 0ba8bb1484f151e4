// internal/app/system/datasource/mock.go
package datasource

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	snapshotstore "github.com/dalemusser/labcarbon/internal/app/store/snapshots"
	"github.com/dalemusser/labcarbon/internal/app/system/docstore"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotCache persists a day's generated sequence across restarts.
type SnapshotCache interface {
	SaveDay(ctx context.Context, scope, day string, snapshots []models.EquipmentSnapshot) error
	LoadDay(ctx context.Context, scope, day string, loc *time.Location) ([]models.EquipmentSnapshot, error)
}

// ExperimentFetcher supplies document-store experiments.
type ExperimentFetcher interface {
	Enabled() bool
	FetchExperiments(ctx context.Context) ([]models.Experiment, error)
}

// MockConfig tunes the mock source.
type MockConfig struct {
	HistoryDays int
	Ranges      timeseries.Ranges
	Scope       string     // snapshot cache key, "mock" when empty
	Rand        *rand.Rand // nil uses the process-wide source
}

// Mock generates a day's snapshot history from an in-memory inventory.
// The generated sequence is reused until the calendar day changes.
// Mutations patch the sequence in place: only the changed item's values
// move, and every other item keeps the values it was drawn with.
type Mock struct {
	cfg    MockConfig
	cache  SnapshotCache
	docs   ExperimentFetcher
	logger *zap.Logger

	mu      sync.Mutex
	base    []models.Equipment
	patches map[string]models.EquipmentPatch
	removed map[string]bool
	day     string
	snaps   []models.EquipmentSnapshot
}

// NewMock creates a mock source seeded with base. cache and docs may be nil.
func NewMock(cfg MockConfig, base []models.Equipment, cache SnapshotCache, docs ExperimentFetcher, logger *zap.Logger) *Mock {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = timeseries.DaysOfHistory
	}
	if cfg.Ranges == (timeseries.Ranges{}) {
		cfg.Ranges = timeseries.DefaultRanges()
	}
	if cfg.Scope == "" {
		cfg.Scope = models.SourceMock
	}
	return &Mock{
		cfg:     cfg,
		cache:   cache,
		docs:    docs,
		logger:  logger,
		base:    models.CloneEquipment(base),
		patches: map[string]models.EquipmentPatch{},
		removed: map[string]bool{},
	}
}

func (m *Mock) Mode() string { return models.ModeMock }

// Fetch returns the day's snapshot sequence and rollups. The organization
// id is ignored.
func (m *Mock) Fetch(ctx context.Context, _ string, now time.Time) (Result, error) {
	experiments := m.experiments(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	inventory := m.inventory(docstore.ToEquipmentList(experiments))
	snaps := m.sequence(ctx, inventory, now)

	res := Result{
		Mode:        models.ModeMock,
		Snapshots:   models.CloneSnapshots(snaps),
		History:     timeseries.Rollup(snaps, m.cfg.Ranges, now),
		Experiments: experiments,
	}
	if n := len(snaps); n > 0 {
		res.Equipment = models.CloneEquipment(snaps[n-1].Equipment)
	}
	return res, nil
}

// experiments is best effort: a failing document store leaves the demo
// inventory on its own.
func (m *Mock) experiments(ctx context.Context) []models.Experiment {
	if m.docs == nil || !m.docs.Enabled() {
		return nil
	}
	exps, err := m.docs.FetchExperiments(ctx)
	if err != nil {
		m.logger.Warn("document store fetch failed; using demo inventory", zap.Error(err))
		return nil
	}
	return exps
}

// inventory merges document-store equipment with the base list, then
// applies local removals and patches. Caller holds m.mu.
func (m *Mock) inventory(fromDocs []models.Equipment) []models.Equipment {
	seen := make(map[string]bool, len(fromDocs)+len(m.base))
	out := make([]models.Equipment, 0, len(fromDocs)+len(m.base))
	add := func(eq models.Equipment) {
		if seen[eq.ID] || m.removed[eq.ID] {
			return
		}
		seen[eq.ID] = true
		if p, ok := m.patches[eq.ID]; ok {
			eq = p.Apply(eq)
		}
		out = append(out, eq)
	}
	for _, eq := range fromDocs {
		add(eq)
	}
	for _, eq := range m.base {
		add(eq)
	}
	return out
}

// sequence returns today's snapshots: from memory, then from the
// persistent cache, else freshly generated. Caller holds m.mu.
func (m *Mock) sequence(ctx context.Context, inventory []models.Equipment, now time.Time) []models.EquipmentSnapshot {
	day := timeseries.FormatDate(now)
	if m.day == day && m.snaps != nil {
		return m.snaps
	}

	if m.cache != nil {
		snaps, err := m.cache.LoadDay(ctx, m.cfg.Scope, day, now.Location())
		switch {
		case err == nil && len(snaps) > 0:
			m.day, m.snaps = day, snaps
			m.logger.Debug("reusing cached snapshot sequence", zap.String("day", day), zap.Int("snapshots", len(snaps)))
			return snaps
		case err != nil && !errors.Is(err, snapshotstore.ErrNotFound):
			m.logger.Warn("snapshot cache load failed", zap.String("day", day), zap.Error(err))
		}
	}

	snaps := timeseries.GenerateSnapshots(inventory, m.cfg.HistoryDays, timeseries.GenerateOptions{
		Now:    now,
		Rand:   m.cfg.Rand,
		Source: models.SourceMock,
	})
	m.day, m.snaps = day, snaps
	m.logger.Debug("generated snapshot sequence",
		zap.String("day", day),
		zap.Int("snapshots", len(snaps)),
		zap.Int("equipment", len(inventory)))

	m.persist(ctx)
	return snaps
}

// persist writes the current sequence to the snapshot cache. Caller holds
// m.mu.
func (m *Mock) persist(ctx context.Context) {
	if m.cache == nil || m.snaps == nil {
		return
	}
	if err := m.cache.SaveDay(ctx, m.cfg.Scope, m.day, m.snaps); err != nil {
		m.logger.Warn("snapshot cache save failed", zap.String("day", m.day), zap.Error(err))
	}
}

// Add appends eq to the inventory, generating an id when empty. A
// generated sequence gains per-day values for eq only.
func (m *Mock) Add(ctx context.Context, _ string, eq models.Equipment) (models.Equipment, error) {
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	if eq.Status == "" {
		eq.Status = models.StatusActive
	}
	if eq.DailyEmissions.Unit == "" {
		eq.DailyEmissions.Unit = models.UnitKgCO2e
	}
	if eq.PowerDraw.Unit == "" {
		eq.PowerDraw.Unit = models.UnitKW
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.removed, eq.ID)
	known := false
	for _, existing := range m.base {
		if existing.ID == eq.ID {
			eq, known = existing, true
			break
		}
	}
	if !known {
		m.base = append(m.base, eq)
	}
	if m.snaps != nil && !m.inSequence(eq.ID) {
		m.snaps = timeseries.AppendEquipment(m.snaps, eq, m.cfg.HistoryDays, m.cfg.Rand)
		m.persist(ctx)
	}
	return eq, nil
}

// Update records patch for id. Patches compose with earlier ones. A new
// daily emissions value rescales id's per-day values and keeps their
// variation.
func (m *Mock) Update(ctx context.Context, _ string, id string, patch models.EquipmentPatch) (models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed[id] {
		return models.Equipment{}, ErrNotFound
	}
	current, ok := m.find(id)
	if !ok {
		return models.Equipment{}, ErrNotFound
	}
	before := m.patches[id].Apply(current)
	merged := mergePatch(m.patches[id], patch)
	m.patches[id] = merged
	if m.snaps != nil {
		m.snaps = patchSequence(m.snaps, id, patch, before.DailyEmissions.Value)
		m.persist(ctx)
	}
	return merged.Apply(current), nil
}

// inSequence reports whether id appears in the generated sequence. Caller
// holds m.mu.
func (m *Mock) inSequence(id string) bool {
	if n := len(m.snaps); n > 0 {
		for _, eq := range m.snaps[n-1].Equipment {
			if eq.ID == id {
				return true
			}
		}
	}
	return false
}

// patchSequence applies patch to id in every snapshot. The emissions value
// of each day is scaled by newBase/oldBase so that day's variation is kept.
func patchSequence(snaps []models.EquipmentSnapshot, id string, patch models.EquipmentPatch, oldBase float64) []models.EquipmentSnapshot {
	emissions := patch.DailyEmissions
	patch.DailyEmissions = nil

	out := models.CloneSnapshots(snaps)
	for i := range out {
		items := out[i].Equipment
		for j := range items {
			if items[j].ID != id {
				continue
			}
			prev := items[j].DailyEmissions
			items[j] = patch.Apply(items[j])
			if emissions != nil {
				items[j].DailyEmissions = rescale(prev, oldBase, *emissions)
			}
		}
		timeseries.Recount(&out[i])
	}
	return out
}

func rescale(day models.Measure, oldBase float64, next models.Measure) models.Measure {
	out := models.Measure{Value: next.Value, Unit: next.Unit}
	if out.Unit == "" {
		out.Unit = day.Unit
	}
	if oldBase > 0 {
		out.Value = next.Value * day.Value / oldBase
	}
	out.Value = timeseries.Round2(out.Value)
	return out
}

// dropFromSequence removes id from every snapshot.
func dropFromSequence(snaps []models.EquipmentSnapshot, id string) []models.EquipmentSnapshot {
	out := models.CloneSnapshots(snaps)
	for i := range out {
		kept := out[i].Equipment[:0]
		for _, eq := range out[i].Equipment {
			if eq.ID != id {
				kept = append(kept, eq)
			}
		}
		out[i].Equipment = kept
		timeseries.Recount(&out[i])
	}
	return out
}

// find looks id up in the base list, then in the newest generated
// snapshot. Caller holds m.mu.
func (m *Mock) find(id string) (models.Equipment, bool) {
	for _, eq := range m.base {
		if eq.ID == id {
			return eq, true
		}
	}
	if n := len(m.snaps); n > 0 {
		for _, eq := range m.snaps[n-1].Equipment {
			if eq.ID == id {
				return eq, true
			}
		}
	}
	return models.Equipment{}, false
}

// Remove hides id from every later fetch and drops it from the generated
// sequence.
func (m *Mock) Remove(ctx context.Context, _ string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed[id] {
		return ErrNotFound
	}
	if _, ok := m.find(id); !ok {
		return ErrNotFound
	}
	m.removed[id] = true
	delete(m.patches, id)
	if m.snaps != nil {
		m.snaps = dropFromSequence(m.snaps, id)
		m.persist(ctx)
	}
	return nil
}

// mergePatch overlays b on a.
func mergePatch(a, b models.EquipmentPatch) models.EquipmentPatch {
	if b.Name != nil {
		a.Name = b.Name
	}
	if b.EquipmentID != nil {
		a.EquipmentID = b.EquipmentID
	}
	if b.Manufacturer != nil {
		a.Manufacturer = b.Manufacturer
	}
	if b.Type != nil {
		a.Type = b.Type
	}
	if b.Status != nil {
		a.Status = b.Status
	}
	if b.PowerDraw != nil {
		a.PowerDraw = b.PowerDraw
	}
	if b.DailyEmissions != nil {
		a.DailyEmissions = b.DailyEmissions
	}
	if b.Image != nil {
		a.Image = b.Image
	}
	if b.ErrorMessage != nil {
		a.ErrorMessage = b.ErrorMessage
	}
	if b.Category != nil {
		a.Category = b.Category
	}
	return a
}
