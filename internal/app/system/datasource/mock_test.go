package datasource

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	snapshotstore "github.com/dalemusser/labcarbon/internal/app/store/snapshots"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

type fakeSnapshotCache struct {
	days  map[string][]models.EquipmentSnapshot
	saves int
	err   error
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{days: map[string][]models.EquipmentSnapshot{}}
}

func (f *fakeSnapshotCache) SaveDay(_ context.Context, scope, day string, s []models.EquipmentSnapshot) error {
	f.saves++
	f.days[scope+"/"+day] = models.CloneSnapshots(s)
	return nil
}

func (f *fakeSnapshotCache) LoadDay(_ context.Context, scope, day string, _ *time.Location) ([]models.EquipmentSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.days[scope+"/"+day]
	if !ok {
		return nil, snapshotstore.ErrNotFound
	}
	return models.CloneSnapshots(s), nil
}

type fakeDocs struct {
	enabled bool
	exps    []models.Experiment
	err     error
}

func (f fakeDocs) Enabled() bool { return f.enabled }
func (f fakeDocs) FetchExperiments(context.Context) ([]models.Experiment, error) {
	return f.exps, f.err
}

var testNow = time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)

func newTestMock(cache SnapshotCache, docs ExperimentFetcher) *Mock {
	return NewMock(MockConfig{Rand: rand.New(rand.NewPCG(1, 2))}, BaseEquipment(), cache, docs, zap.NewNop())
}

func TestBaseEquipment(t *testing.T) {
	base := BaseEquipment()
	if len(base) != 12 {
		t.Fatalf("len(BaseEquipment()) = %d, want 12", len(base))
	}
	seen := map[string]bool{}
	for _, eq := range base {
		if seen[eq.ID] {
			t.Errorf("duplicate id %s", eq.ID)
		}
		seen[eq.ID] = true
		if problems := eq.Validate(); len(problems) != 0 {
			t.Errorf("%s invalid: %v", eq.Name, problems)
		}
	}
}

func TestMock_Fetch(t *testing.T) {
	cache := newFakeSnapshotCache()
	m := newTestMock(cache, nil)

	res, err := m.Fetch(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Mode != models.ModeMock {
		t.Errorf("Mode = %q, want mock", res.Mode)
	}
	if len(res.Snapshots) != timeseries.DaysOfHistory+1 {
		t.Errorf("len(Snapshots) = %d, want %d", len(res.Snapshots), timeseries.DaysOfHistory+1)
	}
	if len(res.Equipment) != 12 {
		t.Errorf("len(Equipment) = %d, want 12", len(res.Equipment))
	}
	if len(res.History.Daily) != timeseries.DefaultDailyRange {
		t.Errorf("len(Daily) = %d, want %d", len(res.History.Daily), timeseries.DefaultDailyRange)
	}
	if len(res.History.Weekly) == 0 || len(res.History.Monthly) == 0 {
		t.Error("weekly and monthly rollups should not be empty")
	}
	if cache.saves != 1 {
		t.Errorf("saves = %d, want 1", cache.saves)
	}
}

func TestMock_ReusesSequenceWithinDay(t *testing.T) {
	cache := newFakeSnapshotCache()
	m := newTestMock(cache, nil)
	ctx := context.Background()

	first, _ := m.Fetch(ctx, "", testNow)
	second, _ := m.Fetch(ctx, "", testNow.Add(2*time.Hour))

	if cache.saves != 1 {
		t.Errorf("saves = %d, want 1", cache.saves)
	}
	for i := range first.Snapshots {
		if first.Snapshots[i].Metadata.TotalEmissions != second.Snapshots[i].Metadata.TotalEmissions {
			t.Fatalf("snapshot %d changed within the day", i)
		}
	}

	if _, err := m.Fetch(ctx, "", testNow.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Fetch() next day error = %v", err)
	}
	if cache.saves != 2 {
		t.Errorf("saves after day change = %d, want 2", cache.saves)
	}
}

func TestMock_LoadsPersistedSequence(t *testing.T) {
	cache := newFakeSnapshotCache()
	first := newTestMock(cache, nil)
	want, _ := first.Fetch(context.Background(), "", testNow)

	// A new process on the same day.
	second := NewMock(MockConfig{Rand: rand.New(rand.NewPCG(9, 9))}, BaseEquipment(), cache, nil, zap.NewNop())
	got, err := second.Fetch(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if cache.saves != 1 {
		t.Errorf("saves = %d, want 1", cache.saves)
	}
	last := len(want.Snapshots) - 1
	if got.Snapshots[last].Metadata.TotalEmissions != want.Snapshots[last].Metadata.TotalEmissions {
		t.Error("persisted sequence should be reused")
	}
}

func TestMock_CacheErrorFallsBackToGeneration(t *testing.T) {
	cache := newFakeSnapshotCache()
	cache.err = errors.New("mongo down")
	m := newTestMock(cache, nil)

	res, err := m.Fetch(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Snapshots) == 0 {
		t.Error("expected generated snapshots")
	}
}

func TestMock_Mutations(t *testing.T) {
	m := newTestMock(nil, nil)
	ctx := context.Background()
	if _, err := m.Fetch(ctx, "", testNow); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	added, err := m.Add(ctx, "", models.Equipment{
		Name:           "Shaking Incubator",
		Manufacturer:   "Eppendorf",
		Type:           models.TypeCO2Incubator,
		DailyEmissions: models.Measure{Value: 30},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.ID == "" || added.Status != models.StatusActive || added.DailyEmissions.Unit != models.UnitKgCO2e {
		t.Errorf("Add() defaults not applied: %+v", added)
	}

	name := "ULT Freezer (renamed)"
	updated, err := m.Update(ctx, "", "1", models.EquipmentPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != name {
		t.Errorf("Update() name = %q, want %q", updated.Name, name)
	}

	if err := m.Remove(ctx, "", "6"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := m.Remove(ctx, "", "6"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
	if _, err := m.Update(ctx, "", "missing", models.EquipmentPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	res, err := m.Fetch(ctx, "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Equipment) != 12 {
		t.Errorf("len(Equipment) = %d, want 12 (one added, one removed)", len(res.Equipment))
	}
	byID := map[string]models.Equipment{}
	for _, eq := range res.Equipment {
		byID[eq.ID] = eq
	}
	if _, ok := byID["6"]; ok {
		t.Error("removed equipment should not be fetched")
	}
	if byID["1"].Name != name {
		t.Errorf("patched name = %q, want %q", byID["1"].Name, name)
	}
	if _, ok := byID[added.ID]; !ok {
		t.Error("added equipment should be fetched")
	}
}

func dayValues(snaps []models.EquipmentSnapshot) []map[string]float64 {
	out := make([]map[string]float64, len(snaps))
	for i, snap := range snaps {
		out[i] = map[string]float64{}
		for _, eq := range snap.Equipment {
			out[i][eq.ID] = eq.DailyEmissions.Value
		}
	}
	return out
}

func checkTotals(t *testing.T, snaps []models.EquipmentSnapshot) {
	t.Helper()
	for _, snap := range snaps {
		var sum float64
		for _, eq := range snap.Equipment {
			sum += eq.DailyEmissions.Value
		}
		if snap.Metadata.TotalEquipmentCount != len(snap.Equipment) {
			t.Errorf("%s: TotalEquipmentCount = %d, want %d", snap.Date, snap.Metadata.TotalEquipmentCount, len(snap.Equipment))
		}
		if snap.Metadata.TotalEmissions != math.Round(sum) {
			t.Errorf("%s: TotalEmissions = %v, want %v", snap.Date, snap.Metadata.TotalEmissions, math.Round(sum))
		}
	}
}

func TestMock_MutationsKeepUntouchedHistory(t *testing.T) {
	cache := newFakeSnapshotCache()
	m := newTestMock(cache, nil)
	ctx := context.Background()

	before, err := m.Fetch(ctx, "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	orig := dayValues(before.Snapshots)
	saves := cache.saves

	added, err := m.Add(ctx, "", models.Equipment{
		Name:           "Plate Reader",
		Manufacturer:   "BioTek",
		Type:           models.TypeSpectrophotometer,
		DailyEmissions: models.Measure{Value: 0.0001},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	afterAdd, err := m.Fetch(ctx, "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(afterAdd.Snapshots) != len(before.Snapshots) {
		t.Fatalf("snapshot count = %d, want %d", len(afterAdd.Snapshots), len(before.Snapshots))
	}
	for i, snap := range afterAdd.Snapshots {
		if snap.Metadata.TotalEmissions != before.Snapshots[i].Metadata.TotalEmissions {
			t.Errorf("%s: total moved from %v to %v after adding a near-zero item",
				snap.Date, before.Snapshots[i].Metadata.TotalEmissions, snap.Metadata.TotalEmissions)
		}
		if snap.Metadata.TotalEquipmentCount != before.Snapshots[i].Metadata.TotalEquipmentCount+1 {
			t.Errorf("%s: TotalEquipmentCount = %d, want one more than before", snap.Date, snap.Metadata.TotalEquipmentCount)
		}
		got := dayValues([]models.EquipmentSnapshot{snap})[0]
		if _, ok := got[added.ID]; !ok {
			t.Errorf("%s: added equipment missing", snap.Date)
		}
		for id, v := range orig[i] {
			if got[id] != v {
				t.Errorf("%s: %s changed from %v to %v", snap.Date, id, v, got[id])
			}
		}
	}
	if cache.saves <= saves {
		t.Error("mutated sequence should be written to the snapshot cache")
	}

	var base float64
	for _, eq := range BaseEquipment() {
		if eq.ID == "1" {
			base = eq.DailyEmissions.Value
		}
	}
	doubled := models.Measure{Value: base * 2}
	if _, err := m.Update(ctx, "", "1", models.EquipmentPatch{DailyEmissions: &doubled}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := m.Remove(ctx, "", "6"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	after, err := m.Fetch(ctx, "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	checkTotals(t, after.Snapshots)
	for i, got := range dayValues(after.Snapshots) {
		date := after.Snapshots[i].Date
		if _, ok := got["6"]; ok {
			t.Errorf("%s: removed equipment still present", date)
		}
		if want := orig[i]["1"] * 2; math.Abs(got["1"]-want) > 0.011 {
			t.Errorf("%s: rescaled value = %v, want about %v", date, got["1"], want)
		}
		for id, v := range orig[i] {
			if id == "1" || id == "6" {
				continue
			}
			if got[id] != v {
				t.Errorf("%s: %s changed from %v to %v", date, id, v, got[id])
			}
		}
	}
}

func TestMock_DocumentStoreMerge(t *testing.T) {
	docs := fakeDocs{enabled: true, exps: []models.Experiment{{
		ID:                  "a1b2c3d4e5",
		GPUName:             "NVIDIA A100 / 80GB",
		PowerConsumptionKWh: 0.5,
		CO2EmissionsKg:      0.2,
	}}}
	m := newTestMock(nil, docs)

	res, err := m.Fetch(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Equipment) != 13 {
		t.Fatalf("len(Equipment) = %d, want 13", len(res.Equipment))
	}
	if res.Equipment[0].ID != "a1b2c3d4e5" || res.Equipment[0].Type != models.TypeGPU {
		t.Errorf("first item = %+v, want the document-store GPU", res.Equipment[0])
	}
	if len(res.Experiments) != 1 {
		t.Errorf("len(Experiments) = %d, want 1", len(res.Experiments))
	}
}

func TestMock_DocumentStoreFailure(t *testing.T) {
	m := newTestMock(nil, fakeDocs{enabled: true, err: errors.New("502")})

	res, err := m.Fetch(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("Fetch() should not fail when the document store does: %v", err)
	}
	if len(res.Equipment) != 12 {
		t.Errorf("len(Equipment) = %d, want 12", len(res.Equipment))
	}
}
