package equipment

import (
	"testing"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

func inventory() []models.Equipment {
	kg := func(v float64) models.Measure { return models.Measure{Value: v, Unit: models.UnitKgCO2e} }
	return []models.Equipment{
		{ID: "1", Name: "Ultra-Low Freezer", EquipmentID: "#ULF-001", Manufacturer: "Thermo Fisher", Type: models.TypeUltraLowFreezer, Status: models.StatusActive, DailyEmissions: kg(12)},
		{ID: "2", Name: "Ultra-Low Freezer", EquipmentID: "#ULF-002", Manufacturer: "Thermo Fisher", Type: models.TypeUltraLowFreezer, Status: models.StatusIdle, DailyEmissions: kg(12)},
		{ID: "3", Name: "A100", EquipmentID: "#a1b2c3", Manufacturer: "NVIDIA", Type: models.TypeGPU, Status: models.StatusActive, DailyEmissions: kg(4.5)},
		{ID: "4", Name: "Ultra-Low Freezer", EquipmentID: "#ULF-003", Manufacturer: "Thermo Fisher", Type: models.TypeUltraLowFreezer, Status: models.StatusActive, DailyEmissions: kg(14)},
	}
}

func ids(items []models.Equipment) []string {
	out := make([]string, len(items))
	for i, eq := range items {
		out[i] = eq.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3", "4"}},
		{"name, case-insensitive", Filter{Query: "freezer"}, []string{"1", "2", "4"}},
		{"manufacturer", Filter{Query: "nvidia"}, []string{"3"}},
		{"equipment id", Filter{Query: "ulf-002"}, []string{"2"}},
		{"type", Filter{Type: models.TypeGPU}, []string{"3"}},
		{"status", Filter{Status: models.StatusActive}, []string{"1", "3", "4"}},
		{"query and status", Filter{Query: "freezer", Status: models.StatusIdle}, []string{"2"}},
		{"blank query", Filter{Query: "   "}, []string{"1", "2", "3", "4"}},
		{"no match", Filter{Query: "centrifuge"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Search(inventory(), tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("Search() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Search() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGroupIdentical(t *testing.T) {
	items := inventory()
	groups := GroupIdentical(items)

	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}
	if groups[0].Count != 2 || groups[0].IDs[0] != "1" || groups[0].IDs[1] != "2" {
		t.Errorf("groups[0] = %+v, want items 1 and 2", groups[0])
	}

	// Groups partition the input.
	total := 0
	seen := map[string]bool{}
	for _, g := range groups {
		total += g.Count
		for _, id := range g.IDs {
			if seen[id] {
				t.Errorf("id %s appears in more than one group", id)
			}
			seen[id] = true
		}
	}
	if total != len(items) {
		t.Errorf("sum of counts = %d, want %d", total, len(items))
	}
}
