// internal/app/features/equipment/search.go
package equipment

import (
	"strings"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Filter narrows the inventory list. Empty fields match everything.
type Filter struct {
	Query  string
	Type   models.EquipmentType
	Status models.EquipmentStatus
}

// Match reports whether eq passes every set criterion. Query is a folded
// (case- and accent-insensitive) substring match over name, type,
// manufacturer and equipment id.
func (f Filter) Match(eq models.Equipment) bool {
	if f.Type != "" && eq.Type != f.Type {
		return false
	}
	if f.Status != "" && eq.Status != f.Status {
		return false
	}
	q := text.Fold(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, s := range []string{eq.Name, string(eq.Type), eq.Manufacturer, eq.EquipmentID} {
		if strings.Contains(text.Fold(s), q) {
			return true
		}
	}
	return false
}

// Search returns the items matching f, in their original order.
func Search(items []models.Equipment, f Filter) []models.Equipment {
	out := []models.Equipment{}
	for _, eq := range items {
		if f.Match(eq) {
			out = append(out, eq)
		}
	}
	return out
}

// Group is one row of the grouped inventory: the first item of a set of
// identical items plus how many there are and their ids.
type Group struct {
	models.Equipment
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

type groupKey struct {
	name         string
	manufacturer string
	typ          models.EquipmentType
	emissions    models.Measure
}

// GroupIdentical collapses items sharing name, manufacturer, type and daily
// emissions. Groups keep first-seen order.
func GroupIdentical(items []models.Equipment) []Group {
	index := map[groupKey]int{}
	out := []Group{}
	for _, eq := range items {
		k := groupKey{eq.Name, eq.Manufacturer, eq.Type, eq.DailyEmissions}
		if i, ok := index[k]; ok {
			out[i].Count++
			out[i].IDs = append(out[i].IDs, eq.ID)
			continue
		}
		index[k] = len(out)
		out = append(out, Group{Equipment: eq, Count: 1, IDs: []string{eq.ID}})
	}
	return out
}
