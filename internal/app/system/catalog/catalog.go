// internal/app/system/catalog/catalog.go
//
// Package catalog serves the reference equipment list used to pre-fill new
// equipment. The list ships embedded in the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type document struct {
	Items []models.CatalogItem `yaml:"items"`
}

// Catalog is a read-only, ordered list of catalog items.
type Catalog struct {
	items []models.CatalogItem
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, it := range doc.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("catalog item %d: missing name", i)
		}
		if it.LabType != models.CategoryWetLab && it.LabType != models.CategoryDryLab {
			return nil, fmt.Errorf("catalog item %q: unknown lab type %q", it.Name, it.LabType)
		}
	}
	return &Catalog{items: doc.Items}, nil
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// All returns every item in catalog order.
func (c *Catalog) All() []models.CatalogItem {
	out := make([]models.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// ByLabType returns the items for one lab type.
func (c *Catalog) ByLabType(labType models.EquipmentCategory) []models.CatalogItem {
	out := []models.CatalogItem{}
	for _, it := range c.items {
		if it.LabType == labType {
			out = append(out, it)
		}
	}
	return out
}

// Types returns the distinct equipment types in first-seen order.
func (c *Catalog) Types() []string {
	return c.distinct(func(it models.CatalogItem) string { return it.EquipmentType })
}

// Manufacturers returns the distinct manufacturers, sorted.
func (c *Catalog) Manufacturers() []string {
	out := c.distinct(func(it models.CatalogItem) string { return it.Manufacturer })
	sort.Strings(out)
	return out
}

func (c *Catalog) distinct(field func(models.CatalogItem) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, it := range c.items {
		v := field(it)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Find looks an item up by name, ignoring case.
func (c *Catalog) Find(name string) (models.CatalogItem, bool) {
	for _, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return models.CatalogItem{}, false
}

// Search returns items whose name, type or manufacturer contains q, ignoring case.
func (c *Catalog) Search(q string) []models.CatalogItem {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.All()
	}
	out := []models.CatalogItem{}
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.EquipmentType), q) ||
			strings.Contains(strings.ToLower(it.Manufacturer), q) {
			out = append(out, it)
		}
	}
	return out
}

// DailyEmissions spreads an item's annual impact over a year of days.
func DailyEmissions(it models.CatalogItem) float64 {
	return it.AnnualCarbonImpact / 365
}
