// internal/domain/models/catalog.go
package models

// CatalogItem is a reference entry used to pre-fill new equipment.
type CatalogItem struct {
	Name               string            `yaml:"name" json:"name"`
	Category           string            `yaml:"category" json:"category"`
	LabType            EquipmentCategory `yaml:"labType" json:"labType"`
	CarbonFootprint    float64           `yaml:"carbonFootprint" json:"carbonFootprint"`       // kgCO2e
	AnnualUsage        float64           `yaml:"annualUsage" json:"annualUsage"`               // hours or runs
	AnnualCarbonImpact float64           `yaml:"annualCarbonImpact" json:"annualCarbonImpact"` // kgCO2e
	EquipmentType      string            `yaml:"equipmentType" json:"equipmentType"`
	Manufacturer       string            `yaml:"manufacturer" json:"manufacturer"`
	HasAPI             bool              `yaml:"hasApi" json:"hasApi"`
	APIVendor          string            `yaml:"apiVendor" json:"apiVendor"`
	EnergyConsumption  float64           `yaml:"energyConsumption" json:"energyConsumption"` // kWh
	Image              string            `yaml:"image" json:"image"`
}
