// internal/domain/models/equipment.go
package models

import "strings"

// Emissions and power units.
const (
	UnitKgCO2e = "kgCO₂e"
	UnitTCO2e  = "tCO₂e"
	UnitKW     = "kW"
)

// EquipmentType is the fixed set of hardware kinds the dashboard tracks.
type EquipmentType string

const (
	TypeUltraLowFreezer   EquipmentType = "Ultra-Low Freezer"
	TypeCO2Incubator      EquipmentType = "CO2 Incubator"
	TypeBiosafetyCabinet  EquipmentType = "Biosafety Cabinet"
	TypeAutoclave         EquipmentType = "Autoclave"
	TypePCRMachine        EquipmentType = "PCR Machine"
	TypeCentrifuge        EquipmentType = "Centrifuge"
	TypeMicroscope        EquipmentType = "Microscope"
	TypeSpectrophotometer EquipmentType = "Spectrophotometer"
	TypeGPU               EquipmentType = "GPU"
	TypeGPUAccelerator    EquipmentType = "GPU Accelerator"
	TypeCPU               EquipmentType = "CPU"
)

// AllEquipmentTypes returns every valid equipment type.
func AllEquipmentTypes() []EquipmentType {
	return []EquipmentType{
		TypeUltraLowFreezer,
		TypeCO2Incubator,
		TypeBiosafetyCabinet,
		TypeAutoclave,
		TypePCRMachine,
		TypeCentrifuge,
		TypeMicroscope,
		TypeSpectrophotometer,
		TypeGPU,
		TypeGPUAccelerator,
		TypeCPU,
	}
}

// IsValidEquipmentType reports whether t is one of AllEquipmentTypes.
func IsValidEquipmentType(t string) bool {
	for _, v := range AllEquipmentTypes() {
		if string(v) == t {
			return true
		}
	}
	return false
}

// EquipmentStatus is the operating state of a piece of equipment.
type EquipmentStatus string

const (
	StatusActive      EquipmentStatus = "active"
	StatusIdle        EquipmentStatus = "idle"
	StatusMaintenance EquipmentStatus = "maintenance"
	StatusOffline     EquipmentStatus = "offline"
	StatusFaulty      EquipmentStatus = "faulty"
)

// IsValidStatus reports whether s is a known equipment status.
func IsValidStatus(s string) bool {
	switch EquipmentStatus(s) {
	case StatusActive, StatusIdle, StatusMaintenance, StatusOffline, StatusFaulty:
		return true
	}
	return false
}

// EquipmentCategory separates wet lab hardware from compute hardware.
type EquipmentCategory string

const (
	CategoryWetLab EquipmentCategory = "wet-lab"
	CategoryDryLab EquipmentCategory = "dry-lab"
)

// IsValidCategory reports whether c is wet-lab or dry-lab.
func IsValidCategory(c string) bool {
	return EquipmentCategory(c) == CategoryWetLab || EquipmentCategory(c) == CategoryDryLab
}

// Measure is a numeric value paired with its unit string.
type Measure struct {
	Value float64 `bson:"value" json:"value"`
	Unit  string  `bson:"unit" json:"unit"`
}

// Equipment is a piece of lab or compute hardware being tracked.
//
// ID is unique within the owning scope (an organization in backend mode).
// DailyEmissions.Value is never negative.
type Equipment struct {
	ID             string            `bson:"id" json:"id"`
	Name           string            `bson:"name" json:"name"`
	EquipmentID    string            `bson:"equipment_id" json:"equipmentId"` // human-readable code, e.g. "#001"
	Manufacturer   string            `bson:"manufacturer" json:"manufacturer"`
	Type           EquipmentType     `bson:"type" json:"type"`
	Status         EquipmentStatus   `bson:"status" json:"status"`
	PowerDraw      Measure           `bson:"power_draw" json:"powerDraw"`
	DailyEmissions Measure           `bson:"daily_emissions" json:"dailyEmissions"`
	Image          string            `bson:"image,omitempty" json:"image,omitempty"`
	ErrorMessage   string            `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	Category       EquipmentCategory `bson:"category,omitempty" json:"category,omitempty"`
}

// EquipmentPatch is a partial update. Nil fields are left unchanged.
type EquipmentPatch struct {
	Name           *string            `json:"name,omitempty"`
	EquipmentID    *string            `json:"equipmentId,omitempty"`
	Manufacturer   *string            `json:"manufacturer,omitempty"`
	Type           *EquipmentType     `json:"type,omitempty"`
	Status         *EquipmentStatus   `json:"status,omitempty"`
	PowerDraw      *Measure           `json:"powerDraw,omitempty"`
	DailyEmissions *Measure           `json:"dailyEmissions,omitempty"`
	Image          *string            `json:"image,omitempty"`
	ErrorMessage   *string            `json:"errorMessage,omitempty"`
	Category       *EquipmentCategory `json:"category,omitempty"`
}

// Apply returns a copy of e with every non-nil field of p merged in.
func (p EquipmentPatch) Apply(e Equipment) Equipment {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.EquipmentID != nil {
		e.EquipmentID = *p.EquipmentID
	}
	if p.Manufacturer != nil {
		e.Manufacturer = *p.Manufacturer
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.PowerDraw != nil {
		e.PowerDraw = *p.PowerDraw
	}
	if p.DailyEmissions != nil {
		e.DailyEmissions = *p.DailyEmissions
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.ErrorMessage != nil {
		e.ErrorMessage = *p.ErrorMessage
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	return e
}

// Validate checks the fields required to add equipment and returns a map
// of field name to problem. An empty map means the equipment is acceptable.
func (e Equipment) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(e.Name) == "" {
		problems["name"] = "required"
	}
	if strings.TrimSpace(e.Manufacturer) == "" {
		problems["manufacturer"] = "required"
	}
	if strings.TrimSpace(string(e.Type)) == "" {
		problems["type"] = "required"
	} else if !IsValidEquipmentType(string(e.Type)) {
		problems["type"] = "unknown equipment type"
	}
	if e.DailyEmissions.Value <= 0 {
		problems["dailyEmissions"] = "must be greater than zero"
	}
	if e.Status != "" && !IsValidStatus(string(e.Status)) {
		problems["status"] = "unknown status"
	}
	if e.Category != "" && !IsValidCategory(string(e.Category)) {
		problems["category"] = "must be wet-lab or dry-lab"
	}
	return problems
}

// Validate checks a patch. Only fields that are present are checked.
func (p EquipmentPatch) Validate() map[string]string {
	problems := map[string]string{}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems["name"] = "cannot be empty"
	}
	if p.Manufacturer != nil && strings.TrimSpace(*p.Manufacturer) == "" {
		problems["manufacturer"] = "cannot be empty"
	}
	if p.Type != nil && !IsValidEquipmentType(string(*p.Type)) {
		problems["type"] = "unknown equipment type"
	}
	if p.DailyEmissions != nil && p.DailyEmissions.Value <= 0 {
		problems["dailyEmissions"] = "must be greater than zero"
	}
	if p.Status != nil && !IsValidStatus(string(*p.Status)) {
		problems["status"] = "unknown status"
	}
	if p.Category != nil && !IsValidCategory(string(*p.Category)) {
		problems["category"] = "must be wet-lab or dry-lab"
	}
	return problems
}

// CloneEquipment returns a copy of the slice. A nil input yields an empty slice.
func CloneEquipment(in []Equipment) []Equipment {
	out := make([]Equipment, len(in))
	copy(out, in)
	return out
}
