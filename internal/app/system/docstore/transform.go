// internal/app/system/docstore/transform.go
package docstore

import (
	"math"
	"strings"

	"github.com/dalemusser/labcarbon/internal/domain/models"
)

// ToEquipment maps one experiment to one equipment item. The GPU name wins
// over the CPU name; per-run energy and emissions are scaled to a 24 hour
// day and rounded to 4 decimals.
func ToEquipment(e models.Experiment) models.Equipment {
	hardware := e.GPUName
	manufacturer := "NVIDIA"
	typ := models.TypeGPU
	if hardware == "" {
		hardware = e.CPUName
		manufacturer = "Intel"
		typ = models.TypeCPU
	}
	name := strings.TrimSpace(strings.SplitN(hardware, "/", 2)[0])

	code := e.ID
	if len(code) > 6 {
		code = code[:6]
	}

	return models.Equipment{
		ID:             e.ID,
		Name:           name,
		EquipmentID:    "#" + code,
		Manufacturer:   manufacturer,
		Type:           typ,
		Status:         models.StatusActive,
		PowerDraw:      models.Measure{Value: round4(e.PowerConsumptionKWh * 24), Unit: models.UnitKW},
		DailyEmissions: models.Measure{Value: round4(e.CO2EmissionsKg * 24), Unit: models.UnitKgCO2e},
		Category:       models.CategoryDryLab,
	}
}

// ToEquipmentList maps experiments one to one, preserving order.
func ToEquipmentList(experiments []models.Experiment) []models.Equipment {
	out := make([]models.Equipment, len(experiments))
	for i, e := range experiments {
		out[i] = ToEquipment(e)
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
