// internal/app/system/datasource/base.go
package datasource

import "github.com/dalemusser/labcarbon/internal/domain/models"

func item(id, name, code, manufacturer string, t models.EquipmentType, status models.EquipmentStatus, kw, kg float64) models.Equipment {
	return models.Equipment{
		ID:             id,
		Name:           name,
		EquipmentID:    code,
		Manufacturer:   manufacturer,
		Type:           t,
		Status:         status,
		PowerDraw:      models.Measure{Value: kw, Unit: models.UnitKW},
		DailyEmissions: models.Measure{Value: kg, Unit: models.UnitKgCO2e},
		Category:       models.CategoryWetLab,
	}
}

// BaseEquipment returns the demo inventory the mock source starts from.
func BaseEquipment() []models.Equipment {
	return []models.Equipment{
		item("1", "ULT Freezer -80°C", "#001", "Thermo Fisher Scientific", models.TypeUltraLowFreezer, models.StatusActive, 5.2, 120),
		item("2", "CO2 Incubator Pro", "#002", "Esco Technologies", models.TypeCO2Incubator, models.StatusActive, 2.8, 65),
		item("3", "Biosafety Cabinet Class II", "#003", "Nuaire", models.TypeBiosafetyCabinet, models.StatusActive, 1.5, 35),
		item("4", "Autoclave Sterilizer", "#004", "MELAG", models.TypeAutoclave, models.StatusActive, 3.2, 75),
		item("5", "Real-Time PCR System", "#005", "Applied Biosystems", models.TypePCRMachine, models.StatusActive, 1.2, 28),
		item("6", "High-Speed Microcentrifuge", "#006", "Eppendorf", models.TypeCentrifuge, models.StatusIdle, 0.8, 18),
		item("7", "Inverted Fluorescence Microscope", "#007", "Olympus", models.TypeMicroscope, models.StatusActive, 0.6, 14),
		item("8", "UV-Vis Spectrophotometer", "#008", "Shimadzu", models.TypeSpectrophotometer, models.StatusActive, 0.4, 9),
		item("9", "Ultra-Low Freezer -80°C (2nd Unit)", "#009", "Thermo Fisher Scientific", models.TypeUltraLowFreezer, models.StatusActive, 5.1, 118),
		item("10", "CO2 Incubator Standard", "#010", "Panasonic", models.TypeCO2Incubator, models.StatusActive, 2.5, 58),
		item("11", "Benchtop Centrifuge", "#011", "Heraeus", models.TypeCentrifuge, models.StatusMaintenance, 1.0, 23),
		item("12", "Liquid Nitrogen Tank", "#012", "Chart Industries", models.TypeUltraLowFreezer, models.StatusActive, 2.0, 46),
	}
}
