// internal/domain/models/experiment.go
package models

// Experiment is a compute experiment record served by the document store.
// Field names mirror the upstream JSON exactly.
type Experiment struct {
	ID                    string   `json:"id"`
	ProjectName           string   `json:"project_name"`
	ExperimentDescription string   `json:"experiment_description"`
	Epoch                 *float64 `json:"epoch"`
	StartTime             string   `json:"start_time"`
	DurationSeconds       float64  `json:"duration(s)"`
	PowerConsumptionKWh   float64  `json:"power_consumption(kWh)"`
	CO2EmissionsKg        float64  `json:"CO2_emissions(kg)"`
	CPUName               string   `json:"CPU_name"`
	GPUName               string   `json:"GPU_name"`
	OS                    string   `json:"OS"`
	RegionCountry         string   `json:"region/country"`
	Cost                  float64  `json:"cost"`
}

// CloneExperiments copies a slice of experiments.
func CloneExperiments(in []Experiment) []Experiment {
	out := make([]Experiment, len(in))
	for i, e := range in {
		if e.Epoch != nil {
			v := *e.Epoch
			e.Epoch = &v
		}
		out[i] = e
	}
	return out
}
