package anneal

import (
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
)

// Schedule holds the annealing parameters. It is never modified by a run.
type Schedule struct {
	StartTemperature     float64 `json:"start_temperature"`
	StartAcceptanceRate  float64 `json:"start_acceptance_rate"`
	StopAcceptanceRate   float64 `json:"stop_acceptance_rate"`
	StopCost             float64 `json:"stop_cost"`
	PerturbationsPerStep int     `json:"perturbations_per_step"`
	PerturbationSTD      float64 `json:"perturbation_std"` // fraction of the bound width
	ReductionFactor      float64 `json:"reduction_factor"`

	// MaxTemperatureSteps caps the number of temperature steps. Zero means
	// no cap.
	MaxTemperatureSteps int `json:"max_temperature_steps"`
}

// Validate reports the first invalid schedule parameter as a configuration
// error.
func (s Schedule) Validate() error {
	switch {
	case !(s.StartTemperature > 0) || math.IsInf(s.StartTemperature, 0):
		return faults.Configurationf("start temperature must be positive, got %g", s.StartTemperature)
	case !inUnit(s.StartAcceptanceRate):
		return faults.Configurationf("start acceptance rate must be in [0, 1], got %g", s.StartAcceptanceRate)
	case !inUnit(s.StopAcceptanceRate):
		return faults.Configurationf("stop acceptance rate must be in [0, 1], got %g", s.StopAcceptanceRate)
	case !(s.StopCost >= 0) || math.IsInf(s.StopCost, 0):
		return faults.Configurationf("stop cost must be non-negative, got %g", s.StopCost)
	case s.PerturbationsPerStep <= 0:
		return faults.Configurationf("perturbations per step must be positive, got %d", s.PerturbationsPerStep)
	case !(s.PerturbationSTD > 0) || math.IsInf(s.PerturbationSTD, 0):
		return faults.Configurationf("perturbation std must be positive, got %g", s.PerturbationSTD)
	case !(s.ReductionFactor > 0 && s.ReductionFactor < 1):
		return faults.Configurationf("reduction factor must be in (0, 1), got %g", s.ReductionFactor)
	case s.MaxTemperatureSteps < 0:
		return faults.Configurationf("max temperature steps must be non-negative, got %d", s.MaxTemperatureSteps)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
