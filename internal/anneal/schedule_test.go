package anneal

import (
	"errors"
	"testing"

	"github.com/banshee-data/hydroloc/internal/faults"
)

func validSchedule() Schedule {
	return Schedule{
		StartTemperature:     10,
		StartAcceptanceRate:  0.3,
		StopAcceptanceRate:   0.01,
		StopCost:             0.05,
		PerturbationsPerStep: 50,
		PerturbationSTD:      0.1,
		ReductionFactor:      0.95,
	}
}

func TestScheduleValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(s *Schedule)
		wantErr bool
	}{
		{"valid", func(s *Schedule) {}, false},
		{"capped", func(s *Schedule) { s.MaxTemperatureSteps = 20 }, false},
		{"zero_stop_cost", func(s *Schedule) { s.StopCost = 0 }, false},
		{"zero_temperature", func(s *Schedule) { s.StartTemperature = 0 }, true},
		{"start_rate_above_one", func(s *Schedule) { s.StartAcceptanceRate = 1.5 }, true},
		{"negative_stop_rate", func(s *Schedule) { s.StopAcceptanceRate = -0.1 }, true},
		{"negative_stop_cost", func(s *Schedule) { s.StopCost = -1 }, true},
		{"no_perturbations", func(s *Schedule) { s.PerturbationsPerStep = 0 }, true},
		{"zero_std", func(s *Schedule) { s.PerturbationSTD = 0 }, true},
		{"factor_one", func(s *Schedule) { s.ReductionFactor = 1 }, true},
		{"factor_zero", func(s *Schedule) { s.ReductionFactor = 0 }, true},
		{"negative_max_steps", func(s *Schedule) { s.MaxTemperatureSteps = -1 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSchedule()
			tc.mutate(&s)
			err := s.Validate()
			if tc.wantErr {
				if !errors.Is(err, faults.ErrConfiguration) {
					t.Errorf("Validate() = %v, want configuration error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
