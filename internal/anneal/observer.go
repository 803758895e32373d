package anneal

import (
	"time"

	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/monitoring"
)

// StepReport summarises one completed temperature step.
type StepReport struct {
	Step           int
	Temperature    float64
	AcceptanceRate float64
	Cost           float64
	BestCost       float64
	Layout         geometry.Layout
	Elapsed        time.Duration
}

// Observer receives progress after each temperature step. It must not retain
// or modify Layout.
type Observer interface {
	ObserveStep(StepReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepReport)

// ObserveStep calls f(r).
func (f ObserverFunc) ObserveStep(r StepReport) { f(r) }

// LogObserver writes one progress line per step through monitoring.Logf.
type LogObserver struct{}

// ObserveStep logs the step.
func (LogObserver) ObserveStep(r StepReport) {
	monitoring.Logf("Temperature: %.6g - Acceptance rate: %.3f - Cost: %.6g", r.Temperature, r.AcceptanceRate, r.Cost)
}
