package anneal

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/timeutil"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxInitAttempts bounds how often an infeasible initial layout is redrawn.
const MaxInitAttempts = 100

// Objective scores a layout. Lower is better. An error wrapping
// faults.ErrNumerical marks the layout as infeasible; any other error aborts
// the run.
type Objective interface {
	Cost(geometry.Layout) (float64, error)
}

// ObjectiveFunc adapts a function to Objective.
type ObjectiveFunc func(geometry.Layout) (float64, error)

// Cost calls f(l).
func (f ObjectiveFunc) Cost(l geometry.Layout) (float64, error) { return f(l) }

// StopReason says why a run ended.
type StopReason string

const (
	StopAcceptanceRate StopReason = "acceptance-rate"
	StopCostReached    StopReason = "stop-cost"
	StopMaxSteps       StopReason = "max-steps"
	StopCancelled      StopReason = "cancelled"
)

// Result is the terminal state of a run.
type Result struct {
	Layout     geometry.Layout // accepted layout when the run stopped
	Cost       float64
	BestLayout geometry.Layout // lowest-cost layout visited
	BestCost   float64
	Trace      *Trace
	Elapsed    time.Duration
	StopReason StopReason
	Steps      int
}

// Optimizer runs simulated annealing over a receiver layout.
type Optimizer struct {
	Bounds    []geometry.Bounds
	Schedule  Schedule
	Objective Objective
	Rand      *rand.Rand

	// Clock measures elapsed time; nil means timeutil.RealClock.
	Clock timeutil.Clock
	// Observer is notified after each temperature step; nil disables it.
	Observer Observer
}

// New validates the inputs and returns an optimizer using the real clock.
func New(bounds []geometry.Bounds, schedule Schedule, objective Objective, rng *rand.Rand) (*Optimizer, error) {
	o := &Optimizer{
		Bounds:    bounds,
		Schedule:  schedule,
		Objective: objective,
		Rand:      rng,
		Clock:     timeutil.RealClock{},
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Optimizer) validate() error {
	if err := geometry.ValidateBounds(o.Bounds); err != nil {
		return err
	}
	if err := o.Schedule.Validate(); err != nil {
		return err
	}
	if o.Objective == nil {
		return faults.Configurationf("objective is nil")
	}
	if o.Rand == nil {
		return faults.Configurationf("random generator is nil")
	}
	return nil
}

// run holds the mutable state of one Run call.
type run struct {
	*Optimizer
	normal  distuv.Normal
	uniform distuv.Uniform
	cycler  *ParamCycler

	current  geometry.Layout
	cost     float64
	best     geometry.Layout
	bestCost float64
	trace    *Trace
}

// Run anneals until a stop condition holds. The context is checked between
// temperature steps; on cancellation the partial result is returned together
// with ctx.Err().
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	clock := o.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()

	r := &run{
		Optimizer: o,
		normal:    distuv.Normal{Mu: 0, Sigma: 1, Src: o.Rand},
		uniform:   distuv.Uniform{Min: 0, Max: 1, Src: o.Rand},
		cycler:    NewParamCycler(len(o.Bounds)),
	}
	if err := r.initialize(); err != nil {
		return nil, err
	}

	s := o.Schedule
	temperature := s.StartTemperature
	steps := 0
	var reason StopReason
	for {
		if err := ctx.Err(); err != nil {
			return r.result(steps, StopCancelled, clock.Since(start)), err
		}

		accepted := 0
		for i := 0; i < s.PerturbationsPerStep; i++ {
			ok, err := r.trial(temperature)
			if err != nil {
				return nil, err
			}
			if ok {
				accepted++
			}
		}
		rate := float64(accepted) / float64(s.PerturbationsPerStep)
		r.trace.AcceptanceRates = append(r.trace.AcceptanceRates, RateSample{Temperature: temperature, Rate: rate})
		steps++

		if o.Observer != nil {
			o.Observer.ObserveStep(StepReport{
				Step:           steps,
				Temperature:    temperature,
				AcceptanceRate: rate,
				Cost:           r.cost,
				BestCost:       r.bestCost,
				Layout:         r.current,
				Elapsed:        clock.Since(start),
			})
		}

		if steps == 1 && rate < s.StartAcceptanceRate {
			return nil, faults.Configurationf(
				"melting failed: acceptance rate %.3f below %.3f at temperature %g; raise the start temperature",
				rate, s.StartAcceptanceRate, temperature)
		}

		switch {
		case rate < s.StopAcceptanceRate:
			reason = StopAcceptanceRate
		case r.bestCost <= s.StopCost:
			reason = StopCostReached
		case s.MaxTemperatureSteps > 0 && steps >= s.MaxTemperatureSteps:
			reason = StopMaxSteps
		}
		if reason != "" {
			break
		}
		temperature *= s.ReductionFactor
	}
	return r.result(steps, reason, clock.Since(start)), nil
}

func (r *run) initialize() error {
	var lastErr error
	for attempt := 0; attempt < MaxInitAttempts; attempt++ {
		layout := make(geometry.Layout, len(r.Bounds))
		for i, b := range r.Bounds {
			for k := 0; k < geometry.Axes; k++ {
				r.uniform.Min, r.uniform.Max = b[k].Min, b[k].Max
				layout[i] = layout[i].WithAxis(k, r.uniform.Rand())
			}
		}
		r.uniform.Min, r.uniform.Max = 0, 1

		cost, err := r.Objective.Cost(layout)
		if err != nil {
			if faults.IsInfeasible(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("initial layout: %w", err)
		}
		r.current, r.cost = layout, cost
		r.best, r.bestCost = layout.Clone(), cost
		r.trace = &Trace{InitialLayout: layout.Clone(), InitialCost: cost}
		return nil
	}
	return faults.Configurationf("no feasible initial layout after %d draws: %v", MaxInitAttempts, lastErr)
}

// trial perturbs the next parameter and applies the Metropolis rule. It
// always appends exactly one sample to the trace.
func (r *run) trial(temperature float64) (bool, error) {
	p := r.cycler.Next()
	iv := r.Bounds[p.Receiver][p.Axis]

	r.normal.Sigma = r.Schedule.PerturbationSTD * iv.Width()
	value := r.current.Param(p.Receiver, p.Axis) + r.normal.Rand()

	accepted := false
	if iv.Contains(value) {
		candidate := r.current.With(p.Receiver, p.Axis, value)
		cost, err := r.Objective.Cost(candidate)
		switch {
		case err == nil:
			if r.metropolis(cost-r.cost, temperature) {
				accepted = true
				r.current, r.cost = candidate, cost
				if cost < r.bestCost {
					r.best, r.bestCost = candidate.Clone(), cost
				}
			}
		case faults.IsInfeasible(err):
		default:
			return false, fmt.Errorf("evaluate receiver %d axis %s: %w", p.Receiver, geometry.AxisNames[p.Axis], err)
		}
	}

	r.trace.Costs = append(r.trace.Costs, CostSample{
		Temperature: temperature,
		Cost:        r.cost,
		Accepted:    accepted,
		Receiver:    p.Receiver,
		Axis:        p.Axis,
	})
	r.trace.Layouts = append(r.trace.Layouts, r.current.Clone())
	return accepted, nil
}

func (r *run) metropolis(delta, temperature float64) bool {
	if delta <= 0 {
		return true
	}
	return r.uniform.Rand() <= math.Exp(-delta/temperature)
}

func (r *run) result(steps int, reason StopReason, elapsed time.Duration) *Result {
	return &Result{
		Layout:     r.current.Clone(),
		Cost:       r.cost,
		BestLayout: r.best.Clone(),
		BestCost:   r.bestCost,
		Trace:      r.trace,
		Elapsed:    elapsed,
		StopReason: reason,
		Steps:      steps,
	}
}
