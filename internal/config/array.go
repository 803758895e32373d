package config

import (
	"fmt"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/grid"
	"github.com/banshee-data/hydroloc/internal/uncertainty"
)

// DefaultArrayConfigPath is the canonical array optimisation defaults file.
const DefaultArrayConfigPath = "config/array.defaults.json"

// ReceiverBounds is the search box of one receiver.
type ReceiverBounds struct {
	X geometry.Interval `json:"x"`
	Y geometry.Interval `json:"y"`
	Z geometry.Interval `json:"z"`
}

// Bounds converts b to the per-axis form used by the optimiser.
func (b ReceiverBounds) Bounds() geometry.Bounds {
	return geometry.Bounds{b.X, b.Y, b.Z}
}

// ArrayConfig configures an array design run.
type ArrayConfig struct {
	// Receivers lists explicit bounds per receiver. When empty,
	// ReceiverCount receivers share a cube of ±BoundHalfWidth metres.
	Receivers      []ReceiverBounds `json:"receivers,omitempty"`
	ReceiverCount  *int             `json:"receiver_count,omitempty"`
	BoundHalfWidth *float64         `json:"bound_half_width,omitempty"`

	// Annealing schedule
	StartTemperature     *float64 `json:"start_temperature,omitempty"`
	StartAcceptanceRate  *float64 `json:"start_acceptance_rate,omitempty"`
	StopAcceptanceRate   *float64 `json:"stop_acceptance_rate,omitempty"`
	StopCost             *float64 `json:"stop_cost,omitempty"`
	PerturbationsPerStep *int     `json:"perturbations_per_step,omitempty"`
	PerturbationSTD      *float64 `json:"perturbation_std,omitempty"`
	ReductionFactor      *float64 `json:"reduction_factor,omitempty"`
	MaxTemperatureSteps  *int     `json:"max_temperature_steps,omitempty"`

	// Evaluation grid
	GridKind    *string         `json:"grid_kind,omitempty"`
	GridCount   *int            `json:"grid_count,omitempty"`
	GridSpacing *float64        `json:"grid_spacing,omitempty"`
	GridRadius  *float64        `json:"grid_radius,omitempty"`
	GridOrigin  *geometry.Point `json:"grid_origin,omitempty"`

	// Propagation model
	SoundSpeed        *float64 `json:"sound_speed,omitempty"`    // m/s
	NoiseVariance     *float64 `json:"noise_variance,omitempty"` // s²
	Reduction         *string  `json:"reduction,omitempty"`      // mean, max or median
	ReferenceReceiver *int     `json:"reference_receiver,omitempty"`

	// Run control
	Seed       *uint64 `json:"seed,omitempty"`
	Workers    *int    `json:"workers,omitempty"`
	Iterations *int    `json:"iterations,omitempty"`
}

// DefaultArrayConfig returns a config with every scalar field set to its
// default value.
func DefaultArrayConfig() *ArrayConfig {
	empty := &ArrayConfig{}
	origin := empty.GetGridOrigin()
	seed := empty.GetSeed()
	return &ArrayConfig{
		ReceiverCount:        ptrInt(empty.GetReceiverCount()),
		BoundHalfWidth:       ptrFloat64(empty.GetBoundHalfWidth()),
		StartTemperature:     ptrFloat64(empty.GetStartTemperature()),
		StartAcceptanceRate:  ptrFloat64(empty.GetStartAcceptanceRate()),
		StopAcceptanceRate:   ptrFloat64(empty.GetStopAcceptanceRate()),
		StopCost:             ptrFloat64(empty.GetStopCost()),
		PerturbationsPerStep: ptrInt(empty.GetPerturbationsPerStep()),
		PerturbationSTD:      ptrFloat64(empty.GetPerturbationSTD()),
		ReductionFactor:      ptrFloat64(empty.GetReductionFactor()),
		MaxTemperatureSteps:  ptrInt(empty.GetMaxTemperatureSteps()),
		GridKind:             ptrString(empty.GetGridKind()),
		GridCount:            ptrInt(empty.GetGridCount()),
		GridSpacing:          ptrFloat64(empty.GetGridSpacing()),
		GridRadius:           ptrFloat64(empty.GetGridRadius()),
		GridOrigin:           &origin,
		SoundSpeed:           ptrFloat64(empty.GetSoundSpeed()),
		NoiseVariance:        ptrFloat64(empty.GetNoiseVariance()),
		Reduction:            ptrString(empty.GetReduction()),
		ReferenceReceiver:    ptrInt(empty.GetReferenceReceiver()),
		Seed:                 &seed,
		Workers:              ptrInt(empty.GetWorkers()),
		Iterations:           ptrInt(empty.GetIterations()),
	}
}

// LoadArrayConfig loads an ArrayConfig from a JSON file.
func LoadArrayConfig(path string) (*ArrayConfig, error) {
	cfg := &ArrayConfig{}
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadDefaultArrayConfig loads DefaultArrayConfigPath. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultArrayConfig() *ArrayConfig {
	path, err := findDefault(DefaultArrayConfigPath)
	if err != nil {
		panic(err)
	}
	cfg, err := LoadArrayConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the fields that are set, then the derived schedule.
func (c *ArrayConfig) Validate() error {
	if c.ReceiverCount != nil && *c.ReceiverCount < 2 {
		return faults.Configurationf("receiver_count must be at least 2, got %d", *c.ReceiverCount)
	}
	if c.BoundHalfWidth != nil && *c.BoundHalfWidth < 0 {
		return faults.Configurationf("bound_half_width must be non-negative, got %g", *c.BoundHalfWidth)
	}
	if len(c.Receivers) == 1 {
		return faults.Configurationf("need at least 2 receivers, got 1")
	}
	if err := geometry.ValidateBounds(c.GetBounds()); err != nil {
		return err
	}
	if err := c.GetSchedule().Validate(); err != nil {
		return err
	}
	if c.SoundSpeed != nil && !(*c.SoundSpeed > 0) {
		return faults.Configurationf("sound_speed must be positive, got %g", *c.SoundSpeed)
	}
	if c.NoiseVariance != nil && !(*c.NoiseVariance > 0) {
		return faults.Configurationf("noise_variance must be positive, got %g", *c.NoiseVariance)
	}
	if _, err := uncertainty.ParseReduction(c.GetReduction()); err != nil {
		return err
	}
	if ref := c.GetReferenceReceiver(); ref < 0 || ref >= len(c.GetBounds()) {
		return faults.Configurationf("reference_receiver %d outside [0, %d)", ref, len(c.GetBounds()))
	}
	switch grid.Kind(c.GetGridKind()) {
	case grid.KindSphereSurface, grid.KindSphereVolume, grid.KindCubeVolume:
	default:
		return faults.Configurationf("unknown grid_kind %q", c.GetGridKind())
	}
	if c.Workers != nil && *c.Workers < 0 {
		return faults.Configurationf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.Iterations != nil && *c.Iterations < 1 {
		return faults.Configurationf("iterations must be at least 1, got %d", *c.Iterations)
	}
	return nil
}

// GetBounds returns the receiver bounds table.
func (c *ArrayConfig) GetBounds() []geometry.Bounds {
	if len(c.Receivers) > 0 {
		out := make([]geometry.Bounds, len(c.Receivers))
		for i, r := range c.Receivers {
			out[i] = r.Bounds()
		}
		return out
	}
	return geometry.UniformBounds(c.GetReceiverCount(), c.GetBoundHalfWidth())
}

// GetSchedule assembles the annealing schedule.
func (c *ArrayConfig) GetSchedule() anneal.Schedule {
	return anneal.Schedule{
		StartTemperature:     c.GetStartTemperature(),
		StartAcceptanceRate:  c.GetStartAcceptanceRate(),
		StopAcceptanceRate:   c.GetStopAcceptanceRate(),
		StopCost:             c.GetStopCost(),
		PerturbationsPerStep: c.GetPerturbationsPerStep(),
		PerturbationSTD:      c.GetPerturbationSTD(),
		ReductionFactor:      c.GetReductionFactor(),
		MaxTemperatureSteps:  c.GetMaxTemperatureSteps(),
	}
}

// GridPoints generates the evaluation grid.
func (c *ArrayConfig) GridPoints() ([]geometry.Point, error) {
	g, err := grid.FromSpec(grid.Kind(c.GetGridKind()), c.GetGridCount(), c.GetGridSpacing(), c.GetGridRadius(), c.GetGridOrigin())
	if err != nil {
		return nil, err
	}
	points, err := g.Points()
	if err != nil {
		return nil, fmt.Errorf("generate %s grid: %w", c.GetGridKind(), err)
	}
	return points, nil
}

// Evaluator builds the cost evaluator for the configured grid and model.
func (c *ArrayConfig) Evaluator() (*uncertainty.Evaluator, error) {
	points, err := c.GridPoints()
	if err != nil {
		return nil, err
	}
	pairs, err := geometry.BuildPairs(len(c.GetBounds()), c.GetReferenceReceiver())
	if err != nil {
		return nil, err
	}
	reduce, err := uncertainty.ParseReduction(c.GetReduction())
	if err != nil {
		return nil, err
	}
	e := &uncertainty.Evaluator{
		Grid:          points,
		Pairs:         pairs,
		SoundSpeed:    c.GetSoundSpeed(),
		NoiseVariance: c.GetNoiseVariance(),
		Reduce:        reduce,
		Workers:       c.GetWorkers(),
	}
	return e, e.Validate()
}

func (c *ArrayConfig) GetReceiverCount() int {
	if c.ReceiverCount == nil {
		return 4
	}
	return *c.ReceiverCount
}

func (c *ArrayConfig) GetBoundHalfWidth() float64 {
	if c.BoundHalfWidth == nil {
		return 5
	}
	return *c.BoundHalfWidth
}

func (c *ArrayConfig) GetStartTemperature() float64 {
	if c.StartTemperature == nil {
		return 10
	}
	return *c.StartTemperature
}

func (c *ArrayConfig) GetStartAcceptanceRate() float64 {
	if c.StartAcceptanceRate == nil {
		return 0.5
	}
	return *c.StartAcceptanceRate
}

func (c *ArrayConfig) GetStopAcceptanceRate() float64 {
	if c.StopAcceptanceRate == nil {
		return 0.01
	}
	return *c.StopAcceptanceRate
}

func (c *ArrayConfig) GetStopCost() float64 {
	if c.StopCost == nil {
		return 0.05
	}
	return *c.StopCost
}

func (c *ArrayConfig) GetPerturbationsPerStep() int {
	if c.PerturbationsPerStep == nil {
		return 50
	}
	return *c.PerturbationsPerStep
}

func (c *ArrayConfig) GetPerturbationSTD() float64 {
	if c.PerturbationSTD == nil {
		return 0.1
	}
	return *c.PerturbationSTD
}

func (c *ArrayConfig) GetReductionFactor() float64 {
	if c.ReductionFactor == nil {
		return 0.95
	}
	return *c.ReductionFactor
}

func (c *ArrayConfig) GetMaxTemperatureSteps() int {
	if c.MaxTemperatureSteps == nil {
		return 0
	}
	return *c.MaxTemperatureSteps
}

func (c *ArrayConfig) GetGridKind() string {
	if c.GridKind == nil {
		return string(grid.KindSphereVolume)
	}
	return *c.GridKind
}

func (c *ArrayConfig) GetGridCount() int {
	if c.GridCount == nil {
		return 200
	}
	return *c.GridCount
}

func (c *ArrayConfig) GetGridSpacing() float64 {
	if c.GridSpacing == nil {
		return 5
	}
	return *c.GridSpacing
}

func (c *ArrayConfig) GetGridRadius() float64 {
	if c.GridRadius == nil {
		return 20
	}
	return *c.GridRadius
}

func (c *ArrayConfig) GetGridOrigin() geometry.Point {
	if c.GridOrigin == nil {
		return geometry.Point{}
	}
	return *c.GridOrigin
}

func (c *ArrayConfig) GetSoundSpeed() float64 {
	if c.SoundSpeed == nil {
		return 1484
	}
	return *c.SoundSpeed
}

func (c *ArrayConfig) GetNoiseVariance() float64 {
	if c.NoiseVariance == nil {
		return 1e-8
	}
	return *c.NoiseVariance
}

func (c *ArrayConfig) GetReduction() string {
	if c.Reduction == nil {
		return "mean"
	}
	return *c.Reduction
}

func (c *ArrayConfig) GetReferenceReceiver() int {
	if c.ReferenceReceiver == nil {
		return 0
	}
	return *c.ReferenceReceiver
}

func (c *ArrayConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

func (c *ArrayConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

func (c *ArrayConfig) GetIterations() int {
	if c.Iterations == nil {
		return 1
	}
	return *c.Iterations
}
