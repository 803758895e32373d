package config

import (
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/tdoa"
)

// DefaultTDOAConfigPath is the canonical TDOA defaults file.
const DefaultTDOAConfigPath = "config/tdoa.defaults.json"

// TDOAConfig configures a delay estimation batch.
type TDOAConfig struct {
	SamplingFrequency *float64 `json:"sampling_frequency,omitempty"` // Hz
	ReferenceChannel  *int     `json:"reference_channel,omitempty"`

	// Receivers are the deployed hydrophone positions. When MaxTDOA is not
	// set they bound the search window.
	Receivers  geometry.Layout `json:"receivers,omitempty"`
	SoundSpeed *float64        `json:"sound_speed,omitempty"`

	MaxTDOA            *float64 `json:"max_tdoa,omitempty"`            // seconds
	UpsampleResolution *float64 `json:"upsample_resolution,omitempty"` // seconds
	Normalize          *bool    `json:"normalize,omitempty"`
	TightenPercent     *float64 `json:"tighten_percent,omitempty"` // 0 disables
	Workers            *int     `json:"workers,omitempty"`
}

// LoadTDOAConfig loads a TDOAConfig from a JSON file.
func LoadTDOAConfig(path string) (*TDOAConfig, error) {
	cfg := &TDOAConfig{}
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadDefaultTDOAConfig loads DefaultTDOAConfigPath. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultTDOAConfig() *TDOAConfig {
	path, err := findDefault(DefaultTDOAConfigPath)
	if err != nil {
		panic(err)
	}
	cfg, err := LoadTDOAConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the fields that are set.
func (c *TDOAConfig) Validate() error {
	if fs := c.GetSamplingFrequency(); !(fs > 0) || math.IsInf(fs, 0) {
		return faults.Configurationf("sampling_frequency must be positive, got %g", fs)
	}
	if c.GetReferenceChannel() < 0 {
		return faults.Configurationf("reference_channel must be non-negative, got %d", c.GetReferenceChannel())
	}
	if c.SoundSpeed != nil && !(*c.SoundSpeed > 0) {
		return faults.Configurationf("sound_speed must be positive, got %g", *c.SoundSpeed)
	}
	if c.MaxTDOA != nil && *c.MaxTDOA < 0 {
		return faults.Configurationf("max_tdoa must be non-negative, got %g", *c.MaxTDOA)
	}
	if c.UpsampleResolution != nil && *c.UpsampleResolution < 0 {
		return faults.Configurationf("upsample_resolution must be non-negative, got %g", *c.UpsampleResolution)
	}
	if p := c.GetTightenPercent(); p < 0 || p > 100 {
		return faults.Configurationf("tighten_percent must be in [0, 100], got %g", p)
	}
	for i, r := range c.Receivers {
		if !r.IsFinite() {
			return faults.Configurationf("receiver %d position is not finite", i)
		}
	}
	return nil
}

// SearchWindow returns the maximum delay to search in seconds. An explicit
// max_tdoa wins; otherwise the window follows from the receiver positions.
// Zero means unconstrained.
func (c *TDOAConfig) SearchWindow() (float64, error) {
	if c.MaxTDOA != nil {
		return *c.MaxTDOA, nil
	}
	if len(c.Receivers) < 2 {
		return 0, nil
	}
	return tdoa.SearchWindow(c.Receivers, c.GetSoundSpeed())
}

// Options assembles the estimator options.
func (c *TDOAConfig) Options() (tdoa.Options, error) {
	window, err := c.SearchWindow()
	if err != nil {
		return tdoa.Options{}, err
	}
	return tdoa.Options{
		MaxTDOA:            window,
		UpsampleResolution: c.GetUpsampleResolution(),
		Normalize:          c.GetNormalize(),
		Workers:            c.GetWorkers(),
	}, nil
}

// Pairs pairs every channel with the reference channel.
func (c *TDOAConfig) Pairs(channels int) ([]geometry.Pair, error) {
	return geometry.BuildPairs(channels, c.GetReferenceChannel())
}

func (c *TDOAConfig) GetSamplingFrequency() float64 {
	if c.SamplingFrequency == nil {
		return 48000
	}
	return *c.SamplingFrequency
}

func (c *TDOAConfig) GetReferenceChannel() int {
	if c.ReferenceChannel == nil {
		return 0
	}
	return *c.ReferenceChannel
}

func (c *TDOAConfig) GetSoundSpeed() float64 {
	if c.SoundSpeed == nil {
		return 1484
	}
	return *c.SoundSpeed
}

func (c *TDOAConfig) GetUpsampleResolution() float64 {
	if c.UpsampleResolution == nil {
		return 0
	}
	return *c.UpsampleResolution
}

func (c *TDOAConfig) GetNormalize() bool {
	if c.Normalize == nil {
		return false
	}
	return *c.Normalize
}

func (c *TDOAConfig) GetTightenPercent() float64 {
	if c.TightenPercent == nil {
		return 0
	}
	return *c.TightenPercent
}

func (c *TDOAConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
