package tdoa

import (
	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
)

// SearchWindow is the largest physically possible delay for an array: the
// maximum receiver separation divided by the sound speed, in seconds.
func SearchWindow(receivers geometry.Layout, soundSpeed float64) (float64, error) {
	if !(soundSpeed > 0) {
		return 0, faults.Configurationf("sound speed must be positive, got %g", soundSpeed)
	}
	if len(receivers) < 2 {
		return 0, faults.Rangef("need at least 2 receivers, got %d", len(receivers))
	}
	return geometry.MaxSeparation(receivers) / soundSpeed, nil
}
