package uncertainty

import (
	"fmt"
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
	"gonum.org/v1/gonum/mat"
)

// Uncertainty is the predicted position error at one evaluation point.
// X, Y and Z are standard deviations in metres.
type Uncertainty struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	RMS float64 `json:"rms"`

	// Covariance is noiseVariance * (JᵀJ)⁻¹.
	Covariance *mat.SymDense `json:"-"`
}

// maxCondition bounds the condition number of JᵀJ. Rank-deficient
// geometries can factorize with rounding-level pivots, so the check is
// tighter than mat.ConditionTolerance.
const maxCondition = 1e12

// Estimate propagates a timing noise variance (s²) through the Jacobian j.
// A singular or ill-conditioned normal matrix yields faults.ErrNumerical.
func Estimate(j mat.Matrix, noiseVariance float64) (Uncertainty, error) {
	if !(noiseVariance > 0) || math.IsInf(noiseVariance, 0) {
		return Uncertainty{}, faults.Configurationf("noise variance must be positive and finite, got %g", noiseVariance)
	}
	_, c := j.Dims()

	normal := mat.NewSymDense(c, nil)
	normal.SymOuterK(1, j.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(normal); !ok {
		return Uncertainty{}, faults.Numericalf("normal matrix is not positive definite")
	}
	if cond := chol.Cond(); cond > maxCondition || math.IsNaN(cond) {
		return Uncertainty{}, faults.Numericalf("normal matrix is singular (condition number %g)", cond)
	}

	cov := mat.NewSymDense(c, nil)
	if err := chol.InverseTo(cov); err != nil {
		return Uncertainty{}, faults.Numericalf("invert normal matrix: %v", err)
	}
	cov.ScaleSym(noiseVariance, cov)

	axes := make([]float64, c)
	for k := range axes {
		v := cov.At(k, k)
		if !(v > 0) || math.IsInf(v, 0) {
			return Uncertainty{}, faults.Numericalf("covariance diagonal %d is %g", k, v)
		}
		axes[k] = math.Sqrt(v)
	}

	u := Uncertainty{Covariance: cov}
	if c > 0 {
		u.X = axes[0]
	}
	if c > 1 {
		u.Y = axes[1]
	}
	if c > 2 {
		u.Z = axes[2]
	}
	u.RMS = math.Sqrt(u.X*u.X + u.Y*u.Y + u.Z*u.Z)
	return u, nil
}

func fmtPointErr(i int, err error) error {
	return fmt.Errorf("evaluation point %d: %w", i, err)
}
