package orbit

import "math"

// KeplerSolver holds the Newton-Raphson tunables for Kepler's equation.
// The zero value is not usable; start from DefaultKepler.
type KeplerSolver struct {
	MaxIter     int     // iteration cap
	Residualε   float64 // convergence threshold on |E - e·sinE - M|
	Derivativeε float64 // guard on |1 - e·cosE| before dividing
}

// DefaultKepler converges to residuals well below 1e-10 for e ∈ [0, ~0.9].
// There is deliberately no bisection fallback: the domain is elliptical only.
var DefaultKepler = KeplerSolver{MaxIter: 10, Residualε: 1e-10, Derivativeε: 1e-10}

// EccentricAnomaly solves E - e·sinE = M for E with initial guess E₀ = M.
// It always returns its best estimate along with the residual at that
// estimate, even when the iteration cap is exhausted.
func (k KeplerSolver) EccentricAnomaly(M, e float64) (E, residual float64) {
	E = M
	for i := 0; i < k.MaxIter; i++ {
		sinE, cosE := math.Sincos(E)
		f := E - e*sinE - M
		fPrime := 1 - e*cosE
		if math.Abs(fPrime) < k.Derivativeε {
			break
		}
		E -= f / fPrime
		if math.Abs(f) < k.Residualε {
			break
		}
	}
	residual = E - e*math.Sin(E) - M
	return
}

// MeanToTrue converts a mean anomaly to the true anomaly for eccentricity
// e ∈ [0,1). M is normalized into [0, 2π) before solving, so arbitrarily
// large or negative mean anomalies are legal.
func (k KeplerSolver) MeanToTrue(M, e float64) float64 {
	M = wrap2π(M)
	E, _ := k.EccentricAnomaly(M, e)
	// tan(ν/2) = sqrt((1+e)/(1-e))·tan(E/2)
	factor := math.Sqrt((1 + e) / (1 - e))
	return 2 * math.Atan(factor*math.Tan(E/2))
}

// MeanToTrue converts a mean anomaly to the true anomaly using DefaultKepler.
func MeanToTrue(M, e float64) float64 {
	return DefaultKepler.MeanToTrue(M, e)
}

// TrueToMean converts a true anomaly to the mean anomaly in closed form via
// the half-angle identity tan(E/2) = sqrt((1-e)/(1+e))·tan(ν/2). Valid for
// any real ν, including negative angles.
func TrueToMean(ν, e float64) float64 {
	factor := math.Sqrt((1 - e) / (1 + e))
	E := 2 * math.Atan(factor*math.Tan(ν/2))
	return E - e*math.Sin(E)
}
