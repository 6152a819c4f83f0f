package orbit

import "math"

// denomε guards the polar orbit equation against near-parabolic blowup.
const denomε = 1e-3

// Position is a planar position relative to the central body's origin.
type Position struct {
	X, Y float64
}

// UndefinedPosition is the sentinel returned when the orbit equation
// degenerates. It propagates transparently through the crossing search.
func UndefinedPosition() Position {
	return Position{math.Inf(1), math.Inf(1)}
}

// IsUndefined returns whether this position carries no usable geometry.
func (p Position) IsUndefined() bool {
	return math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// DistanceTo returns the Euclidean distance to another position.
func (p Position) DistanceTo(p1 Position) float64 {
	return norm([]float64{p.X - p1.X, p.Y - p1.Y})
}

// PropagationParams are the values derived once from the orbital elements:
// semi-latus rectum, mean motion and mean anomaly at epoch. They are a pure
// function of the elements, recomputable deterministically at any time.
type PropagationParams struct {
	P, N, M0 float64
	e, ω     float64
}

// Propagator computes in-plane positions from fixed osculating elements.
// It holds no mutable state: every call stands alone.
type Propagator struct {
	params PropagationParams
	solver KeplerSolver
}

// NewPropagator derives the propagation parameters from the orbit with the
// default Kepler solver.
func NewPropagator(o Orbit) *Propagator {
	return NewPropagatorWithSolver(o, DefaultKepler)
}

// NewPropagatorWithSolver derives the propagation parameters from the orbit
// with a caller-provided Kepler solver.
func NewPropagatorWithSolver(o Orbit, solver KeplerSolver) *Propagator {
	_, e, ω, ν := o.Elements()
	return &Propagator{
		params: PropagationParams{
			P:  o.SemiParameter(),
			N:  o.MeanMotion(),
			M0: TrueToMean(ν, e),
			e:  e,
			ω:  ω,
		},
		solver: solver,
	}
}

// Params returns the derived propagation parameters.
func (pr *Propagator) Params() PropagationParams {
	return pr.params
}

// PositionAt returns the position at elapsed time t since epoch, or the
// undefined sentinel when the orbit equation denominator 1+e·cosν is within
// denomε of zero or the radius is non-positive or non-finite.
func (pr *Propagator) PositionAt(t float64) Position {
	M := pr.params.M0 + pr.params.N*t
	ν := pr.solver.MeanToTrue(M, pr.params.e)
	denom := 1 + pr.params.e*math.Cos(ν)
	if math.Abs(denom) < denomε {
		return UndefinedPosition()
	}
	r := pr.params.P / denom
	if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return UndefinedPosition()
	}
	sinθ, cosθ := math.Sincos(ν + pr.params.ω)
	return Position{r * cosθ, r * sinθ}
}
