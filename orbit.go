package orbit

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/floats"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 length units
)

// ErrInvalidElements is wrapped by every element validation failure.
var ErrInvalidElements = errors.New("invalid orbital elements")

// Orbit defines a planar elliptical orbit via its orbital elements.
type Orbit struct {
	a, e, ω, ν float64
	Origin     Body // Orbit origin
}

// SemiParameter returns the semi-latus rectum.
func (o Orbit) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// MeanMotion returns the constant average angular rate n.
func (o Orbit) MeanMotion() float64 {
	return math.Sqrt(o.Origin.μ / math.Pow(o.a, 3))
}

// Apoapsis returns the apoapsis.
func (o Orbit) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis.
func (o Orbit) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Period returns the period of this orbit in the time unit of μ.
func (o Orbit) Period() float64 {
	return 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.Origin.μ)
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.Origin.μ / (2 * o.a)
}

// Elements returns the four planar orbital elements.
func (o Orbit) Elements() (a, e, ω, ν float64) {
	return o.a, o.e, o.ω, o.ν
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	if o.e < eccentricityε {
		return fmt.Sprintf("a=%.1f e=%.4f ν=%.3f", o.a, o.e, Rad2deg(o.ν))
	}
	return fmt.Sprintf("a=%.1f e=%.4f ω=%.3f ν=%.3f", o.a, o.e, Rad2deg(o.ω), Rad2deg(o.ν))
}

// Equals returns whether two orbits are identical with free true anomaly.
// Use StrictlyEquals to also check true anomaly.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !floats.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !floats.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if o.e > eccentricityε && !floats.EqualWithinAbs(o.ω, o1.ω, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	return true, nil
}

// StrictlyEquals returns whether two orbits are identical.
func (o Orbit) StrictlyEquals(o1 Orbit) (bool, error) {
	// Only check for non circular orbits
	if o.e > eccentricityε && !floats.EqualWithinAbs(wrap2π(o.ν), wrap2π(o1.ν), angleε) {
		return false, errors.New("true anomaly invalid")
	}
	return o.Equals(o1)
}

// NewOrbit creates an orbit from the planar orbital elements, angles in radians.
// The angles may be any real value (negative and wrapped angles are legal);
// the size and shape parameters are checked so that NaNs cannot slip into the
// propagation silently.
func NewOrbit(a, e, ω, ν float64, origin Body) (*Orbit, error) {
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return nil, fmt.Errorf("%w: semi major axis a=%f must be positive", ErrInvalidElements, a)
	}
	if e < 0 || e >= 1 || math.IsNaN(e) {
		return nil, fmt.Errorf("%w: eccentricity e=%f must be in [0,1)", ErrInvalidElements, e)
	}
	if origin.μ <= 0 {
		return nil, fmt.Errorf("%w: gravitational parameter μ=%f must be positive", ErrInvalidElements, origin.μ)
	}
	if math.IsNaN(ω) || math.IsNaN(ν) {
		return nil, fmt.Errorf("%w: angles must not be NaN", ErrInvalidElements)
	}
	return &Orbit{a, e, ω, ν, origin}, nil
}

// NewOrbitFromDegrees is NewOrbit with ω and ν provided in degrees.
func NewOrbitFromDegrees(a, e, ω, ν float64, origin Body) (*Orbit, error) {
	return NewOrbit(a, e, Deg2rad(ω), Deg2rad(ν), origin)
}

// Radii2ae returns the semi major axis and the eccentricity from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
