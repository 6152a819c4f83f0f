package orbit

import (
	"math"

	"github.com/gonum/floats"
)

const (
	// soiScale and soiMassRef back the mass-based influence radius estimate.
	soiScale   = 50.0
	soiMassRef = 1e4
)

// Body defines a celestial body by its gravitational parameter and, for
// orbiting bodies, the radius of the disk within which its gravity dominates.
type Body struct {
	Name string
	μ    float64
	SOI  float64
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (b Body) GM() float64 {
	return b.μ
}

// String implements the Stringer interface.
func (b Body) String() string {
	return b.Name + " body"
}

// Equals returns whether the provided body is the same.
func (b Body) Equals(b1 Body) bool {
	return b.Name == b1.Name && floats.EqualWithinAbs(b.μ, b1.μ, 1e-6) && floats.EqualWithinAbs(b.SOI, b1.SOI, 1e-6)
}

// NewBody returns a body of the given gravitational parameter and influence radius.
// Panics if μ is not positive: a body without gravity cannot anchor an orbit.
func NewBody(name string, μ, soi float64) Body {
	if μ <= 0 {
		panic("gravitational parameter must be positive")
	}
	return Body{Name: name, μ: μ, SOI: soi}
}

// SOIFromMass estimates an influence radius from a body's mass and the
// gravitational constant of the simulation.
func SOIFromMass(g, mass float64) float64 {
	return soiScale * math.Sqrt(g*mass/soiMassRef)
}
