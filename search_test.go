package orbit

import (
	"context"
	"errors"
	"math"
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

// interceptScenario is the reference setup: ship on the inner circular orbit,
// target on the outer one, positioned 100° ahead in true anomaly.
func interceptScenario(t *testing.T) (ship, target Orbit) {
	t.Helper()
	star := NewBody("Star", 1e7, 0)
	shipOrbit, err := NewOrbit(7000, 0, 0, 0, star)
	if err != nil {
		t.Fatal(err)
	}
	targetOrbit, err := NewOrbitFromDegrees(8000, 0, 0, 100, star)
	if err != nil {
		t.Fatal(err)
	}
	return *shipOrbit, *targetOrbit
}

func TestCrossingScenario(t *testing.T) {
	ship, target := interceptScenario(t)
	maxTime := 2 * ship.Period()

	search := NewSearch()
	search.Logger = kitlog.NewNopLogger()
	crossing, found, err := search.FindSOIEntry(ship, target, 1500, maxTime)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("no crossing found")
	}
	if crossing.Time <= 0 || crossing.Time >= maxTime {
		t.Fatalf("entry time %f outside (0, %f)", crossing.Time, maxTime)
	}
	if crossing.Position.IsUndefined() {
		t.Fatal("entry position undefined")
	}
	// At the reported entry the ship must sit on the SOI boundary within the
	// distance resolution of the bisection tolerance.
	targetAtEntry := NewPropagator(target).PositionAt(crossing.Time)
	dist := crossing.Position.DistanceTo(targetAtEntry)
	if math.Abs(dist-1500) > 1.0 {
		t.Fatalf("distance at entry %f is not on the SOI boundary", dist)
	}
}

func TestNoCrossing(t *testing.T) {
	ship, target := interceptScenario(t)
	_, found, err := FindSOIEntry(ship, target, 1.0, 2*ship.Period())
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("found a crossing with a near-zero SOI")
	}
}

func TestSearchIdempotence(t *testing.T) {
	ship, target := interceptScenario(t)
	maxTime := 2 * ship.Period()
	first, foundFirst, _ := FindSOIEntry(ship, target, 1500, maxTime)
	second, foundSecond, _ := FindSOIEntry(ship, target, 1500, maxTime)
	if foundFirst != foundSecond || first != second {
		t.Fatalf("search is not idempotent: %+v != %+v", first, second)
	}
}

func TestFirstCrossingSelection(t *testing.T) {
	ship, target := interceptScenario(t)
	// The ship laps the target roughly every 6400 time units, so a 9000 unit
	// window holds two distinct entries (~1628 and ~8039). Only the earlier
	// one may be reported.
	wide, foundWide, err := FindSOIEntry(ship, target, 1500, 9000)
	if err != nil {
		t.Fatal(err)
	}
	narrow, foundNarrow, err := FindSOIEntry(ship, target, 1500, 3000)
	if err != nil {
		t.Fatal(err)
	}
	if !foundWide || !foundNarrow {
		t.Fatal("crossing not found in one of the windows")
	}
	if wide.Time >= 3000 {
		t.Fatalf("wide window skipped the first crossing: t=%f", wide.Time)
	}
	if math.Abs(wide.Time-narrow.Time) > 1.0 {
		t.Fatalf("windows disagree on the first crossing: %f vs %f", wide.Time, narrow.Time)
	}
}

func TestUndefinedSamplesAreTransparent(t *testing.T) {
	star := NewBody("Star", 1e7, 0)
	ship, _ := NewOrbit(7000, 0, 0, 0, star)
	// Near-parabolic target pinned at apoapsis for the whole short window:
	// every sample degenerates. The SOI is larger than the ship-to-apoapsis
	// distance, so any sample wrongly treated as valid would register as
	// inside and fire an entry; transparency means none may.
	target, err := NewOrbit(7000, 0.9995, 0, math.Pi, star)
	if err != nil {
		t.Fatal(err)
	}
	_, found, err := FindSOIEntry(*ship, *target, 25000, 300)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("degenerate samples produced a crossing")
	}
}

func TestRefineUndefinedMidpoints(t *testing.T) {
	star := NewBody("Star", 1e7, 0)
	ship, _ := NewOrbit(7000, 0, 0, 0, star)
	// Near-parabolic target pinned at apoapsis: its propagation degenerates
	// over the whole bracket, so every bisection midpoint is undefined and
	// must advance the low end. The high end stays put, and the refined entry
	// collapses onto it with a finite ship position.
	target, err := NewOrbit(8000, 0.9995, 0, math.Pi, star)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSearch()
	crossing := s.refine(NewPropagator(*ship), NewPropagator(*target), 0, 200, 1500)
	if crossing.Position.IsUndefined() {
		t.Fatal("refined entry position undefined on a healthy ship orbit")
	}
	if crossing.Time > 200 || 200-crossing.Time > s.Timeε {
		t.Fatalf("refined entry time %f drifted off the known-inside end", crossing.Time)
	}
}

func TestRefineDegenerateFinalMidpoint(t *testing.T) {
	star := NewBody("Star", 1e7, 0)
	// This time the ship itself degenerates: at e=0.9995 from apoapsis the
	// polar denominator stays under the guard until t≈377.8, so with the
	// iteration cap held at three the final midpoint (t≈364) is still
	// undefined while the high end (t=388.23) is already past the guard.
	// The entry must then be reported exactly at the high end.
	ship, err := NewOrbit(6000, 0.9995, 0, math.Pi, star)
	if err != nil {
		t.Fatal(err)
	}
	target, _ := NewOrbit(20000, 0, 0, 0, star)
	s := Search{Samples: defaultSamples, Bisections: 3, Timeε: defaultTimeε}
	shipProp := NewPropagator(*ship)
	crossing := s.refine(shipProp, NewPropagator(*target), 0, 388.23, 10)
	if crossing.Time != 388.23 {
		t.Fatalf("entry not reported at the known-inside end: t=%f", crossing.Time)
	}
	if crossing.Position.IsUndefined() {
		t.Fatal("entry position undefined past the degenerate arc")
	}
	if crossing.Position != shipProp.PositionAt(388.23) {
		t.Fatalf("entry position %+v is not the ship position at the reported time", crossing.Position)
	}
}

func TestSearchValidation(t *testing.T) {
	ship, target := interceptScenario(t)
	cases := []struct {
		name      string
		soi, tmax float64
		samples   int
	}{
		{"zero SOI", 0, 1000, 500},
		{"negative SOI", -10, 1000, 500},
		{"zero window", 1500, 0, 500},
		{"negative window", 1500, -5, 500},
		{"no samples", 1500, 1000, 0},
	}
	for _, tc := range cases {
		s := Search{Samples: tc.samples, Bisections: defaultBisections, Timeε: defaultTimeε}
		if _, _, err := s.FindSOIEntry(ship, target, tc.soi, tc.tmax); !errors.Is(err, ErrInvalidSearch) {
			t.Fatalf("%s: expected ErrInvalidSearch, got %v", tc.name, err)
		}
	}
	// Orbits around different bodies cannot be searched against each other.
	other := NewBody("OtherStar", 2e7, 0)
	foreign, _ := NewOrbit(8000, 0, 0, 0, other)
	if _, _, err := FindSOIEntry(ship, *foreign, 1500, 1000); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("expected ErrInvalidSearch for mismatched origins, got %v", err)
	}
}

func TestFindSOIEntries(t *testing.T) {
	ship, target := interceptScenario(t)
	maxTime := 2 * ship.Period()
	targets := []Target{
		{Name: "reachable", Orbit: target, SOI: 1500},
		{Name: "tiny", Orbit: target, SOI: 1.0},
		{Name: "broken", Orbit: target, SOI: -5},
	}
	results := NewSearch().FindSOIEntries(context.Background(), ship, targets, maxTime)
	if len(results) != len(targets) {
		t.Fatalf("got %d results for %d targets", len(results), len(targets))
	}
	for i, res := range results {
		if res.Name != targets[i].Name {
			t.Fatalf("result %d out of order: %s", i, res.Name)
		}
	}
	if !results[0].Found || results[0].Err != nil {
		t.Fatalf("reachable target not found: %+v", results[0])
	}
	if results[1].Found || results[1].Err != nil {
		t.Fatalf("tiny SOI unexpectedly crossed: %+v", results[1])
	}
	if !errors.Is(results[2].Err, ErrInvalidSearch) {
		t.Fatalf("broken target did not error: %v", results[2].Err)
	}
	// The batch result for one target matches the standalone search.
	solo, foundSolo, _ := NewSearch().FindSOIEntry(ship, target, 1500, maxTime)
	if !foundSolo || results[0].Crossing != solo {
		t.Fatalf("batch and standalone disagree: %+v vs %+v", results[0].Crossing, solo)
	}
}
