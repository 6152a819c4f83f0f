package orbit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// defaultSamples is the coarse pass resolution over [0, maxTime].
	defaultSamples = 500
	// defaultBisections caps the refinement pass.
	defaultBisections = 20
	// defaultTimeε is the absolute bracket width at which refinement stops.
	defaultTimeε = 0.01
)

// ErrInvalidSearch is wrapped by every search parameter validation failure.
var ErrInvalidSearch = errors.New("invalid search parameters")

// sampleState classifies one coarse sample of the inter-body distance.
// Undefined samples are transparent: they never update the tracked state,
// so a numerically degenerate sample cannot fake an entry transition.
type sampleState uint8

const (
	stateUndefined sampleState = iota
	stateOutside
	stateInside
)

// Crossing is a found SOI entry: the ship's own propagated position at the
// entry time, relative to the central body. The target's position is not
// reported; entry is defined in the ship's orbital frame.
type Crossing struct {
	Position Position
	Time     float64
}

// Target pairs a candidate body's orbit with its influence radius.
type Target struct {
	Name  string
	Orbit Orbit
	SOI   float64
}

// TargetCrossing is the outcome of one target of a batch search.
type TargetCrossing struct {
	Name     string
	Crossing Crossing
	Found    bool
	Err      error
}

// Search holds the crossing search tunables. Use NewSearch for the
// documented defaults (500 samples, 20 bisections, 0.01 time tolerance),
// optionally overridden by the ORBIT_CONFIG file.
type Search struct {
	Samples    int     // coarse samples over the window (N, giving N+1 evaluations)
	Bisections int     // refinement iteration cap
	Timeε      float64 // absolute time tolerance of the refined bracket
	Logger     kitlog.Logger
}

func (s Search) log(keyvals ...interface{}) {
	if s.Logger != nil {
		s.Logger.Log(keyvals...)
	}
}

func (s Search) validate(ship, target Orbit, soiRadius, maxTime float64) error {
	if soiRadius <= 0 || math.IsNaN(soiRadius) {
		return fmt.Errorf("%w: SOI radius %f must be positive", ErrInvalidSearch, soiRadius)
	}
	if maxTime <= 0 || math.IsNaN(maxTime) {
		return fmt.Errorf("%w: search window %f must be positive", ErrInvalidSearch, maxTime)
	}
	if s.Samples < 1 {
		return fmt.Errorf("%w: sample count %d must be at least 1", ErrInvalidSearch, s.Samples)
	}
	if !ship.Origin.Equals(target.Origin) {
		return fmt.Errorf("%w: ship and target must orbit the same body", ErrInvalidSearch)
	}
	return nil
}

// FindSOIEntry locates the first future instant at which the ship's
// trajectory crosses into the disk of radius soiRadius centered on the
// target, within the window [0, maxTime]. The boolean reports whether a
// crossing exists in the window; its absence is not an error.
func (s Search) FindSOIEntry(ship, target Orbit, soiRadius, maxTime float64) (Crossing, bool, error) {
	if err := s.validate(ship, target, soiRadius, maxTime); err != nil {
		return Crossing{}, false, err
	}
	searchesTotal.Inc()

	shipProp := NewPropagator(ship)
	targetProp := NewPropagator(target)

	dt := maxTime / float64(s.Samples)
	prev := stateOutside
	for i := 0; i <= s.Samples; i++ {
		t := float64(i) * dt
		state := classify(shipProp, targetProp, t, soiRadius)
		if state == stateUndefined {
			undefinedSamplesTotal.Inc()
			continue
		}
		if state == stateInside && prev == stateOutside {
			tLow := t - dt
			if tLow < 0 {
				tLow = 0
			}
			s.log("level", "debug", "subsys", "search", "message", "entry bracket found", "tLow", tLow, "tHigh", t)
			crossing := s.refine(shipProp, targetProp, tLow, t, soiRadius)
			crossingsFoundTotal.Inc()
			s.log("level", "info", "subsys", "search", "message", "SOI entry", "t", crossing.Time)
			return crossing, true, nil
		}
		prev = state
	}
	return Crossing{}, false, nil
}

// FindSOIEntry runs the search with the configured defaults.
func FindSOIEntry(ship, target Orbit, soiRadius, maxTime float64) (Crossing, bool, error) {
	return NewSearch().FindSOIEntry(ship, target, soiRadius, maxTime)
}

// FindSOIEntries searches every candidate target independently, bounded by
// one worker per CPU. Each target keeps its strict sequential sampling, so
// the first crossing reported per target is deterministic regardless of
// scheduling.
func (s Search) FindSOIEntries(ctx context.Context, ship Orbit, targets []Target, maxTime float64) []TargetCrossing {
	results := make([]TargetCrossing, len(targets))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, tgt := range targets {
		wg.Add(1)
		go func(idx int, tgt Target) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = TargetCrossing{Name: tgt.Name, Err: ctx.Err()}
				return
			}
			crossing, found, err := s.FindSOIEntry(ship, tgt.Orbit, tgt.SOI, maxTime)
			results[idx] = TargetCrossing{Name: tgt.Name, Crossing: crossing, Found: found, Err: err}
		}(i, tgt)
	}

	wg.Wait()
	return results
}

// classify evaluates both bodies at time t and returns the three-state
// classification of the sample. Either propagation degenerating makes the
// whole sample undefined.
func classify(shipProp, targetProp *Propagator, t, soiRadius float64) sampleState {
	shipPos := shipProp.PositionAt(t)
	if shipPos.IsUndefined() {
		return stateUndefined
	}
	targetPos := targetProp.PositionAt(t)
	if targetPos.IsUndefined() {
		return stateUndefined
	}
	if shipPos.DistanceTo(targetPos) < soiRadius {
		return stateInside
	}
	return stateOutside
}

// refine bisects the bracket [tLow, tHigh] where tLow is known outside and
// tHigh known inside. An undefined midpoint is treated as outside so that
// tHigh always remains the known-inside endpoint; if the final midpoint
// itself degenerates, the entry is reported at tHigh instead.
func (s Search) refine(shipProp, targetProp *Propagator, tLow, tHigh, soiRadius float64) Crossing {
	i := 0
	for ; i < s.Bisections && math.Abs(tHigh-tLow) >= s.Timeε; i++ {
		tMid := (tLow + tHigh) / 2
		shipPos := shipProp.PositionAt(tMid)
		targetPos := targetProp.PositionAt(tMid)
		switch {
		case shipPos.IsUndefined() || targetPos.IsUndefined():
			tLow = tMid
		case shipPos.DistanceTo(targetPos) < soiRadius:
			tHigh = tMid
		default:
			tLow = tMid
		}
	}
	bisectionIterations.Observe(float64(i))

	tEntry := (tLow + tHigh) / 2
	pos := shipProp.PositionAt(tEntry)
	if pos.IsUndefined() {
		tEntry = tHigh
		pos = shipProp.PositionAt(tHigh)
	}
	return Crossing{Position: pos, Time: tEntry}
}
