package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/magedeungaro/orbit"
	"github.com/spf13/viper"
)

// This code effectively only reads the scenario file, runs the SOI entry
// search and reports the result (optionally exporting both trajectories).

const defaultScenario = "~~unset~~"

var (
	scenario  string
	exportCSV bool
	verbose   bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.BoolVar(&exportCSV, "csv", false, "export both trajectories to CSV")
	flag.BoolVar(&verbose, "verbose", false, "log the search progress")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	central := orbit.NewBody(viper.GetString("central.name"), viper.GetFloat64("central.mu"), 0)

	ship := readOrbit("ship", central)
	target := readOrbit("target", central)

	soiRadius := viper.GetFloat64("target.soi")
	if soiRadius == 0 {
		soiRadius = orbit.SOIFromMass(viper.GetFloat64("central.g"), viper.GetFloat64("target.mass"))
	}
	maxTime := viper.GetFloat64("search.max_time")
	if maxTime == 0 {
		maxTime = 2 * ship.Period()
	}

	report(*ship, "Ship")
	report(*target, "Target")
	fmt.Printf("  SOI radius: %.1f\n", soiRadius)

	search := orbit.NewSearch()
	if verbose {
		search.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	}

	crossing, found, err := search.FindSOIEntry(*ship, *target, soiRadius, maxTime)
	if err != nil {
		log.Fatalf("search failed: %s", err)
	}
	if !found {
		fmt.Println("\n=== No SOI Entry Found ===")
		return
	}
	fmt.Println("\n=== SOI Entry Found ===")
	fmt.Printf("  Entry time: %.2f time units from epoch\n", crossing.Time)
	fmt.Printf("  Ship entry position: (%.1f, %.1f)\n", crossing.Position.X, crossing.Position.Y)
	targetAtEntry := orbit.NewPropagator(*target).PositionAt(crossing.Time)
	fmt.Printf("  Target position at entry: (%.1f, %.1f)\n", targetAtEntry.X, targetAtEntry.Y)
	fmt.Printf("  Distance at entry: %.1f (SOI = %.1f)\n", crossing.Position.DistanceTo(targetAtEntry), soiRadius)

	if exportCSV {
		exportTrajectories(*ship, *target, maxTime)
	}
}

func readOrbit(key string, central orbit.Body) *orbit.Orbit {
	o, err := orbit.NewOrbitFromDegrees(
		viper.GetFloat64(key+".sma"),
		viper.GetFloat64(key+".ecc"),
		viper.GetFloat64(key+".argPeri"),
		viper.GetFloat64(key+".tAnomaly"),
		central,
	)
	if err != nil {
		log.Fatalf("could not understand %s orbit: %s", key, err)
	}
	return o
}

func report(o orbit.Orbit, label string) {
	params := orbit.NewPropagator(o).Params()
	_, e, _, _ := o.Elements()
	fmt.Printf("\n=== %s Orbital Parameters ===\n", label)
	fmt.Printf("  Orbit: %s\n", o)
	fmt.Printf("  Eccentricity (e): %.4f\n", e)
	fmt.Printf("  Semi-latus rectum (p): %.1f\n", params.P)
	fmt.Printf("  Mean motion (n): %.6f rad/unit\n", params.N)
	fmt.Printf("  Initial mean anomaly (M0): %.1f deg\n", orbit.Rad2deg(params.M0))
	fmt.Printf("  Period: %.1f\tApoapsis: %.1f\tPeriapsis: %.1f\n", o.Period(), o.Apoapsis(), o.Periapsis())
}

func exportTrajectories(ship, target orbit.Orbit, maxTime float64) {
	conf := orbit.ExportConfig{Filename: scenario, Epoch: time.Now().UTC()}
	ch := make(chan orbit.TrajectorySample, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := orbit.StreamTrajectory(conf, ch); err != nil {
			log.Fatalf("export failed: %s", err)
		}
	}()
	orbit.SampleTrajectory(orbit.NewPropagator(ship), "ship", maxTime, 360, ch)
	orbit.SampleTrajectory(orbit.NewPropagator(target), "target", maxTime, 360, ch)
	close(ch)
	wg.Wait()
	fmt.Printf("Trajectories saved to traj-%s.csv\n", scenario)
}
