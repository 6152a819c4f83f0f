package orbit

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfgOnce sync.Once
	config  _orbitconfig
)

// _orbitconfig is a "hidden" struct, just use `orbitConfig`
type _orbitconfig struct {
	samples    int
	bisections int
	timeε      float64
	keplerIter int
}

// orbitConfig returns the search tunables, loaded exactly once even under
// concurrent first use. A conf.toml in the directory pointed to by
// ORBIT_CONFIG overrides the package defaults; the library works standalone
// when the variable is unset.
func orbitConfig() _orbitconfig {
	cfgOnce.Do(func() {
		config = _orbitconfig{
			samples:    defaultSamples,
			bisections: defaultBisections,
			timeε:      defaultTimeε,
			keplerIter: DefaultKepler.MaxIter,
		}
		confPath := os.Getenv("ORBIT_CONFIG")
		if confPath == "" {
			return
		}
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("%s/conf.toml not found", confPath))
		}
		if v := viper.GetInt("search.samples"); v > 0 {
			config.samples = v
		}
		if v := viper.GetInt("search.bisections"); v > 0 {
			config.bisections = v
		}
		if v := viper.GetFloat64("search.time_tolerance"); v > 0 {
			config.timeε = v
		}
		if v := viper.GetInt("kepler.iterations"); v > 0 {
			config.keplerIter = v
		}
	})
	return config
}

// NewSearch returns a Search carrying the configured tunables.
func NewSearch() Search {
	c := orbitConfig()
	return Search{Samples: c.samples, Bisections: c.bisections, Timeε: c.timeε}
}

// ConfiguredKepler returns a KeplerSolver carrying the configured iteration cap.
func ConfiguredKepler() KeplerSolver {
	k := DefaultKepler
	k.MaxIter = orbitConfig().keplerIter
	return k
}
