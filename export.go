package orbit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// ExportConfig configures trajectory streaming for external plotting tools.
type ExportConfig struct {
	Filename  string    // base name, without extension
	OutputDir string    // defaults to the working directory
	Epoch     time.Time // wall-clock instant corresponding to t=0
}

// IsUseless returns whether this configuration would output anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

func (c ExportConfig) path() string {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	return fmt.Sprintf("%s/traj-%s.csv", dir, c.Filename)
}

// TrajectorySample is one propagated point of one body's trajectory.
type TrajectorySample struct {
	Body string
	Time float64
	Pos  Position
}

// SampleTrajectory re-propagates an orbit over [0, maxTime] into the channel,
// skipping degenerate points. It only uses the propagator, never the search:
// rendering collaborators must not duplicate the crossing logic.
func SampleTrajectory(pr *Propagator, body string, maxTime float64, samples int, ch chan<- TrajectorySample) {
	dt := maxTime / float64(samples)
	for i := 0; i <= samples; i++ {
		t := float64(i) * dt
		pos := pr.PositionAt(t)
		if pos.IsUndefined() {
			continue
		}
		ch <- TrajectorySample{Body: body, Time: t, Pos: pos}
	}
}

// StreamTrajectory streams the output of the channel to a CSV file with one
// row per sample: body, elapsed time, Julian date and planar position. It
// returns once the channel is closed and the file flushed.
func StreamTrajectory(conf ExportConfig, samples <-chan TrajectorySample) error {
	if conf.IsUseless() {
		return fmt.Errorf("export config has no filename")
	}
	f, err := os.Create(conf.path())
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"body", "t", "jd", "x", "y"}); err != nil {
		return err
	}
	for sample := range samples {
		dt := conf.Epoch.Add(time.Duration(sample.Time * float64(time.Second)))
		record := []string{
			sample.Body,
			strconv.FormatFloat(sample.Time, 'f', 6, 64),
			strconv.FormatFloat(julian.TimeToJD(dt), 'f', 8, 64),
			strconv.FormatFloat(sample.Pos.X, 'f', 6, 64),
			strconv.FormatFloat(sample.Pos.Y, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
