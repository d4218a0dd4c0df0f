package app

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sigwatch/dab-cir/internal/cir"
)

const profileFloorDB = -120.0

// renderDelayProfile saves a line chart of the mean tap magnitude per
// delay over the whole session, the impulse response counterpart of an
// averaged spectrum plot.
func renderDelayProfile(data *CIRData, sampleRate int, file string) error {
	profile := data.AggregateProfile()

	pts := make(plotter.XYs, len(profile))
	for delay, magnitude := range profile {
		level := profileFloorDB
		if magnitude > 0 {
			level = math.Max(20*math.Log10(magnitude), profileFloorDB)
		}
		pts[delay].X = cir.DelaySeconds(delay, sampleRate) * 1e6
		pts[delay].Y = level
	}

	p := plot.New()
	p.Title.Text = "Aggregate delay profile"
	p.X.Label.Text = "Delay, us"
	p.Y.Label.Text = "Mean tap magnitude, dB"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("creating profile line: %w", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("saving profile chart: %w", err)
	}
	return nil
}
