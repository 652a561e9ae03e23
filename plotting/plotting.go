// Package plotting renders recorded metric series to image files.
package plotting

import (
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/meters"
	"github.com/tracelab/measure/reader"
)

// SeriesPlot plots the recorded series of one metric, step against value.
type SeriesPlot struct {
	name    string
	samples []measure.Sample
}

// NewSeriesPlot returns an empty plot for the named metric.
func NewSeriesPlot(name string) *SeriesPlot {
	return &SeriesPlot{name: name}
}

// FromReader loads the full series for the key from the reader.
func FromReader(rd reader.Reader, key string) (*SeriesPlot, error) {
	samples, err := rd.Read(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read series %q: %w", key, err)
	}
	p := NewSeriesPlot(key)
	for _, s := range samples {
		p.Add(s)
	}
	return p, nil
}

// Add appends a sample to the plot. Samples with non-numeric values are
// ignored.
func (p *SeriesPlot) Add(sample measure.Sample) {
	if _, ok := toFloat(sample.Value); !ok {
		return
	}
	p.samples = append(p.samples, sample)
}

// Len returns the number of plottable samples.
func (p *SeriesPlot) Len() int {
	return len(p.samples)
}

// Plot renders the series to the given file. The image format is derived
// from the filename extension.
func (p *SeriesPlot) Plot(filename string) error {
	return p.render(filename, p.points())
}

// PlotAverage renders the series averaged over windows of the given number
// of steps. Each point is the mean of the samples whose step falls in the
// window.
func (p *SeriesPlot) PlotAverage(filename string, window int) error {
	if window <= 0 {
		return measure.IntervalError(window)
	}
	var (
		pts     plotter.XYs
		welford meters.Welford
		current = -1
	)
	flush := func() {
		if welford.Count() > 0 {
			pts = append(pts, plotter.XY{
				X: float64(current * window),
				Y: welford.Mean(),
			})
		}
		welford.Reset()
	}
	for _, s := range p.samples {
		w := s.Step / window
		if w != current {
			flush()
			current = w
		}
		v, _ := toFloat(s.Value)
		welford.Update(v)
	}
	flush()
	return p.render(filename, pts)
}

func (p *SeriesPlot) points() plotter.XYs {
	pts := make(plotter.XYs, 0, len(p.samples))
	for _, s := range p.samples {
		v, _ := toFloat(s.Value)
		pts = append(pts, plotter.XY{X: float64(s.Step), Y: v})
	}
	return pts
}

func (p *SeriesPlot) render(filename string, pts plotter.XYs) error {
	plt := plot.New()

	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{Y: 200}
	grid.Horizontal.Dashes = plotutil.Dashes(2)
	grid.Vertical.Color = color.Gray{Y: 200}
	grid.Vertical.Dashes = plotutil.Dashes(2)
	plt.Add(grid)

	plt.Title.Text = p.name
	plt.X.Label.Text = "Step"
	plt.X.Tick.Marker = hplot.Ticks{N: 10}
	plt.Y.Label.Text = p.name
	plt.Y.Tick.Marker = hplot.Ticks{N: 10}

	if err := plotutil.AddLinePoints(plt, p.name, pts); err != nil {
		return fmt.Errorf("failed to add line plot: %w", err)
	}

	if err := plt.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func toFloat(v measure.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
