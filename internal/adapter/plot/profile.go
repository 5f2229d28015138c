// Package plot draws sounding profiles with gonum/plot.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNothingToPlot is returned when fewer than two levels carry a temperature.
var ErrNothingToPlot = errors.New("sounding has too few temperature levels to plot")

const (
	width  = 6 * vg.Inch
	height = 8 * vg.Inch
)

var (
	temperatureColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	dewpointColor    = color.RGBA{R: 20, G: 140, B: 40, A: 255}
)

// mandatoryLevels label the pressure axis.
var mandatoryLevels = []float64{1000, 925, 850, 700, 500, 400, 300, 250, 200, 150, 100}

// Profile draws temperature and dewpoint against pressure on an inverted
// logarithmic axis, surface at the bottom. Levels below ground are skipped.
func Profile(title string, s *domain.Sounding) (*gonumplot.Plot, error) {
	temps, dews := profilePoints(s)
	if len(temps) < 2 {
		return nil, ErrNothingToPlot
	}

	p := gonumplot.New()
	p.Title.Text = title
	p.X.Label.Text = "Temperature (°C)"
	p.Y.Label.Text = "Pressure (hPa)"
	p.Y.Scale = gonumplot.InvertedScale{Normalizer: gonumplot.LogScale{}}
	p.Y.Tick.Marker = pressureTicks(temps)
	p.Add(plotter.NewGrid())

	tLine, err := plotter.NewLine(temps)
	if err != nil {
		return nil, fmt.Errorf("temperature line: %w", err)
	}
	tLine.Color = temperatureColor
	tLine.Width = vg.Points(1.5)
	p.Add(tLine)
	p.Legend.Add("Temperature", tLine)

	if len(dews) > 1 {
		dLine, err := plotter.NewLine(dews)
		if err != nil {
			return nil, fmt.Errorf("dewpoint line: %w", err)
		}
		dLine.Color = dewpointColor
		dLine.Width = vg.Points(1.5)
		p.Add(dLine)
		p.Legend.Add("Dewpoint", dLine)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// Save writes the profile chart to path; the extension selects the format
// (png, svg, pdf, ...).
func Save(path, title string, s *domain.Sounding) error {
	p, err := Profile(title, s)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write renders the profile chart to w in the given format.
func Write(w io.Writer, format, title string, s *domain.Sounding) error {
	p, err := Profile(title, s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("chart format %q: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func profilePoints(s *domain.Sounding) (temps, dews plotter.XYs) {
	bottom, ok := s.BottomIndex()
	if !ok {
		return nil, nil
	}
	for _, l := range s.Levels()[bottom:] {
		p, ok := l.Pressure.Get()
		if !ok || p <= 0 {
			continue
		}
		if t, ok := l.Temperature.Get(); ok {
			temps = append(temps, plotter.XY{X: t, Y: p})
		}
		if td, ok := l.Dewpoint.Get(); ok {
			dews = append(dews, plotter.XY{X: td, Y: p})
		}
	}
	return temps, dews
}

func pressureTicks(pts plotter.XYs) gonumplot.ConstantTicks {
	lo, hi := pts[0].Y, pts[0].Y
	for _, pt := range pts {
		lo = min(lo, pt.Y)
		hi = max(hi, pt.Y)
	}
	var ticks gonumplot.ConstantTicks
	for _, p := range mandatoryLevels {
		if p < lo || p > hi {
			continue
		}
		ticks = append(ticks, gonumplot.Tick{Value: p, Label: strconv.FormatFloat(p, 'f', 0, 64)})
	}
	return ticks
}
